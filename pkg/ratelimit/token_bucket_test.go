package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketAllow(t *testing.T) {
	tb := NewTokenBucket(60, 2)

	// 初始容量为2，前两次放行
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}

func TestTokenBucketWaitContextCancel(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	require.True(t, tb.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := tb.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryWithBackoffRetryable(t *testing.T) {
	tb := NewTokenBucket(6000, 10).WithRetryPolicy(time.Millisecond, 3)

	calls := 0
	err := tb.RetryWithBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("429 Too Many Requests")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffNonRetryable(t *testing.T) {
	tb := NewTokenBucket(6000, 10).WithRetryPolicy(time.Millisecond, 3)

	calls := 0
	err := tb.RetryWithBackoff(context.Background(), func() error {
		calls++
		return errors.New("invalid api key")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestNewLLMWithRateLimitQPMSelection(t *testing.T) {
	// 配置表命中时取90%，未命中时用默认值
	limited := NewLLMWithRateLimit(nil, "qwen-plus", map[string]int{"qwen-plus": 100}, 30, 3, time.Second)
	proxy, ok := limited.(*RateLimitedLLMModel)
	require.True(t, ok)
	assert.InDelta(t, 90.0/60.0, proxy.rateLimiter.rate, 0.001)

	limited = NewLLMWithRateLimit(nil, "unknown-model", map[string]int{"qwen-plus": 100}, 30, 3, time.Second)
	proxy = limited.(*RateLimitedLLMModel)
	assert.InDelta(t, 30.0/60.0, proxy.rateLimiter.rate, 0.001)
}
