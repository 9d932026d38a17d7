package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"resume-agent-go/internal/config"
	"resume-agent-go/internal/constants"
	"resume-agent-go/internal/logger"
	"resume-agent-go/internal/types"
)

// ErrNotFound 键不存在。包装redis.Nil，调用方不必直接依赖go-redis。
var ErrNotFound = redis.Nil

// Redis 抽取结果缓存与去重指纹存储
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter 创建Redis客户端并注册追踪钩子
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis配置不能为空")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis地址不能为空")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoffMS) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoffMS) * time.Millisecond,

		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute,
		ConnMaxIdleTime: time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute,
	}

	client := redis.NewClient(opt)

	// OpenTelemetry钩子，覆盖所有Redis命令
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("注册Redis追踪钩子失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("连接Redis %s 失败: %w", cfg.Address, err)
	}

	logger.Info().Str("address", cfg.Address).Msg("Redis连接成功")
	return &Redis{Client: client, config: cfg}, nil
}

// Close 关闭Redis连接
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping 检查Redis连接
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	return r.Client.Ping(ctx).Err()
}

// GetMD5ExpireDuration 去重指纹的过期时间
func (r *Redis) GetMD5ExpireDuration() time.Duration {
	days := r.config.MD5RecordExpireDays
	if days <= 0 {
		days = 365
	}
	return time.Duration(days) * 24 * time.Hour
}

// CheckAndAddTextMD5 检查文本指纹是否已见过，没见过则加入集合。
// 返回true表示此前已存在。
func (r *Redis) CheckAndAddTextMD5(ctx context.Context, md5Hex string) (bool, error) {
	if r.Client == nil {
		return false, fmt.Errorf("redis客户端未初始化")
	}

	exists, err := r.Client.SIsMember(ctx, constants.KeyTextMD5Set, md5Hex).Result()
	if err != nil {
		return false, fmt.Errorf("检查文本MD5失败: %w", err)
	}
	if exists {
		return true, nil
	}

	pipe := r.Client.Pipeline()
	pipe.SAdd(ctx, constants.KeyTextMD5Set, md5Hex)
	// 只在集合还没有TTL时设置，避免每次写入都续期
	pipe.ExpireNX(ctx, constants.KeyTextMD5Set, r.GetMD5ExpireDuration())
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("写入文本MD5失败: %w", err)
	}
	return false, nil
}

// CacheRecord 以原文MD5为键缓存合并后的记录，并记下MD5到UUID的映射
func (r *Redis) CacheRecord(ctx context.Context, md5Hex string, extractionUUID string, record *types.ResumeRecord, ttl time.Duration) error {
	if r.Client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	if record == nil {
		return fmt.Errorf("记录不能为空")
	}
	if ttl <= 0 {
		ttl = constants.DefaultRecordCacheTTL
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("序列化记录失败: %w", err)
	}

	pipe := r.Client.Pipeline()
	pipe.Set(ctx, fmt.Sprintf(constants.KeyRecordCache, md5Hex), data, ttl)
	if extractionUUID != "" {
		pipe.Set(ctx, fmt.Sprintf(constants.KeyTextMD5ToUUID, md5Hex), extractionUUID, r.GetMD5ExpireDuration())
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("缓存记录失败: %w", err)
	}
	return nil
}

// GetCachedRecord 按原文MD5取缓存的记录，未命中返回ErrNotFound
func (r *Redis) GetCachedRecord(ctx context.Context, md5Hex string) (*types.ResumeRecord, error) {
	if r.Client == nil {
		return nil, fmt.Errorf("redis客户端未初始化")
	}

	data, err := r.Client.Get(ctx, fmt.Sprintf(constants.KeyRecordCache, md5Hex)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("读取缓存记录失败: %w", err)
	}

	var record types.ResumeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("解析缓存记录失败: %w", err)
	}
	record.EnsureDefaults()
	return &record, nil
}

// GetUUIDByTextMD5 按原文MD5取对应的抽取UUID，未命中返回ErrNotFound
func (r *Redis) GetUUIDByTextMD5(ctx context.Context, md5Hex string) (string, error) {
	if r.Client == nil {
		return "", fmt.Errorf("redis客户端未初始化")
	}

	uuid, err := r.Client.Get(ctx, fmt.Sprintf(constants.KeyTextMD5ToUUID, md5Hex)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("读取MD5映射失败: %w", err)
	}
	return uuid, nil
}
