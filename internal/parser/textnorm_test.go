package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "Hello World", StripMarkup("<b>Hello</b> <i>World</i>"))
	assert.Equal(t, "plain text", StripMarkup("plain text"))
	// 行尾未闭合的标签也要去掉
	assert.Equal(t, "Name", StripMarkup("Name<br"))
}

func TestStripBulletPrefix(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"短横线加空格", "- Built the pipeline", "Built the pipeline"},
		{"项目符号紧贴文字", "•Built the pipeline", "Built the pipeline"},
		{"多重前缀", "- - Built the pipeline", "Built the pipeline"},
		{"双横线", "-- Built the pipeline", "Built the pipeline"},
		{"星号", "* Built the pipeline", "Built the pipeline"},
		{"数值区间不受影响", "3-4 years of experience", "3-4 years of experience"},
		{"货币符号前缀保留", "- $100M budget", "$100M budget"},
		{"纯横线行保留", "--", "--"},
		{"无前缀", "Built the pipeline", "Built the pipeline"},
		{"仅去除首部空白", "   Built the pipeline", "Built the pipeline"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripBulletPrefix(tc.input))
		})
	}
}

// 前缀剥离必须幂等：结果再次输入不再变化
func TestStripBulletPrefixIdempotent(t *testing.T) {
	inputs := []string{
		"- Built the pipeline",
		"•‣◦ nested bullets",
		"-- item",
		"3-4 years",
		"--",
		"",
	}
	for _, input := range inputs {
		once := StripBulletPrefix(input)
		twice := StripBulletPrefix(once)
		assert.Equal(t, once, twice, "input: %q", input)
	}
}

func TestOriginalPosition(t *testing.T) {
	raw := "<b>Summary</b>\nText"
	// 清理后文本为 "Summary\nText"
	assert.Equal(t, 0, OriginalPosition(raw, 0))
	// 跳过<b>后消费1个字符，落在 'u' 上
	assert.Equal(t, 4, OriginalPosition(raw, 1))
	// "Summary" 消费完后落在 </b> 起始处
	assert.Equal(t, 10, OriginalPosition(raw, 7))

	// 无标签时映射是恒等的
	assert.Equal(t, 5, OriginalPosition("plain text", 5))

	// 偏移超出文本时停在末尾
	assert.Equal(t, len(raw), OriginalPosition(raw, 1000))
}
