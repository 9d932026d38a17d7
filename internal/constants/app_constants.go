package constants

import "time"

const (
	// DefaultMaxHeadingLength 章节标题行的最大长度（超过则不视为标题）
	DefaultMaxHeadingLength = 50
	// DefaultDedupeWindow 同类章节标题去重的字符窗口
	DefaultDedupeWindow = 200
	// DefaultSearchWindow 在原始文本中回找标题位置时的前后搜索窗口
	DefaultSearchWindow = 500
	// DefaultHeaderContextLength header角色额外附带的文档起始字符数
	DefaultHeaderContextLength = 1000
	// MinCertificationLineLength 证书关键词扫描时的最小行长
	MinCertificationLineLength = 5
	// MinHeadingLineLength 短于该长度的行直接跳过标题判定
	MinHeadingLineLength = 3

	// DefaultRecordCacheTTL 抽取结果缓存时长
	DefaultRecordCacheTTL = 24 * time.Hour

	// StatusCompleted 六个角色全部成功
	StatusCompleted = "COMPLETED"
	// StatusPartial 部分角色失败，记录仍然生成
	StatusPartial = "PARTIAL"
	// StatusFailed 整次请求失败
	StatusFailed = "FAILED"
)
