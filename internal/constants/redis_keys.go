package constants

// Redis Key 前缀和格式常量
// 命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// ExtractionModulePrefix 抽取模块
	ExtractionModulePrefix = "extraction"

	// EntityRecord 抽取结果实体
	EntityRecord = "record"
	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"
	// EntityMD5ToUUID MD5到UUID的映射实体
	EntityMD5ToUUID = "md5_to_uuid"

	// KeyRecordCache 按原文MD5缓存的抽取结果 (STRING, JSON)
	// 格式: app:extraction:record:{md5}
	KeyRecordCache = AppPrefix + ":" + ExtractionModulePrefix + ":" + EntityRecord + ":%s"

	// KeyTextMD5Set 已处理文本MD5集合，用于快速去重 (SET)
	// 格式: app:extraction:dedup_set
	KeyTextMD5Set = AppPrefix + ":" + ExtractionModulePrefix + ":" + EntityDedupSet

	// KeyTextMD5ToUUID MD5到抽取UUID的映射 (STRING)
	// 格式: app:extraction:md5_to_uuid:{md5}
	KeyTextMD5ToUUID = AppPrefix + ":" + ExtractionModulePrefix + ":" + EntityMD5ToUUID + ":%s"
)
