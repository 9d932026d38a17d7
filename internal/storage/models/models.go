package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ResumeExtraction 一次简历抽取的落库记录
type ResumeExtraction struct {
	ExtractionUUID string `gorm:"type:char(36);primaryKey"`
	// 提交来源，例如 api / batch
	SourceChannel string `gorm:"type:varchar(100)"`
	RawTextMD5    string `gorm:"type:char(32);index:idx_re_raw_text_md5"`
	// 原始文本在对象存储中的key
	RawTextObjectKey string `gorm:"type:varchar(1024)"`
	// 合并后的结构化记录
	RecordJSON datatypes.JSON `gorm:"type:json"`
	// 失败角色列表，例如 ["experience: timeout"]
	FailedAgentsJSON datatypes.JSON `gorm:"type:json"`
	Status           string         `gorm:"type:varchar(50);default:'COMPLETED';index:idx_re_status"`
	ElapsedMs        int64          `gorm:"type:bigint"`
	CreatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (ResumeExtraction) TableName() string {
	return "resume_extractions"
}

// MapToJSON 把map转为JSON列值
func MapToJSON(m map[string]interface{}) (datatypes.JSON, error) {
	bytes, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

// StringsToJSON 把字符串切片转为JSON列值，nil落为"[]"
func StringsToJSON(items []string) (datatypes.JSON, error) {
	if items == nil {
		items = []string{}
	}
	bytes, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}
