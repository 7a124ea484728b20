package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// JSONMap 用于存储厂商返回的原始 JSON 结果
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// 支持的检测服务枚举，未识别的值按 deepfake 处理
const (
	ServiceDeepfake   = "deepfake"
	ServiceFace       = "face"
	ServiceWAD        = "wad"
	ServiceOffensive  = "offensive"
	ServiceProperties = "properties"
	ServiceCelebrity  = "celebrity"
)

type Analysis struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	FilePath  string    `gorm:"size:500" json:"file_path,omitempty"`
	Service   string    `gorm:"size:50;default:deepfake" json:"service"`
	Result    JSONMap   `gorm:"type:json" json:"result"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Analysis) TableName() string {
	return "analyses"
}
