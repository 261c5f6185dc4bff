package model

import (
	"time"
)

// UsageDateLayout usage_date 列的格式
const UsageDateLayout = "2006-01-02"

// UsageCounter 用户每天每个功能的使用计数
type UsageCounter struct {
	ID        int64       `gorm:"primaryKey" json:"id"`
	UserID    int64       `gorm:"not null;uniqueIndex:uk_usage_user_date_feature,priority:1" json:"user_id"`
	UsageDate string      `gorm:"size:10;not null;uniqueIndex:uk_usage_user_date_feature,priority:2;index" json:"usage_date"`
	Feature   FeatureKind `gorm:"size:16;not null;uniqueIndex:uk_usage_user_date_feature,priority:3" json:"feature"`
	UsedCount int         `gorm:"not null;default:0" json:"used_count"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (UsageCounter) TableName() string {
	return "usage_counters"
}
