package model

import (
	"time"
)

// Membership 用户当前会员（一人一条）
type Membership struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	UserID    int64      `gorm:"uniqueIndex;not null" json:"user_id"`
	PlanID    *int64     `gorm:"index" json:"plan_id"` // 允许为空，读取时会被修复为默认套餐
	StartedAt time.Time  `gorm:"not null" json:"started_at"`
	ExpiresAt *time.Time `json:"expires_at"`
	IsActive  bool       `gorm:"not null" json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// 关联
	Plan *Plan `gorm:"foreignKey:PlanID;constraint:OnDelete:RESTRICT" json:"plan,omitempty"`
}

func (Membership) TableName() string {
	return "memberships"
}
