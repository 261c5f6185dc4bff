package model

import (
	"time"
)

type User struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email         *string   `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	Phone         *string   `gorm:"size:20;uniqueIndex" json:"phone,omitempty"`
	PasswordHash  *string   `gorm:"size:255" json:"-"`
	EmailVerified bool      `gorm:"default:false" json:"email_verified"`
	IsAdmin       bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// AllModels 需要自动迁移的全部模型
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Plan{},
		&Membership{},
		&UsageCounter{},
		&Wallet{},
		&PointTransaction{},
		&PaymentTransaction{},
	}
}
