package model

import (
	"time"
)

// 支付状态
const (
	PaymentPending = "PENDING"
	PaymentSuccess = "SUCCESS"
	PaymentFailed  = "FAILED"
)

// 支付方式
const (
	PaymentMethodCard = "CARD"
	PaymentMethodEasy = "EASY_PAY"
)

// PaymentTransaction 套餐购买记录（模拟支付，同步成功）
type PaymentTransaction struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	OrderNo         string    `gorm:"size:32;uniqueIndex;not null" json:"order_no"`
	UserID          int64     `gorm:"not null;index" json:"user_id"`
	PlanID          int64     `gorm:"not null;index" json:"plan_id"`
	AmountTotal     int       `gorm:"not null" json:"amount_total"`
	AmountPointUsed int       `gorm:"not null;default:0" json:"amount_point_used"`
	AmountPaidCash  int       `gorm:"not null;default:0" json:"amount_paid_cash"`
	PaymentMethod   string    `gorm:"size:32;not null" json:"payment_method"`
	Status          string    `gorm:"size:16;not null;index" json:"status"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`

	// 关联
	Plan *Plan `gorm:"foreignKey:PlanID;constraint:OnDelete:RESTRICT" json:"plan,omitempty"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
