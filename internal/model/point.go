package model

import (
	"time"
)

// 积分流水方向
const (
	PointTxEarn  = "EARN"
	PointTxSpend = "SPEND"
)

// 积分流水原因
const (
	ReasonQuizCorrect      = "QUIZ_CORRECT"
	ReasonRoleplay         = "ROLEPLAY"
	ReasonPurchaseDiscount = "PURCHASE_DISCOUNT"
	ReasonAdjust           = "ADJUST"
)

// Wallet 积分钱包
type Wallet struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance   int       `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "point_wallets"
}

// PointTransaction 积分流水，只追加不修改
type PointTransaction struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	UserID      int64     `gorm:"not null;index" json:"user_id"`
	TxType      string    `gorm:"size:8;not null" json:"tx_type"`
	Amount      int       `gorm:"not null" json:"amount"`
	Reason      string    `gorm:"size:32;not null;index" json:"reason"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (PointTransaction) TableName() string {
	return "point_transactions"
}

// SignedAmount 入账为正，出账为负
func (t *PointTransaction) SignedAmount() int {
	if t.TxType == PointTxEarn {
		return t.Amount
	}
	return -t.Amount
}
