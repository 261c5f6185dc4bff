package dto

import (
	"time"

	"github.com/jodolyekim/Dotori/internal/model"
)

// UsageResult 功能用量查询/消耗结果
type UsageResult struct {
	OK        bool              `json:"ok"`
	Feature   model.FeatureKind `json:"feature"`
	Limit     *int              `json:"limit"`     // nil 表示不限
	Remaining *int              `json:"remaining"` // nil 表示不限
	UsedToday int               `json:"used_today"`
}

// MembershipInfo 会员快照
type MembershipInfo struct {
	Plan      *model.Plan `json:"plan"`
	StartedAt time.Time   `json:"started_at"`
	ExpiresAt *time.Time  `json:"expires_at"`
	IsActive  bool        `json:"is_active"`
}

// WalletInfo 钱包快照
type WalletInfo struct {
	Balance int `json:"balance"`
}

// SubscribeRequest 订阅/变更套餐请求
type SubscribeRequest struct {
	PlanCode      string `json:"plan_code" binding:"required"`
	PaymentMethod string `json:"payment_method"`
	PointToUse    int    `json:"point_to_use"`
}

// SubscribeResult 订阅结果
type SubscribeResult struct {
	PaymentID       int64           `json:"payment_id"`
	OrderNo         string          `json:"order_no"`
	PaymentStatus   string          `json:"payment_status"`
	AmountTotal     int             `json:"amount_total"`
	AmountPointUsed int             `json:"amount_point_used"`
	AmountPaidCash  int             `json:"amount_paid_cash"`
	Membership      *MembershipInfo `json:"membership"`
	Wallet          *WalletInfo     `json:"wallet"`
}

// PointTransactionInfo 积分流水条目
type PointTransactionInfo struct {
	ID           int64     `json:"id"`
	TxType       string    `json:"tx_type"`
	Amount       int       `json:"amount"`
	SignedAmount int       `json:"signed_amount"`
	Reason       string    `json:"reason"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

// PaymentInfo 支付记录条目
type PaymentInfo struct {
	ID              int64     `json:"id"`
	OrderNo         string    `json:"order_no"`
	PlanCode        string    `json:"plan_code"`
	AmountTotal     int       `json:"amount_total"`
	AmountPointUsed int       `json:"amount_point_used"`
	AmountPaidCash  int       `json:"amount_paid_cash"`
	PaymentMethod   string    `json:"payment_method"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// EarnRoleplayRequest 角色扮演结束上报
type EarnRoleplayRequest struct {
	Minutes int `json:"minutes" binding:"min=0"`
}

// EarnResult 积分获得结果，Credited 可能小于规则值（受每日上限影响）
type EarnResult struct {
	Credited int `json:"credited"`
	Balance  int `json:"balance"`
}

// FeatureStat 单个功能的今日用量和历史
type FeatureStat struct {
	Limit     *int  `json:"limit"`
	Used      int   `json:"used"`
	Remaining *int  `json:"remaining"`
	History   []int `json:"last_days"`
}

// PointStat 积分统计
type PointStat struct {
	Balance     int   `json:"balance"`
	TodayEarned int   `json:"today_earned"`
	DailyCap    int   `json:"daily_cap"`
	History     []int `json:"last_days"`
}

// UsageOverview 今日用量 + 最近 N 天历史
type UsageOverview struct {
	PlanCode  string       `json:"plan_code"`
	PlanName  string       `json:"plan_name"`
	ExpiresAt *time.Time   `json:"expires_at"`
	Dates     []string     `json:"dates"`
	Summary   *FeatureStat `json:"summary"`
	Image     *FeatureStat `json:"image"`
	Detector  *FeatureStat `json:"detector"`
	Points    *PointStat   `json:"points"`
}
