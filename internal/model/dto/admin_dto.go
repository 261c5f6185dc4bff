package dto

// PlanMembershipCount 套餐会员数
type PlanMembershipCount struct {
	PlanCode string `json:"plan_code"`
	Count    int64  `json:"count"`
}

// AdminUsageStats 窗口内的功能用量合计
type AdminUsageStats struct {
	Summary  int64 `json:"summary"`
	Detector int64 `json:"detector"`
}

// AdminMembershipStats 会员分布与现金收入
type AdminMembershipStats struct {
	Plans         []*PlanMembershipCount `json:"plans"`
	Revenue30Days int64                  `json:"revenue_30days"`
}

// AdminAnalytics 运营看板
type AdminAnalytics struct {
	Since      string                `json:"since"`
	Usage      *AdminUsageStats      `json:"usage"`
	Membership *AdminMembershipStats `json:"membership"`
}

// AdjustPointsRequest 运营调整积分
type AdjustPointsRequest struct {
	UserID      int64  `json:"user_id" binding:"required"`
	Delta       int    `json:"delta" binding:"required"`
	Description string `json:"description"`
}

// AdjustPointsResult 调整后的余额
type AdjustPointsResult struct {
	UserID  int64 `json:"user_id"`
	Delta   int   `json:"delta"`
	Balance int   `json:"balance"`
}
