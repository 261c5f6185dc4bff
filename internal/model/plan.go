package model

import (
	"strings"
	"time"
)

// 套餐代码
const (
	PlanBasic   = "BASIC"
	PlanPlus    = "PLUS"
	PlanPremium = "PREMIUM"
)

// FeatureKind 按天计数的功能类别
type FeatureKind string

const (
	FeatureSummary   FeatureKind = "SUMMARY"
	FeatureImage     FeatureKind = "IMAGE"
	FeatureDetector  FeatureKind = "DETECTOR"
	FeaturePointEarn FeatureKind = "POINT_EARN" // 记录当天已获得的积分，而不是次数
)

// AllFeatures 所有已知功能
var AllFeatures = []FeatureKind{FeatureSummary, FeatureImage, FeatureDetector, FeaturePointEarn}

// ParseFeature 解析功能类别，大小写不敏感
func ParseFeature(s string) (FeatureKind, bool) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for _, f := range AllFeatures {
		if string(f) == upper {
			return f, true
		}
	}
	return "", false
}

// Plan 会员套餐
type Plan struct {
	ID                   int64     `gorm:"primaryKey" json:"id"`
	Code                 string    `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Name                 string    `gorm:"size:64;not null" json:"name"`
	Description          string    `gorm:"type:text" json:"description"`
	PriceMonthly         int       `gorm:"not null;default:0" json:"price_monthly"`
	SummaryLimitPerDay   *int      `json:"summary_limit_per_day"` // nil 表示不限
	ImageLimitPerDay     *int      `json:"image_limit_per_day"`
	DetectorLimitPerDay  *int      `json:"detector_limit_per_day"`
	PointPerQuizCorrect  int       `gorm:"not null;default:0" json:"point_per_quiz_correct"`
	PointPerRoleplay5Min int       `gorm:"column:point_per_roleplay_5min;not null;default:0" json:"point_per_roleplay_5min"`
	PointDailyCap        int       `gorm:"not null" json:"point_daily_cap"`
	IsActive             bool      `gorm:"not null;index" json:"is_active"`
	SortOrder            int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (Plan) TableName() string {
	return "plans"
}

// LimitFor 返回套餐对某功能的每日上限，nil 表示不限
func (p *Plan) LimitFor(feature FeatureKind) *int {
	switch feature {
	case FeatureSummary:
		return p.SummaryLimitPerDay
	case FeatureImage:
		return p.ImageLimitPerDay
	case FeatureDetector:
		return p.DetectorLimitPerDay
	case FeaturePointEarn:
		limit := p.PointDailyCap
		return &limit
	}
	return nil
}
