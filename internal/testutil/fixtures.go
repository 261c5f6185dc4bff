package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/jodolyekim/Dotori/internal/model"
)

var seq int64

func nextSeq() int64 {
	return atomic.AddInt64(&seq, 1)
}

// IntPtr 返回 int 指针，用于套餐上限
func IntPtr(v int) *int {
	return &v
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := nextSeq()
	email := fmt.Sprintf("test_%d_%d@example.com", n, time.Now().UnixNano())
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:      fmt.Sprintf("testuser_%d", n),
		Email:         &email,
		PasswordHash:  &passwordHash,
		EmailVerified: true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithAdmin 设为运营账号
func WithAdmin() func(*model.User) {
	return func(u *model.User) {
		u.IsAdmin = true
	}
}

// TestPlan 创建测试套餐（默认不限量，积分规则为 1/1/100）
func TestPlan(t *testing.T, db *gorm.DB, code string, opts ...func(*model.Plan)) *model.Plan {
	t.Helper()

	plan := &model.Plan{
		Code:                 code,
		Name:                 "Test " + code,
		PriceMonthly:         0,
		PointPerQuizCorrect:  1,
		PointPerRoleplay5Min: 1,
		PointDailyCap:        100,
		IsActive:             true,
		SortOrder:            int(nextSeq()),
	}

	for _, opt := range opts {
		opt(plan)
	}

	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("Failed to create test plan: %v", err)
	}

	return plan
}

// WithPrice 设置月费
func WithPrice(price int) func(*model.Plan) {
	return func(p *model.Plan) {
		p.PriceMonthly = price
	}
}

// WithLimits 设置每日上限，nil 表示不限
func WithLimits(summary, image, detector *int) func(*model.Plan) {
	return func(p *model.Plan) {
		p.SummaryLimitPerDay = summary
		p.ImageLimitPerDay = image
		p.DetectorLimitPerDay = detector
	}
}

// WithPointRules 设置积分规则
func WithPointRules(perQuiz, perRoleplay5Min, dailyCap int) func(*model.Plan) {
	return func(p *model.Plan) {
		p.PointPerQuizCorrect = perQuiz
		p.PointPerRoleplay5Min = perRoleplay5Min
		p.PointDailyCap = dailyCap
	}
}

// WithInactive 设置为下架
func WithInactive() func(*model.Plan) {
	return func(p *model.Plan) {
		p.IsActive = false
	}
}

// TestMembership 直接绑定用户到套餐
func TestMembership(t *testing.T, db *gorm.DB, userID int64, plan *model.Plan) *model.Membership {
	t.Helper()

	m := &model.Membership{
		UserID:    userID,
		StartedAt: time.Now(),
		IsActive:  true,
	}
	if plan != nil {
		m.PlanID = &plan.ID
	}

	if err := db.Create(m).Error; err != nil {
		t.Fatalf("Failed to create test membership: %v", err)
	}

	return m
}

// TestWallet 创建带余额的钱包
func TestWallet(t *testing.T, db *gorm.DB, userID int64, balance int) *model.Wallet {
	t.Helper()

	w := &model.Wallet{UserID: userID, Balance: balance}
	if err := db.Create(w).Error; err != nil {
		t.Fatalf("Failed to create test wallet: %v", err)
	}

	return w
}

// TestPayment 写入一笔成功的支付
func TestPayment(t *testing.T, db *gorm.DB, userID int64, plan *model.Plan, cash int, createdAt time.Time) *model.PaymentTransaction {
	t.Helper()

	p := &model.PaymentTransaction{
		OrderNo:        fmt.Sprintf("DTTEST%d", nextSeq()),
		UserID:         userID,
		PlanID:         plan.ID,
		AmountTotal:    plan.PriceMonthly,
		AmountPaidCash: cash,
		PaymentMethod:  model.PaymentMethodCard,
		Status:         model.PaymentSuccess,
		CreatedAt:      createdAt,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}

	return p
}

// TestUsage 写入某天的用量
func TestUsage(t *testing.T, db *gorm.DB, userID int64, date string, feature model.FeatureKind, used int) *model.UsageCounter {
	t.Helper()

	c := &model.UsageCounter{
		UserID:    userID,
		UsageDate: date,
		Feature:   feature,
		UsedCount: used,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("Failed to create test usage counter: %v", err)
	}

	return c
}

// FixedClock 返回固定时间的时钟
func FixedClock(ts time.Time) func() time.Time {
	return func() time.Time {
		return ts
	}
}
