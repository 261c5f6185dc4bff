package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/jodolyekim/Dotori/config"
	"github.com/jodolyekim/Dotori/internal/pkg/metrics"
	"github.com/jodolyekim/Dotori/internal/pkg/pubsub"
	"github.com/jodolyekim/Dotori/internal/repository"
	"github.com/jodolyekim/Dotori/internal/testutil"
)

var kst = time.FixedZone("KST", 9*60*60)

// fakeClock 可手动推进的时钟
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recordingPublisher 记录发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []*pubsub.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e *pubsub.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) ofType(t string) []*pubsub.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*pubsub.Event
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

var errPublishDown = errors.New("redis down")

type testEnv struct {
	db        *gorm.DB
	clock     *fakeClock
	publisher *recordingPublisher
	metrics   *metrics.Metrics

	plans        *PlanService
	memberships  *MembershipService
	usage        *UsageService
	points       *PointService
	subscription *SubscribeService
	auth         *AuthService
	admin        *AdminService
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnv(t, testutil.SetupTestDB(t))
}

// setupServicesWithMySQL 连接真实 MySQL，用于验证行锁
func setupServicesWithMySQL(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnv(t, testutil.SetupTestDBWithMySQL(t))
}

func newTestEnv(t *testing.T, db *gorm.DB) *testEnv {
	t.Helper()
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	env := &testEnv{
		db:        db,
		clock:     &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, kst)},
		publisher: &recordingPublisher{},
		metrics:   metrics.New(prometheus.NewRegistry()),
	}
	clock := NewClock(kst, env.clock.Now)

	planRepo := repository.NewPlanRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	pointTxRepo := repository.NewPointTransactionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	userRepo := repository.NewUserRepository(db)

	env.plans = NewPlanService(planRepo)
	env.memberships = NewMembershipService(membershipRepo, env.plans, clock)
	env.usage = NewUsageService(db, usageRepo, walletRepo, env.memberships, clock, env.publisher, env.metrics)
	env.points = NewPointService(db, usageRepo, walletRepo, pointTxRepo, env.memberships, clock, env.publisher, env.metrics)
	env.subscription = NewSubscribeService(db, env.plans, env.memberships, env.points,
		membershipRepo, paymentRepo, walletRepo, clock, env.publisher, env.metrics)
	env.admin = NewAdminService(userRepo, membershipRepo, paymentRepo, usageRepo, env.points, clock)
	env.auth = NewAuthService(userRepo, env.memberships, &config.Config{
		JWT: config.JWTConfig{
			Secret:      "test-secret-key-for-testing",
			ExpireHours: 24,
		},
	})

	return env
}

// subscribeUserTo 直接把用户挂到指定套餐上
func (e *testEnv) subscribeUserTo(t *testing.T, code string) int64 {
	t.Helper()
	ctx := context.Background()

	user := testutil.TestUser(t, e.db)
	plan, err := e.plans.GetActiveByCode(ctx, code)
	if err != nil {
		t.Fatalf("load plan %s: %v", code, err)
	}
	testutil.TestMembership(t, e.db, user.ID, plan)
	return user.ID
}

func (e *testEnv) balance(t *testing.T, userID int64) int {
	t.Helper()
	w, err := e.points.GetWallet(context.Background(), userID)
	if err != nil {
		t.Fatalf("load wallet: %v", err)
	}
	return w.Balance
}
