package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jodolyekim/Dotori/internal/model"
	"github.com/jodolyekim/Dotori/internal/model/dto"
	"github.com/jodolyekim/Dotori/internal/pkg/metrics"
	"github.com/jodolyekim/Dotori/internal/pkg/pubsub"
	"github.com/jodolyekim/Dotori/internal/repository"
)

// maxHistoryDays 统计接口最多返回的天数
const maxHistoryDays = 31

type UsageService struct {
	db                *gorm.DB
	usageRepo         *repository.UsageRepository
	walletRepo        *repository.WalletRepository
	membershipService *MembershipService
	clock             *Clock
	publisher         EventPublisher
	metrics           *metrics.Metrics
}

func NewUsageService(
	db *gorm.DB,
	usageRepo *repository.UsageRepository,
	walletRepo *repository.WalletRepository,
	membershipService *MembershipService,
	clock *Clock,
	publisher EventPublisher,
	m *metrics.Metrics,
) *UsageService {
	return &UsageService{
		db:                db,
		usageRepo:         usageRepo,
		walletRepo:        walletRepo,
		membershipService: membershipService,
		clock:             clock,
		publisher:         publisher,
		metrics:           m,
	}
}

func remainingOf(limit *int, used int) *int {
	if limit == nil {
		return nil
	}
	r := *limit - used
	if r < 0 {
		r = 0
	}
	return &r
}

// CheckUsage 只读查询今天是否还能使用
func (s *UsageService) CheckUsage(ctx context.Context, userID int64, feature model.FeatureKind) (*dto.UsageResult, error) {
	feature, ok := model.ParseFeature(string(feature))
	if !ok {
		return nil, ErrUnknownFeature
	}

	plan, err := s.membershipService.GetUserPlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	used, err := s.usageRepo.UsedCount(ctx, userID, s.clock.Today(), feature)
	if err != nil {
		return nil, fmt.Errorf("read usage: %w", err)
	}

	limit := plan.LimitFor(feature)
	return &dto.UsageResult{
		OK:        limit == nil || used < *limit,
		Feature:   feature,
		Limit:     limit,
		Remaining: remainingOf(limit, used),
		UsedToday: used,
	}, nil
}

// ConsumeUsage 原子地检查并扣减今天的次数
func (s *UsageService) ConsumeUsage(ctx context.Context, userID int64, feature model.FeatureKind, count int) (*dto.UsageResult, error) {
	feature, ok := model.ParseFeature(string(feature))
	if !ok {
		return nil, ErrUnknownFeature
	}
	if count < 1 {
		return nil, ErrInvalidUsageCount
	}

	plan, err := s.membershipService.GetUserPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	limit := plan.LimitFor(feature)
	today := s.clock.Today()

	// 计数行在事务外建好，事务内只争同一行锁
	if err := s.usageRepo.Ensure(ctx, userID, today, feature); err != nil {
		return nil, fmt.Errorf("consume %s: %w", feature, err)
	}

	var usedToday int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		usage := s.usageRepo.WithTx(tx)
		counter, err := usage.GetForUpdate(ctx, userID, today, feature)
		if err != nil {
			return err
		}

		if limit != nil && counter.UsedCount+count > *limit {
			return &FeatureLimitExceededError{
				Feature:   feature,
				Remaining: *remainingOf(limit, counter.UsedCount),
			}
		}

		if err := usage.Increment(ctx, counter.ID, count); err != nil {
			return err
		}
		usedToday = counter.UsedCount + count
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrFeatureLimitExceeded) {
			s.metrics.ObserveRejected(string(feature))
			return nil, err
		}
		return nil, fmt.Errorf("consume %s: %w", feature, err)
	}

	s.metrics.ObserveConsumed(string(feature), count)

	result := &dto.UsageResult{
		OK:        true,
		Feature:   feature,
		Limit:     limit,
		Remaining: remainingOf(limit, usedToday),
		UsedToday: usedToday,
	}

	publishEvent(ctx, s.publisher, &pubsub.Event{
		Type:      pubsub.EventUsageConsumed,
		UserID:    userID,
		Feature:   string(feature),
		UsedToday: usedToday,
		Remaining: result.Remaining,
	})

	return result, nil
}

// Overview 今日用量和最近 days 天的历史
func (s *UsageService) Overview(ctx context.Context, userID int64, days int) (*dto.UsageOverview, error) {
	if days < 1 {
		days = 7
	}
	if days > maxHistoryDays {
		days = maxHistoryDays
	}

	m, err := s.membershipService.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	plan := m.Plan

	dates := s.clock.LastDays(days)
	today := dates[len(dates)-1]

	rows, err := s.usageRepo.ListRange(ctx, userID, dates[0], today)
	if err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}

	byDay := make(map[model.FeatureKind]map[string]int, len(model.AllFeatures))
	for _, row := range rows {
		if byDay[row.Feature] == nil {
			byDay[row.Feature] = make(map[string]int)
		}
		byDay[row.Feature][row.UsageDate] = row.UsedCount
	}

	history := func(feature model.FeatureKind) []int {
		out := make([]int, len(dates))
		for i, d := range dates {
			out[i] = byDay[feature][d]
		}
		return out
	}

	featureStat := func(feature model.FeatureKind) *dto.FeatureStat {
		limit := plan.LimitFor(feature)
		used := byDay[feature][today]
		return &dto.FeatureStat{
			Limit:     limit,
			Used:      used,
			Remaining: remainingOf(limit, used),
			History:   history(feature),
		}
	}

	if err := s.walletRepo.CreateIfAbsent(ctx, userID); err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load wallet: %w", err)
	}

	return &dto.UsageOverview{
		PlanCode:  plan.Code,
		PlanName:  plan.Name,
		ExpiresAt: m.ExpiresAt,
		Dates:     dates,
		Summary:   featureStat(model.FeatureSummary),
		Image:     featureStat(model.FeatureImage),
		Detector:  featureStat(model.FeatureDetector),
		Points: &dto.PointStat{
			Balance:     wallet.Balance,
			TodayEarned: byDay[model.FeaturePointEarn][today],
			DailyCap:    plan.PointDailyCap,
			History:     history(model.FeaturePointEarn),
		},
	}, nil
}

// SweepBefore 删除 retentionDays 天之前的计数，dryRun 时只统计
func (s *UsageService) SweepBefore(ctx context.Context, retentionDays int, dryRun bool) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := s.clock.DaysAgo(retentionDays)

	if dryRun {
		return s.usageRepo.CountBefore(ctx, cutoff)
	}

	n, err := s.usageRepo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep usage before %s: %w", cutoff, err)
	}
	s.metrics.ObserveSwept(n)
	return n, nil
}
