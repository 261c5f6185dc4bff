package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jodolyekim/Dotori/internal/model"
	"github.com/jodolyekim/Dotori/internal/model/dto"
	"github.com/jodolyekim/Dotori/internal/pkg/logger"
	"github.com/jodolyekim/Dotori/internal/repository"
)

const (
	analyticsWindowDays = 30

	// UnassignedPlanCode 套餐引用为空的会员归到这一组
	UnassignedPlanCode = "UNASSIGNED"

	defaultAdjustDescription = "Manual adjustment"
)

// AdminService 运营接口：看板统计和手动调整积分
type AdminService struct {
	userRepo       *repository.UserRepository
	membershipRepo *repository.MembershipRepository
	paymentRepo    *repository.PaymentRepository
	usageRepo      *repository.UsageRepository
	pointService   *PointService
	clock          *Clock
}

func NewAdminService(
	userRepo *repository.UserRepository,
	membershipRepo *repository.MembershipRepository,
	paymentRepo *repository.PaymentRepository,
	usageRepo *repository.UsageRepository,
	pointService *PointService,
	clock *Clock,
) *AdminService {
	return &AdminService{
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		paymentRepo:    paymentRepo,
		usageRepo:      usageRepo,
		pointService:   pointService,
		clock:          clock,
	}
}

// IsAdmin 用户是否为运营账号，用户不存在时返回 false
func (s *AdminService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin, nil
}

// Analytics 最近 30 天的用量、收入和当前套餐分布
func (s *AdminService) Analytics(ctx context.Context) (*dto.AdminAnalytics, error) {
	since := s.clock.DaysAgo(analyticsWindowDays)

	summary, err := s.usageRepo.SumSince(ctx, model.FeatureSummary, since)
	if err != nil {
		return nil, fmt.Errorf("sum summary usage: %w", err)
	}
	detector, err := s.usageRepo.SumSince(ctx, model.FeatureDetector, since)
	if err != nil {
		return nil, fmt.Errorf("sum detector usage: %w", err)
	}

	revenue, err := s.paymentRepo.SumCashSince(ctx, s.clock.StartOfDaysAgo(analyticsWindowDays))
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}

	rows, err := s.membershipRepo.CountByPlan(ctx, UnassignedPlanCode)
	if err != nil {
		return nil, fmt.Errorf("count memberships: %w", err)
	}
	plans := make([]*dto.PlanMembershipCount, 0, len(rows))
	for _, r := range rows {
		plans = append(plans, &dto.PlanMembershipCount{PlanCode: r.Code, Count: r.Count})
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].PlanCode < plans[j].PlanCode })

	return &dto.AdminAnalytics{
		Since: since,
		Usage: &dto.AdminUsageStats{
			Summary:  summary,
			Detector: detector,
		},
		Membership: &dto.AdminMembershipStats{
			Plans:         plans,
			Revenue30Days: revenue,
		},
	}, nil
}

// AdjustPoints 手动调整某个用户的积分
func (s *AdminService) AdjustPoints(ctx context.Context, operatorID int64, req *dto.AdjustPointsRequest) (*dto.AdjustPointsResult, error) {
	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = defaultAdjustDescription
	}

	balance, err := s.pointService.Adjust(ctx, req.UserID, req.Delta, description)
	if err != nil {
		return nil, err
	}

	logger.L.Info("points adjusted by operator",
		zap.Int64("operator_id", operatorID),
		zap.Int64("user_id", req.UserID),
		zap.Int("delta", req.Delta),
		zap.Int("balance", balance),
	)

	return &dto.AdjustPointsResult{
		UserID:  req.UserID,
		Delta:   req.Delta,
		Balance: balance,
	}, nil
}
