package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jodolyekim/Dotori/internal/model"
	"github.com/jodolyekim/Dotori/internal/model/dto"
	"github.com/jodolyekim/Dotori/internal/pkg/logger"
	"github.com/jodolyekim/Dotori/internal/repository"
)

type MembershipService struct {
	membershipRepo *repository.MembershipRepository
	planService    *PlanService
	clock          *Clock
}

func NewMembershipService(
	membershipRepo *repository.MembershipRepository,
	planService *PlanService,
	clock *Clock,
) *MembershipService {
	return &MembershipService{
		membershipRepo: membershipRepo,
		planService:    planService,
		clock:          clock,
	}
}

// GetOrCreate 获取用户会员，不存在时分配 BASIC
func (s *MembershipService) GetOrCreate(ctx context.Context, userID int64) (*model.Membership, error) {
	basic, err := s.planService.DefaultPlan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load default plan: %w", err)
	}

	err = s.membershipRepo.CreateIfAbsent(ctx, &model.Membership{
		UserID:    userID,
		PlanID:    &basic.ID,
		StartedAt: s.clock.Now(),
		IsActive:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("create membership: %w", err)
	}

	m, err := s.membershipRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load membership: %w", err)
	}

	if m.Plan == nil {
		if err := s.repairPlanReference(ctx, m, basic); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// repairPlanReference 套餐引用为空或失效时回落到 BASIC
func (s *MembershipService) repairPlanReference(ctx context.Context, m *model.Membership, basic *model.Plan) error {
	logger.L.Warn("membership has no valid plan, falling back to default",
		zap.Int64("user_id", m.UserID),
		zap.Int64p("plan_id", m.PlanID),
	)

	if err := s.membershipRepo.AssignPlan(ctx, m.ID, basic.ID); err != nil {
		return fmt.Errorf("repair membership plan: %w", err)
	}

	m.PlanID = &basic.ID
	m.Plan = basic
	m.IsActive = true
	return nil
}

// GetUserPlan 用户当前套餐
func (s *MembershipService) GetUserPlan(ctx context.Context, userID int64) (*model.Plan, error) {
	m, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return m.Plan, nil
}

// GetInfo 会员快照
func (s *MembershipService) GetInfo(ctx context.Context, userID int64) (*dto.MembershipInfo, error) {
	m, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toMembershipInfo(m), nil
}

func toMembershipInfo(m *model.Membership) *dto.MembershipInfo {
	return &dto.MembershipInfo{
		Plan:      m.Plan,
		StartedAt: m.StartedAt,
		ExpiresAt: m.ExpiresAt,
		IsActive:  m.IsActive,
	}
}
