package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"gorm.io/gorm"

	"github.com/jodolyekim/Dotori/internal/model"
	"github.com/jodolyekim/Dotori/internal/repository"
)

func intPtr(v int) *int {
	return &v
}

// DefaultPlans 初始套餐
func DefaultPlans() []*model.Plan {
	return []*model.Plan{
		{
			Code:                 model.PlanBasic,
			Name:                 "도토리 BASIC (무료)",
			Description:          "일 10회 글요약, 이미지 생성 불가, AI 디텍터 3회",
			PriceMonthly:         0,
			SummaryLimitPerDay:   intPtr(10),
			ImageLimitPerDay:     intPtr(0),
			DetectorLimitPerDay:  intPtr(3),
			PointPerQuizCorrect:  1,
			PointPerRoleplay5Min: 1,
			PointDailyCap:        100,
			IsActive:             true,
			SortOrder:            1,
		},
		{
			Code:                 model.PlanPlus,
			Name:                 "도토리 PLUS",
			Description:          "글요약 무제한, 이미지 3회/일, AI 디텍터 15회/일",
			PriceMonthly:         9900,
			SummaryLimitPerDay:   nil,
			ImageLimitPerDay:     intPtr(3),
			DetectorLimitPerDay:  intPtr(15),
			PointPerQuizCorrect:  5,
			PointPerRoleplay5Min: 5,
			PointDailyCap:        100,
			IsActive:             true,
			SortOrder:            2,
		},
		{
			Code:                 model.PlanPremium,
			Name:                 "도토리 PREMIUM",
			Description:          "글요약 무제한, 이미지 20회/일, AI 디텍터 50회/일",
			PriceMonthly:         14900,
			SummaryLimitPerDay:   nil,
			ImageLimitPerDay:     intPtr(20),
			DetectorLimitPerDay:  intPtr(50),
			PointPerQuizCorrect:  10,
			PointPerRoleplay5Min: 10,
			PointDailyCap:        100,
			IsActive:             true,
			SortOrder:            3,
		},
	}
}

type PlanService struct {
	planRepo *repository.PlanRepository
	seeded   atomic.Bool // 只是省掉重复插入，真正的幂等由唯一索引保证
}

func NewPlanService(planRepo *repository.PlanRepository) *PlanService {
	return &PlanService{planRepo: planRepo}
}

// EnsureSeeded 补齐缺失的初始套餐，已有套餐不覆盖
func (s *PlanService) EnsureSeeded(ctx context.Context) error {
	if s.seeded.Load() {
		return nil
	}

	for _, plan := range DefaultPlans() {
		if err := s.planRepo.CreateIfAbsent(ctx, plan); err != nil {
			return fmt.Errorf("seed plan %s: %w", plan.Code, err)
		}
	}

	s.seeded.Store(true)
	return nil
}

// DefaultPlan 返回 BASIC 套餐
func (s *PlanService) DefaultPlan(ctx context.Context) (*model.Plan, error) {
	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	return s.planRepo.GetByCode(ctx, model.PlanBasic)
}

// ListActive 在售套餐，按 sort_order 排序
func (s *PlanService) ListActive(ctx context.Context) ([]*model.Plan, error) {
	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	return s.planRepo.ListActive(ctx)
}

// GetActiveByCode 按代码查询在售套餐
func (s *PlanService) GetActiveByCode(ctx context.Context, code string) (*model.Plan, error) {
	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	plan, err := s.planRepo.GetActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}
