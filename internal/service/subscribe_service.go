package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/jodolyekim/Dotori/internal/model"
	"github.com/jodolyekim/Dotori/internal/model/dto"
	"github.com/jodolyekim/Dotori/internal/pkg/idgen"
	"github.com/jodolyekim/Dotori/internal/pkg/metrics"
	"github.com/jodolyekim/Dotori/internal/pkg/pubsub"
	"github.com/jodolyekim/Dotori/internal/repository"
)

var ErrInvalidPaymentMethod = errors.New("不支持的支付方式")

const defaultPaymentListSize = 50

type SubscribeService struct {
	db                *gorm.DB
	planService       *PlanService
	membershipService *MembershipService
	pointService      *PointService
	membershipRepo    *repository.MembershipRepository
	paymentRepo       *repository.PaymentRepository
	walletRepo        *repository.WalletRepository
	clock             *Clock
	publisher         EventPublisher
	metrics           *metrics.Metrics
}

func NewSubscribeService(
	db *gorm.DB,
	planService *PlanService,
	membershipService *MembershipService,
	pointService *PointService,
	membershipRepo *repository.MembershipRepository,
	paymentRepo *repository.PaymentRepository,
	walletRepo *repository.WalletRepository,
	clock *Clock,
	publisher EventPublisher,
	m *metrics.Metrics,
) *SubscribeService {
	return &SubscribeService{
		db:                db,
		planService:       planService,
		membershipService: membershipService,
		pointService:      pointService,
		membershipRepo:    membershipRepo,
		paymentRepo:       paymentRepo,
		walletRepo:        walletRepo,
		clock:             clock,
		publisher:         publisher,
		metrics:           m,
	}
}

func normalizePaymentMethod(method string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(method)) {
	case "", model.PaymentMethodCard:
		return model.PaymentMethodCard, nil
	case model.PaymentMethodEasy:
		return model.PaymentMethodEasy, nil
	}
	return "", ErrInvalidPaymentMethod
}

// Subscribe 购买/变更套餐：积分抵扣、模拟支付、切换套餐在同一事务内完成
func (s *SubscribeService) Subscribe(ctx context.Context, userID int64, req *dto.SubscribeRequest) (*dto.SubscribeResult, error) {
	method, err := normalizePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	plan, err := s.planService.GetActiveByCode(ctx, strings.ToUpper(strings.TrimSpace(req.PlanCode)))
	if err != nil {
		return nil, err
	}

	membership, err := s.membershipService.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 抵扣积分不能超过价格，也不能为负
	pointToUse := req.PointToUse
	if pointToUse < 0 {
		pointToUse = 0
	}
	if pointToUse > plan.PriceMonthly {
		pointToUse = plan.PriceMonthly
	}
	cashDue := plan.PriceMonthly - pointToUse

	payment := &model.PaymentTransaction{
		OrderNo:         idgen.GenOrderNo(),
		UserID:          userID,
		PlanID:          plan.ID,
		AmountTotal:     plan.PriceMonthly,
		AmountPointUsed: pointToUse,
		AmountPaidCash:  cashDue,
		PaymentMethod:   method,
		Status:          model.PaymentSuccess,
		CreatedAt:       s.clock.Now(),
	}

	var balance int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if pointToUse > 0 {
			description := fmt.Sprintf("Membership %s discount", plan.Code)
			if _, err := s.pointService.spendPoints(ctx, tx, userID, pointToUse, model.ReasonPurchaseDiscount, description); err != nil {
				return err
			}
		}

		if err := s.paymentRepo.WithTx(tx).Create(ctx, payment); err != nil {
			return err
		}

		if err := s.membershipRepo.WithTx(tx).AssignPlan(ctx, membership.ID, plan.ID); err != nil {
			return err
		}

		wallets := s.walletRepo.WithTx(tx)
		if err := wallets.CreateIfAbsent(ctx, userID); err != nil {
			return err
		}
		wallet, err := wallets.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		balance = wallet.Balance
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotEnoughPoint) {
			return nil, err
		}
		return nil, fmt.Errorf("subscribe %s: %w", plan.Code, err)
	}

	s.metrics.ObserveSubscription(plan.Code)
	if pointToUse > 0 {
		s.metrics.ObserveSpent(model.ReasonPurchaseDiscount, pointToUse)
		publishEvent(ctx, s.publisher, &pubsub.Event{
			Type:    pubsub.EventPointsSpent,
			UserID:  userID,
			Balance: balance,
			Delta:   -pointToUse,
			Reason:  model.ReasonPurchaseDiscount,
		})
	}
	publishEvent(ctx, s.publisher, &pubsub.Event{
		Type:     pubsub.EventPlanChanged,
		UserID:   userID,
		Balance:  balance,
		PlanCode: plan.Code,
	})

	membership.PlanID = &plan.ID
	membership.Plan = plan
	membership.IsActive = true

	return &dto.SubscribeResult{
		PaymentID:       payment.ID,
		OrderNo:         payment.OrderNo,
		PaymentStatus:   payment.Status,
		AmountTotal:     payment.AmountTotal,
		AmountPointUsed: payment.AmountPointUsed,
		AmountPaidCash:  payment.AmountPaidCash,
		Membership:      toMembershipInfo(membership),
		Wallet:          &dto.WalletInfo{Balance: balance},
	}, nil
}

// ListPayments 最近的支付记录
func (s *SubscribeService) ListPayments(ctx context.Context, userID int64) ([]*dto.PaymentInfo, error) {
	items, err := s.paymentRepo.ListByUser(ctx, userID, defaultPaymentListSize)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.PaymentInfo, 0, len(items))
	for _, p := range items {
		info := &dto.PaymentInfo{
			ID:              p.ID,
			OrderNo:         p.OrderNo,
			AmountTotal:     p.AmountTotal,
			AmountPointUsed: p.AmountPointUsed,
			AmountPaidCash:  p.AmountPaidCash,
			PaymentMethod:   p.PaymentMethod,
			Status:          p.Status,
			CreatedAt:       p.CreatedAt,
		}
		if p.Plan != nil {
			info.PlanCode = p.Plan.Code
		}
		out = append(out, info)
	}
	return out, nil
}
