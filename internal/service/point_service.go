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

// roleplayUnitMinutes 角色扮演每满 5 分钟计一次
const roleplayUnitMinutes = 5

const earnDescription = "Auto earn by rule"

var ErrInvalidAdjustment = errors.New("调整数额不能为 0")

type PointService struct {
	db                *gorm.DB
	usageRepo         *repository.UsageRepository
	walletRepo        *repository.WalletRepository
	pointTxRepo       *repository.PointTransactionRepository
	membershipService *MembershipService
	clock             *Clock
	publisher         EventPublisher
	metrics           *metrics.Metrics
}

func NewPointService(
	db *gorm.DB,
	usageRepo *repository.UsageRepository,
	walletRepo *repository.WalletRepository,
	pointTxRepo *repository.PointTransactionRepository,
	membershipService *MembershipService,
	clock *Clock,
	publisher EventPublisher,
	m *metrics.Metrics,
) *PointService {
	return &PointService{
		db:                db,
		usageRepo:         usageRepo,
		walletRepo:        walletRepo,
		pointTxRepo:       pointTxRepo,
		membershipService: membershipService,
		clock:             clock,
		publisher:         publisher,
		metrics:           m,
	}
}

// GetWallet 获取钱包，不存在时创建余额为 0 的钱包
func (s *PointService) GetWallet(ctx context.Context, userID int64) (*model.Wallet, error) {
	if err := s.walletRepo.CreateIfAbsent(ctx, userID); err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	return s.walletRepo.GetByUserID(ctx, userID)
}

// lockWallet 在事务内锁定钱包行
func (s *PointService) lockWallet(ctx context.Context, tx *gorm.DB, userID int64) (*model.Wallet, error) {
	wallets := s.walletRepo.WithTx(tx)
	if err := wallets.CreateIfAbsent(ctx, userID); err != nil {
		return nil, err
	}
	return wallets.GetForUpdate(ctx, userID)
}

// earnPoints 按每日上限入账，返回实际入账数和入账后余额
// 先锁 POINT_EARN 计数再锁钱包
func (s *PointService) earnPoints(ctx context.Context, tx *gorm.DB, userID int64, plan *model.Plan, base int, reason string) (int, int, error) {
	if base <= 0 {
		return 0, 0, nil
	}

	today := s.clock.Today()
	usage := s.usageRepo.WithTx(tx)
	if err := usage.Ensure(ctx, userID, today, model.FeaturePointEarn); err != nil {
		return 0, 0, err
	}
	counter, err := usage.GetForUpdate(ctx, userID, today, model.FeaturePointEarn)
	if err != nil {
		return 0, 0, err
	}

	capacity := plan.PointDailyCap - counter.UsedCount
	if plan.PointDailyCap <= 0 || capacity <= 0 {
		return 0, 0, nil
	}
	credited := base
	if credited > capacity {
		credited = capacity
	}

	wallet, err := s.lockWallet(ctx, tx, userID)
	if err != nil {
		return 0, 0, err
	}
	balance := wallet.Balance + credited
	if err := s.walletRepo.WithTx(tx).UpdateBalance(ctx, wallet.ID, balance); err != nil {
		return 0, 0, err
	}

	err = s.pointTxRepo.WithTx(tx).Create(ctx, &model.PointTransaction{
		UserID:      userID,
		TxType:      model.PointTxEarn,
		Amount:      credited,
		Reason:      reason,
		Description: earnDescription,
		CreatedAt:   s.clock.Now(),
	})
	if err != nil {
		return 0, 0, err
	}

	if err := usage.Increment(ctx, counter.ID, credited); err != nil {
		return 0, 0, err
	}

	return credited, balance, nil
}

func (s *PointService) earn(ctx context.Context, userID int64, base func(*model.Plan) int, reason string) (int, error) {
	plan, err := s.membershipService.GetUserPlan(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.usageRepo.Ensure(ctx, userID, s.clock.Today(), model.FeaturePointEarn); err != nil {
		return 0, fmt.Errorf("earn points: %w", err)
	}
	if err := s.walletRepo.CreateIfAbsent(ctx, userID); err != nil {
		return 0, fmt.Errorf("earn points: %w", err)
	}

	var credited, balance int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		credited, balance, err = s.earnPoints(ctx, tx, userID, plan, base(plan), reason)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("earn points: %w", err)
	}

	if credited > 0 {
		s.metrics.ObserveEarned(reason, credited)
		publishEvent(ctx, s.publisher, &pubsub.Event{
			Type:    pubsub.EventPointsEarned,
			UserID:  userID,
			Balance: balance,
			Delta:   credited,
			Reason:  reason,
		})
	}

	return credited, nil
}

// EarnForQuizCorrect 答对测验奖励
func (s *PointService) EarnForQuizCorrect(ctx context.Context, userID int64) (int, error) {
	return s.earn(ctx, userID, func(p *model.Plan) int {
		return p.PointPerQuizCorrect
	}, model.ReasonQuizCorrect)
}

// EarnForRoleplay 按完整的 5 分钟单位发放，不足 5 分钟不发
func (s *PointService) EarnForRoleplay(ctx context.Context, userID int64, minutes int) (int, error) {
	units := minutes / roleplayUnitMinutes
	if minutes < roleplayUnitMinutes || units <= 0 {
		return 0, nil
	}
	return s.earn(ctx, userID, func(p *model.Plan) int {
		return p.PointPerRoleplay5Min * units
	}, model.ReasonRoleplay)
}

// spendPoints 在事务内扣减，余额不足时返回 *NotEnoughPointError
func (s *PointService) spendPoints(ctx context.Context, tx *gorm.DB, userID int64, amount int, reason, description string) (int, error) {
	wallet, err := s.lockWallet(ctx, tx, userID)
	if err != nil {
		return 0, err
	}
	if wallet.Balance < amount {
		return wallet.Balance, &NotEnoughPointError{Needed: amount, Current: wallet.Balance}
	}

	balance := wallet.Balance - amount
	if err := s.walletRepo.WithTx(tx).UpdateBalance(ctx, wallet.ID, balance); err != nil {
		return 0, err
	}

	err = s.pointTxRepo.WithTx(tx).Create(ctx, &model.PointTransaction{
		UserID:      userID,
		TxType:      model.PointTxSpend,
		Amount:      amount,
		Reason:      reason,
		Description: description,
		CreatedAt:   s.clock.Now(),
	})
	if err != nil {
		return 0, err
	}

	return balance, nil
}

// SpendPoints 扣减积分，amount <= 0 时不做任何事
func (s *PointService) SpendPoints(ctx context.Context, userID int64, amount int, reason, description string) error {
	if amount <= 0 {
		return nil
	}

	if err := s.walletRepo.CreateIfAbsent(ctx, userID); err != nil {
		return fmt.Errorf("spend points: %w", err)
	}

	var balance int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		balance, err = s.spendPoints(ctx, tx, userID, amount, reason, description)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotEnoughPoint) {
			return err
		}
		return fmt.Errorf("spend points: %w", err)
	}

	s.metrics.ObserveSpent(reason, amount)
	publishEvent(ctx, s.publisher, &pubsub.Event{
		Type:    pubsub.EventPointsSpent,
		UserID:  userID,
		Balance: balance,
		Delta:   -amount,
		Reason:  reason,
	})
	return nil
}

// Adjust 运营手动调整，正数入账不受每日上限限制，负数按扣减处理
func (s *PointService) Adjust(ctx context.Context, userID int64, delta int, description string) (int, error) {
	if delta == 0 {
		return 0, ErrInvalidAdjustment
	}
	if delta < 0 {
		if err := s.SpendPoints(ctx, userID, -delta, model.ReasonAdjust, description); err != nil {
			return 0, err
		}
		wallet, err := s.GetWallet(ctx, userID)
		if err != nil {
			return 0, err
		}
		return wallet.Balance, nil
	}

	var balance int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := s.lockWallet(ctx, tx, userID)
		if err != nil {
			return err
		}
		balance = wallet.Balance + delta
		if err := s.walletRepo.WithTx(tx).UpdateBalance(ctx, wallet.ID, balance); err != nil {
			return err
		}
		return s.pointTxRepo.WithTx(tx).Create(ctx, &model.PointTransaction{
			UserID:      userID,
			TxType:      model.PointTxEarn,
			Amount:      delta,
			Reason:      model.ReasonAdjust,
			Description: description,
			CreatedAt:   s.clock.Now(),
		})
	})
	if err != nil {
		return 0, fmt.Errorf("adjust points: %w", err)
	}

	s.metrics.ObserveEarned(model.ReasonAdjust, delta)
	publishEvent(ctx, s.publisher, &pubsub.Event{
		Type:    pubsub.EventPointsEarned,
		UserID:  userID,
		Balance: balance,
		Delta:   delta,
		Reason:  model.ReasonAdjust,
	})
	return balance, nil
}

// ListTransactions 积分流水，新的在前
func (s *PointService) ListTransactions(ctx context.Context, userID int64, page, pageSize int) ([]*dto.PointTransactionInfo, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := s.pointTxRepo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*dto.PointTransactionInfo, 0, len(items))
	for _, item := range items {
		out = append(out, &dto.PointTransactionInfo{
			ID:           item.ID,
			TxType:       item.TxType,
			Amount:       item.Amount,
			SignedAmount: item.SignedAmount(),
			Reason:       item.Reason,
			Description:  item.Description,
			CreatedAt:    item.CreatedAt,
		})
	}
	return out, total, nil
}
