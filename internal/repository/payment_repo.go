package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jodolyekim/Dotori/internal/model"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

func (r *PaymentRepository) Create(ctx context.Context, p *model.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*model.PaymentTransaction, error) {
	var items []*model.PaymentTransaction
	err := r.db.WithContext(ctx).Preload("Plan").Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").Limit(limit).Find(&items).Error
	return items, err
}

func (r *PaymentRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PaymentTransaction{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// SumCashSince since 之后成功支付的现金总额
func (r *PaymentRepository) SumCashSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.PaymentTransaction{}).
		Select("COALESCE(SUM(amount_paid_cash), 0)").
		Where("status = ? AND created_at >= ?", model.PaymentSuccess, since).
		Scan(&total).Error
	return total, err
}
