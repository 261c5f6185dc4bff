package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jodolyekim/Dotori/internal/model"
)

type PointTransactionRepository struct {
	db *gorm.DB
}

func NewPointTransactionRepository(db *gorm.DB) *PointTransactionRepository {
	return &PointTransactionRepository{db: db}
}

func (r *PointTransactionRepository) WithTx(tx *gorm.DB) *PointTransactionRepository {
	return &PointTransactionRepository{db: tx}
}

func (r *PointTransactionRepository) Create(ctx context.Context, tx *model.PointTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// ListByUser 按时间倒序分页
func (r *PointTransactionRepository) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]*model.PointTransaction, int64, error) {
	var (
		items []*model.PointTransaction
		total int64
	)

	query := r.db.WithContext(ctx).Model(&model.PointTransaction{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}
