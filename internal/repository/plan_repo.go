package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jodolyekim/Dotori/internal/model"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) WithTx(tx *gorm.DB) *PlanRepository {
	return &PlanRepository{db: tx}
}

// CreateIfAbsent 按 code 插入，已存在时不覆盖
func (r *PlanRepository) CreateIfAbsent(ctx context.Context, plan *model.Plan) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(plan).Error
}

func (r *PlanRepository) GetByCode(ctx context.Context, code string) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepository) GetActiveByCode(ctx context.Context, code string) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.WithContext(ctx).Where("code = ? AND is_active = ?", code, true).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepository) ListActive(ctx context.Context) ([]*model.Plan, error) {
	var plans []*model.Plan
	err := r.db.WithContext(ctx).Where("is_active = ?", true).
		Order("sort_order ASC, id ASC").Find(&plans).Error
	return plans, err
}

func (r *PlanRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Plan{}).Count(&count).Error
	return count, err
}
