package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jodolyekim/Dotori/internal/model"
)

type UsageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

func (r *UsageRepository) WithTx(tx *gorm.DB) *UsageRepository {
	return &UsageRepository{db: tx}
}

// Ensure 保证 (user, date, feature) 计数行存在
func (r *UsageRepository) Ensure(ctx context.Context, userID int64, date string, feature model.FeatureKind) error {
	row := &model.UsageCounter{UserID: userID, UsageDate: date, Feature: feature}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "usage_date"}, {Name: "feature"}},
			DoNothing: true,
		}).
		Create(row).Error
}

// GetForUpdate 对计数行加排他锁，必须在事务中调用
func (r *UsageRepository) GetForUpdate(ctx context.Context, userID int64, date string, feature model.FeatureKind) (*model.UsageCounter, error) {
	var c model.UsageCounter
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND usage_date = ? AND feature = ?", userID, date, feature).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UsedCount 只读查询，不存在时返回 0
func (r *UsageRepository) UsedCount(ctx context.Context, userID int64, date string, feature model.FeatureKind) (int, error) {
	var counters []model.UsageCounter
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND usage_date = ? AND feature = ?", userID, date, feature).
		Limit(1).Find(&counters).Error
	if err != nil || len(counters) == 0 {
		return 0, err
	}
	return counters[0].UsedCount, nil
}

func (r *UsageRepository) Increment(ctx context.Context, id int64, count int) error {
	return r.db.WithContext(ctx).Model(&model.UsageCounter{}).Where("id = ?", id).
		Update("used_count", gorm.Expr("used_count + ?", count)).Error
}

// ListRange 查询 [from, to] 区间内的计数（日期为 YYYY-MM-DD，可按字符串比较）
func (r *UsageRepository) ListRange(ctx context.Context, userID int64, from, to string) ([]model.UsageCounter, error) {
	var counters []model.UsageCounter
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND usage_date >= ? AND usage_date <= ?", userID, from, to).
		Order("usage_date ASC").Find(&counters).Error
	return counters, err
}

func (r *UsageRepository) CountBefore(ctx context.Context, date string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UsageCounter{}).Where("usage_date < ?", date).Count(&count).Error
	return count, err
}

// DeleteBefore 删除早于 date 的历史计数
func (r *UsageRepository) DeleteBefore(ctx context.Context, date string) (int64, error) {
	result := r.db.WithContext(ctx).Where("usage_date < ?", date).Delete(&model.UsageCounter{})
	return result.RowsAffected, result.Error
}

// SumSince 某功能自 fromDate（含）以来所有用户的用量合计
func (r *UsageRepository) SumSince(ctx context.Context, feature model.FeatureKind, fromDate string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.UsageCounter{}).
		Select("COALESCE(SUM(used_count), 0)").
		Where("feature = ? AND usage_date >= ?", feature, fromDate).
		Scan(&total).Error
	return total, err
}
