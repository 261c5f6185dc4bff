package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jodolyekim/Dotori/internal/model"
)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) WithTx(tx *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: tx}
}

// CreateIfAbsent 依赖 user_id 唯一索引，并发首次访问时只有一条能插入
func (r *MembershipRepository) CreateIfAbsent(ctx context.Context, m *model.Membership) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(m).Error
}

// GetByUserID 查询会员并预加载套餐
func (r *MembershipRepository) GetByUserID(ctx context.Context, userID int64) (*model.Membership, error) {
	var m model.Membership
	err := r.db.WithContext(ctx).Preload("Plan").Where("user_id = ?", userID).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// PlanCount 每个套餐的会员数
type PlanCount struct {
	Code  string
	Count int64
}

// CountByPlan 按套餐代码分组计数，套餐缺失的记在 unassigned 下
func (r *MembershipRepository) CountByPlan(ctx context.Context, unassigned string) ([]PlanCount, error) {
	var rows []PlanCount
	err := r.db.WithContext(ctx).Model(&model.Membership{}).
		Select("COALESCE(plans.code, ?) AS code, COUNT(memberships.id) AS count", unassigned).
		Joins("LEFT JOIN plans ON plans.id = memberships.plan_id").
		Group("plans.code").
		Scan(&rows).Error
	return rows, err
}

// AssignPlan 更换套餐并重新激活
func (r *MembershipRepository) AssignPlan(ctx context.Context, id, planID int64) error {
	return r.db.WithContext(ctx).Model(&model.Membership{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"plan_id":   planID,
			"is_active": true,
		}).Error
}
