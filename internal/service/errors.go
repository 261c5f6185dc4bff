package service

import (
	"errors"
	"fmt"

	"github.com/jodolyekim/Dotori/internal/model"
)

var (
	ErrFeatureLimitExceeded = errors.New("今日使用次数已用完")
	ErrNotEnoughPoint       = errors.New("积分不足")
	ErrPlanNotFound         = errors.New("套餐不存在或已下架")
	ErrUnknownFeature       = errors.New("未知的功能类型")
	ErrInvalidUsageCount    = errors.New("使用次数必须大于 0")
)

// FeatureLimitExceededError 超出每日上限，Remaining 为本次拒绝前的剩余次数
type FeatureLimitExceededError struct {
	Feature   model.FeatureKind
	Remaining int
}

func (e *FeatureLimitExceededError) Error() string {
	return fmt.Sprintf("%s: %s remaining=%d", ErrFeatureLimitExceeded.Error(), e.Feature, e.Remaining)
}

func (e *FeatureLimitExceededError) Is(target error) bool {
	return target == ErrFeatureLimitExceeded
}

// NotEnoughPointError 余额不足
type NotEnoughPointError struct {
	Needed  int
	Current int
}

func (e *NotEnoughPointError) Error() string {
	return fmt.Sprintf("%s: needed=%d current=%d", ErrNotEnoughPoint.Error(), e.Needed, e.Current)
}

func (e *NotEnoughPointError) Is(target error) bool {
	return target == ErrNotEnoughPoint
}
