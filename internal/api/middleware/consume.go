package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jodolyekim/Dotori/internal/model"
	"github.com/jodolyekim/Dotori/internal/model/dto"
	"github.com/jodolyekim/Dotori/internal/pkg/logger"
	"github.com/jodolyekim/Dotori/internal/pkg/response"
	"github.com/jodolyekim/Dotori/internal/service"
)

// UsageResultKey 消耗成功后写入上下文的 *dto.UsageResult
const UsageResultKey = "usage_result"

// UsageConsumer 扣减功能次数
type UsageConsumer interface {
	ConsumeUsage(ctx context.Context, userID int64, feature model.FeatureKind, count int) (*dto.UsageResult, error)
}

// FeatureResolver 从请求中确定要扣减的功能
type FeatureResolver func(c *gin.Context) string

// FixedFeature 挂在具体功能路由前使用
func FixedFeature(feature model.FeatureKind) FeatureResolver {
	return func(*gin.Context) string { return string(feature) }
}

// FeatureFromParam 从路由参数读取功能类型
func FeatureFromParam(name string) FeatureResolver {
	return func(c *gin.Context) string { return c.Param(name) }
}

// ConsumeFeature 在业务处理前扣减 1 次当日用量，超限时直接返回剩余次数
// 只接受计次功能，POINT_EARN 不能通过这里扣减
func ConsumeFeature(usage UsageConsumer, resolve FeatureResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		feature, ok := model.ParseFeature(resolve(c))
		if !ok || feature == model.FeaturePointEarn {
			response.ParamError(c, service.ErrUnknownFeature.Error())
			c.Abort()
			return
		}

		result, err := usage.ConsumeUsage(c.Request.Context(), userID, feature, 1)
		if err != nil {
			var limitErr *service.FeatureLimitExceededError
			if errors.As(err, &limitErr) {
				response.LimitError(c, gin.H{
					"feature":   limitErr.Feature,
					"remaining": limitErr.Remaining,
				})
				c.Abort()
				return
			}

			logger.L.Error("consume usage failed",
				zap.Int64("user_id", userID),
				zap.String("feature", string(feature)),
				zap.Error(err),
			)
			response.ServerError(c, "")
			c.Abort()
			return
		}

		c.Set(UsageResultKey, result)
		c.Next()
	}
}

// GetUsageResult 读取 ConsumeFeature 写入的结果
func GetUsageResult(c *gin.Context) (*dto.UsageResult, bool) {
	v, ok := c.Get(UsageResultKey)
	if !ok {
		return nil, false
	}
	result, ok := v.(*dto.UsageResult)
	return result, ok
}
