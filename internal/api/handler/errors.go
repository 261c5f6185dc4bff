package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jodolyekim/Dotori/internal/pkg/logger"
	"github.com/jodolyekim/Dotori/internal/pkg/response"
	"github.com/jodolyekim/Dotori/internal/service"
)

// renderError 把业务错误映射为响应码，未知错误记日志后返回 5000
func renderError(c *gin.Context, err error) {
	var limitErr *service.FeatureLimitExceededError
	var pointErr *service.NotEnoughPointError

	switch {
	case errors.As(err, &limitErr):
		response.LimitError(c, gin.H{
			"feature":   limitErr.Feature,
			"remaining": limitErr.Remaining,
		})
	case errors.As(err, &pointErr):
		response.PointError(c, gin.H{
			"needed":  pointErr.Needed,
			"current": pointErr.Current,
		})
	case errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrUserNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrUnknownFeature),
		errors.Is(err, service.ErrInvalidUsageCount),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidAdjustment):
		response.ParamError(c, err.Error())
	default:
		logger.L.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		response.ServerError(c, "")
	}
}
