package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jodolyekim/Dotori/internal/pkg/logger"
	"github.com/jodolyekim/Dotori/internal/pkg/response"
)

// AdminChecker 判断用户是否为运营账号
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// RequireAdmin 必须挂在 Auth 之后
func RequireAdmin(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		isAdmin, err := checker.IsAdmin(c.Request.Context(), userID)
		if err != nil {
			logger.L.Error("admin check failed", zap.Int64("user_id", userID), zap.Error(err))
			response.ServerError(c, "")
			c.Abort()
			return
		}
		if !isAdmin {
			response.ForbiddenError(c, "")
			c.Abort()
			return
		}

		c.Next()
	}
}
