package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jodolyekim/Dotori/internal/pkg/jwt"
	"github.com/jodolyekim/Dotori/internal/pkg/response"
)

const (
	UserIDKey = "userID"
)

// BearerToken 从 Authorization 头取出令牌
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if authHeader == "" || tokenString == authHeader {
		return "", false
	}
	return tokenString, true
}

// Auth JWT 认证中间件
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			response.AuthError(c, "请提供认证信息")
			c.Abort()
			return
		}

		tokenString, ok := BearerToken(c)
		if !ok {
			response.AuthError(c, "认证格式错误")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				response.AuthError(c, "登录已过期")
			} else {
				response.AuthError(c, "认证失败")
			}
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}
