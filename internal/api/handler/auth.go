package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jodolyekim/Dotori/internal/model/dto"
	"github.com/jodolyekim/Dotori/internal/pkg/response"
	"github.com/jodolyekim/Dotori/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register 用户注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists),
			errors.Is(err, service.ErrUsernameExists),
			errors.Is(err, service.ErrPhoneExists):
			response.ParamError(c, err.Error())
		default:
			renderError(c, err)
		}
		return
	}

	response.Success(c, resp)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.AuthError(c, err.Error())
			return
		}
		renderError(c, err)
		return
	}

	response.Success(c, resp)
}
