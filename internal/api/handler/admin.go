package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jodolyekim/Dotori/internal/api/middleware"
	"github.com/jodolyekim/Dotori/internal/model/dto"
	"github.com/jodolyekim/Dotori/internal/pkg/response"
	"github.com/jodolyekim/Dotori/internal/service"
)

type AdminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// Analytics 运营看板
// GET /api/v1/admin/analytics
func (h *AdminHandler) Analytics(c *gin.Context) {
	result, err := h.adminService.Analytics(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, result)
}

// AdjustPoints 手动调整积分，delta 为负时扣减
// POST /api/v1/admin/points/adjust
func (h *AdminHandler) AdjustPoints(c *gin.Context) {
	operatorID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.AdjustPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.adminService.AdjustPoints(c.Request.Context(), operatorID, &req)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, result)
}
