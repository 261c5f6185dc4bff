package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jodolyekim/Dotori/internal/api/middleware"
	"github.com/jodolyekim/Dotori/internal/model"
	"github.com/jodolyekim/Dotori/internal/pkg/response"
	"github.com/jodolyekim/Dotori/internal/service"
)

type UsageHandler struct {
	usageService *service.UsageService
	historyDays  int
}

func NewUsageHandler(usageService *service.UsageService, historyDays int) *UsageHandler {
	return &UsageHandler{
		usageService: usageService,
		historyDays:  historyDays,
	}
}

// Check 查询今天某功能是否还能用
// GET /api/v1/memberships/usage/:feature
func (h *UsageHandler) Check(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	feature, ok := model.ParseFeature(c.Param("feature"))
	if !ok {
		response.ParamError(c, service.ErrUnknownFeature.Error())
		return
	}

	result, err := h.usageService.CheckUsage(c.Request.Context(), userID, feature)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, result)
}

// Consumed 返回 ConsumeFeature 中间件的扣减结果
// POST /api/v1/memberships/consume/:feature
func (h *UsageHandler) Consumed(c *gin.Context) {
	result, ok := middleware.GetUsageResult(c)
	if !ok {
		response.ServerError(c, "")
		return
	}
	response.Success(c, result)
}

// Overview 今日用量和最近几天的历史
// GET /api/v1/memberships/stats/overview?days=7
func (h *UsageHandler) Overview(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	days := h.historyDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.ParamError(c, "days 必须是整数")
			return
		}
		days = n
	}

	overview, err := h.usageService.Overview(c.Request.Context(), userID, days)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, overview)
}
