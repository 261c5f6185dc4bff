package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jodolyekim/Dotori/internal/api/middleware"
	"github.com/jodolyekim/Dotori/internal/model/dto"
	"github.com/jodolyekim/Dotori/internal/pkg/response"
	"github.com/jodolyekim/Dotori/internal/service"
)

type MembershipHandler struct {
	planService       *service.PlanService
	membershipService *service.MembershipService
	subscribeService  *service.SubscribeService
}

func NewMembershipHandler(
	planService *service.PlanService,
	membershipService *service.MembershipService,
	subscribeService *service.SubscribeService,
) *MembershipHandler {
	return &MembershipHandler{
		planService:       planService,
		membershipService: membershipService,
		subscribeService:  subscribeService,
	}
}

// Plans 可订阅的套餐列表
// GET /api/v1/memberships/plans
func (h *MembershipHandler) Plans(c *gin.Context) {
	plans, err := h.planService.ListActive(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, plans)
}

// Me 当前会员信息
// GET /api/v1/memberships/me
func (h *MembershipHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	info, err := h.membershipService.GetInfo(c.Request.Context(), userID)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, info)
}

// Subscribe 订阅或变更套餐，可用积分抵扣
// POST /api/v1/memberships/subscribe
func (h *MembershipHandler) Subscribe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.subscribeService.Subscribe(c.Request.Context(), userID, &req)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, result)
}

// Payments 支付记录
// GET /api/v1/memberships/payments
func (h *MembershipHandler) Payments(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	items, err := h.subscribeService.ListPayments(c.Request.Context(), userID)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, items)
}
