package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jodolyekim/Dotori/internal/api/middleware"
	"github.com/jodolyekim/Dotori/internal/model/dto"
	"github.com/jodolyekim/Dotori/internal/pkg/response"
	"github.com/jodolyekim/Dotori/internal/service"
)

type PointHandler struct {
	pointService *service.PointService
}

func NewPointHandler(pointService *service.PointService) *PointHandler {
	return &PointHandler{
		pointService: pointService,
	}
}

// Wallet 积分余额
// GET /api/v1/memberships/points
func (h *PointHandler) Wallet(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	wallet, err := h.pointService.GetWallet(c.Request.Context(), userID)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, &dto.WalletInfo{Balance: wallet.Balance})
}

// History 积分流水
// GET /api/v1/memberships/points/history
func (h *PointHandler) History(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := h.pointService.ListTransactions(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		renderError(c, err)
		return
	}
	response.SuccessPage(c, total, page, pageSize, items)
}

// EarnQuiz 答对测验
// POST /api/v1/memberships/points/earn/quiz
func (h *PointHandler) EarnQuiz(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	credited, err := h.pointService.EarnForQuizCorrect(c.Request.Context(), userID)
	if err != nil {
		renderError(c, err)
		return
	}
	h.renderEarn(c, userID, credited)
}

// EarnRoleplay 角色扮演结束
// POST /api/v1/memberships/points/earn/roleplay
func (h *PointHandler) EarnRoleplay(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.EarnRoleplayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	credited, err := h.pointService.EarnForRoleplay(c.Request.Context(), userID, req.Minutes)
	if err != nil {
		renderError(c, err)
		return
	}
	h.renderEarn(c, userID, credited)
}

func (h *PointHandler) renderEarn(c *gin.Context, userID int64, credited int) {
	wallet, err := h.pointService.GetWallet(c.Request.Context(), userID)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, &dto.EarnResult{Credited: credited, Balance: wallet.Balance})
}
