package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/prv_line_server/internal/api/middleware"
	"github.com/qs3c/prv_line_server/internal/pkg/response"
	"github.com/qs3c/prv_line_server/internal/service"
)

type RewardHandler struct {
	rewardService *service.RewardService
}

func NewRewardHandler(rewardService *service.RewardService) *RewardHandler {
	return &RewardHandler{
		rewardService: rewardService,
	}
}

// List 全部上架商品
// GET /api/v1/rewards
func (h *RewardHandler) List(c *gin.Context) {
	items, err := h.rewardService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, items)
}

// Available 当前积分可兑换的商品
// GET /api/v1/rewards/available
func (h *RewardHandler) Available(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := h.rewardService.Available(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, resp)
}

// Redeem 兑换商品
// POST /api/v1/rewards/:id/redeem
func (h *RewardHandler) Redeem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	productID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.rewardService.Redeem(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "兑换成功", resp)
}

// History 兑换记录
// GET /api/v1/rewards/redemptions
func (h *RewardHandler) History(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	items, err := h.rewardService.History(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, items)
}
