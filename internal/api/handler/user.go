package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/prv_line_server/internal/api/middleware"
	"github.com/qs3c/prv_line_server/internal/model/dto"
	"github.com/qs3c/prv_line_server/internal/pkg/response"
	"github.com/qs3c/prv_line_server/internal/service"
)

type UserHandler struct {
	userService *service.UserService
	pdpaService *service.PdpaService
	otpService  *service.OTPService
}

func NewUserHandler(userService *service.UserService, pdpaService *service.PdpaService, otpService *service.OTPService) *UserHandler {
	return &UserHandler{
		userService: userService,
		pdpaService: pdpaService,
		otpService:  otpService,
	}
}

// GetProfile 获取当前用户信息
// GET /api/v1/user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, profile)
}

// SaveProfile 填写基本信息
// PUT /api/v1/user/profile
func (h *UserHandler) SaveProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.SaveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	profile, err := h.userService.SaveProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "保存成功", profile)
}

// GetCardProfile 会员卡页面信息
// GET /api/v1/user/profile/card
func (h *UserHandler) GetCardProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	card, err := h.userService.GetCardProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, card)
}

// UpdateCardProfile 修改姓名和生日
// PUT /api/v1/user/profile/card
func (h *UserHandler) UpdateCardProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.UpdateCardProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	card, err := h.userService.UpdateCardProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", card)
}

// GetStatus 注册流程状态
// GET /api/v1/user/status
func (h *UserHandler) GetStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	status, err := h.userService.GetStatus(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, status)
}

// AcceptPdpa 同意 PDPA 条款
// POST /api/v1/user/pdpa
func (h *UserHandler) AcceptPdpa(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.PdpaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.pdpaService.Accept(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, info)
}

// GetPdpa 获取 PDPA 同意状态
// GET /api/v1/user/pdpa
func (h *UserHandler) GetPdpa(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	info, err := h.pdpaService.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, info)
}

// SendEmailOTP 发送邮箱验证码
// POST /api/v1/user/email/otp
func (h *UserHandler) SendEmailOTP(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := h.otpService.SendEmailOTP(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "验证码已发送", resp)
}

// VerifyEmailOTP 校验邮箱验证码
// POST /api/v1/user/email/verify
func (h *UserHandler) VerifyEmailOTP(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	status, err := h.otpService.VerifyEmailOTP(c.Request.Context(), userID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "邮箱验证成功", status)
}
