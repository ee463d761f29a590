package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/prv_line_server/internal/model/dto"
	"github.com/qs3c/prv_line_server/internal/pkg/response"
	"github.com/qs3c/prv_line_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// LineLogin LIFF 登录
// POST /api/v1/auth/line/login
func (h *AuthHandler) LineLogin(c *gin.Context) {
	var req dto.LineLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.LineLogin(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}

// LineAuthURL 获取 LINE 授权地址
// GET /api/v1/auth/line?redirect_uri=xxx
func (h *AuthHandler) LineAuthURL(c *gin.Context) {
	authURL, err := h.authService.GetLineAuthURL(c.Request.Context(), c.Query("redirect_uri"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, &dto.LineAuthURLResponse{URL: authURL})
}

// LineCallback LINE OAuth 回调
// GET /api/v1/auth/line/callback?code=xxx&state=xxx
// 登录时带了 redirect_uri 则携带 token 跳回前端，否则直接返回 JSON
func (h *AuthHandler) LineCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		response.ParamError(c, "缺少授权码")
		return
	}

	resp, redirectURI, err := h.authService.LineCallback(c.Request.Context(), code, state)
	if err != nil {
		respondError(c, err)
		return
	}

	if redirectURI != "" {
		target, err := url.Parse(redirectURI)
		if err == nil {
			q := target.Query()
			q.Set("token", resp.Token)
			target.RawQuery = q.Encode()
			c.Redirect(http.StatusFound, target.String())
			return
		}
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}
