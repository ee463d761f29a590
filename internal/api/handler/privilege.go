package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/prv_line_server/internal/api/middleware"
	"github.com/qs3c/prv_line_server/internal/pkg/response"
	"github.com/qs3c/prv_line_server/internal/service"
)

type PrivilegeHandler struct {
	privilegeService *service.PrivilegeService
}

func NewPrivilegeHandler(privilegeService *service.PrivilegeService) *PrivilegeHandler {
	return &PrivilegeHandler{
		privilegeService: privilegeService,
	}
}

// GetCard 获取会员卡信息，首次访问时自动开户
// GET /api/v1/privilege
func (h *PrivilegeHandler) GetCard(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	info, err := h.privilegeService.GetCard(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, info)
}

// ListExpenses 消费记录
// GET /api/v1/privilege/expenses?page=1&page_size=20
func (h *PrivilegeHandler) ListExpenses(c *gin.Context) {
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

	items, total, err := h.privilegeService.ListExpenses(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}
