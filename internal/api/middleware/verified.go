package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/prv_line_server/internal/model/dto"
	"github.com/qs3c/prv_line_server/internal/pkg/response"
)

// StatusChecker 查询注册流程状态
type StatusChecker interface {
	GetStatus(ctx context.Context, userID int64) (*dto.StatusInfo, error)
}

// RequireStatus 注册流程未到 minStatus 时拒绝访问
func RequireStatus(checker StatusChecker, minStatus int) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		status, err := checker.GetStatus(c.Request.Context(), userID)
		if err != nil {
			response.ServerError(c, "")
			c.Abort()
			return
		}

		if status.Status < minStatus {
			response.PermissionError(c, "请先完成会员注册")
			c.Abort()
			return
		}

		c.Next()
	}
}
