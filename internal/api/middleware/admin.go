package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/prv_line_server/internal/pkg/response"
)

const AdminKeyHeader = "X-Admin-Key"

// Admin 后台接口认证，未配置 api_key 时拒绝所有请求
func Admin(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(AdminKeyHeader)
		if apiKey == "" || key == "" {
			response.PermissionError(c, "")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			response.PermissionError(c, "")
			c.Abort()
			return
		}

		c.Next()
	}
}
