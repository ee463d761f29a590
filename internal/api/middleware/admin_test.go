package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/qs3c/prv_line_server/internal/pkg/response"
)

func TestAdmin(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		header     string
		wantCode   int
	}{
		{"valid key", "s3cret", "s3cret", response.CodeSuccess},
		{"wrong key", "s3cret", "guess", response.CodePermissionDenied},
		{"missing key", "s3cret", "", response.CodePermissionDenied},
		{"admin disabled", "", "", response.CodePermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Admin(tt.configured))
			router.POST("/admin", func(c *gin.Context) {
				response.Success(c, nil)
			})

			req := httptest.NewRequest("POST", "/admin", nil)
			if tt.header != "" {
				req.Header.Set(AdminKeyHeader, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			resp := parseResponse(t, w)
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}
