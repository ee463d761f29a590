package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/prv_line_server/internal/pkg/response"
	"github.com/qs3c/prv_line_server/internal/service"
)

// respondError 按错误类别映射业务码，未知错误只记录日志
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		response.DuplicateError(c, err.Error())
	case errors.Is(err, service.ErrInsufficientPoints):
		response.InsufficientPointsError(c, "")
	default:
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		response.ServerError(c, "")
	}
}

// paramID 解析路径中的正整数 ID
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "无效的ID")
		return 0, false
	}
	return id, true
}
