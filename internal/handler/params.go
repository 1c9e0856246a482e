package handler

import (
	"strconv"

	"escrow-core/internal/handler/response"
	"escrow-core/pkg/errno"

	"github.com/gin-gonic/gin"
)

// uintParam 解析路径参数, 失败时写出错误响应并返回 false
func uintParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, errno.ErrBind.WithMessage(name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}
