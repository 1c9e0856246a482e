package middleware

import (
	"strconv"

	"escrow-core/internal/handler/response"
	"escrow-core/pkg/errno"

	"github.com/gin-gonic/gin"
)

const (
	HeaderUserID = "X-User-ID"
	ctxActorID   = "actor_id"
)

// Actor 从网关注入的 X-User-ID 头读取调用方身份
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderUserID)
		id, err := strconv.ParseUint(raw, 10, 64)
		if raw == "" || err != nil || id == 0 {
			response.Error(c, errno.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Set(ctxActorID, id)
		c.Next()
	}
}

// ActorID 返回 Actor 中间件解析出的调用方 ID
func ActorID(c *gin.Context) uint64 {
	return c.GetUint64(ctxActorID)
}
