package routes

import (
	"escrow-core/internal/handler"
	"escrow-core/internal/handler/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterEscrowRoutes 注册里程碑托管路由
func RegisterEscrowRoutes(rg *gin.RouterGroup, db *gorm.DB, h *handler.EscrowHandler) {
	milestones := rg.Group("/milestones")
	{
		// 只读接口供前端轮询, 不要求身份头
		milestones.GET("/:id/escrow", h.Status)
		milestones.GET("/:id/lock", h.IsLocked)
	}

	authed := milestones.Group("", middleware.Actor())
	{
		authed.POST("/:id/deposit", middleware.Idempotency(db), h.Deposit)
		authed.POST("/:id/evidence", h.SubmitEvidence)
		authed.POST("/:id/release", middleware.Idempotency(db), h.Release)
	}
}
