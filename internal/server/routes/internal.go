package routes

import (
	"escrow-core/internal/handler"
	"escrow-core/internal/handler/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterInternalRoutes 注册内部路由 (报价/争议/推荐/运营服务调用)
func RegisterInternalRoutes(rg *gin.RouterGroup, db *gorm.DB, h *handler.InternalHandler) {
	rg.POST("/contracts", h.CreateContract)

	milestones := rg.Group("/milestones")
	{
		milestones.POST("/:id/dispute", h.OpenDispute)
		milestones.POST("/:id/unlock", h.Unlock)
		milestones.POST("/:id/cancel", h.Cancel)
	}

	wallets := rg.Group("/wallets")
	{
		wallets.POST("/:customer_id/commission", middleware.Idempotency(db), h.CreditCommission)
		wallets.POST("/:customer_id/adjust", middleware.Idempotency(db), h.Adjust)
	}

	// 钱包 ID 与客户 ID 是两套编号, 单独分组
	rg.GET("/reconcile/wallets/:wallet_id", h.Reconcile)
}
