package routes

import (
	"escrow-core/internal/handler"
	"escrow-core/internal/handler/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func RegisterWalletRoutes(rg *gin.RouterGroup, db *gorm.DB, h *handler.WalletHandler) {
	walletGroup := rg.Group("/wallets", middleware.Actor())
	{
		walletGroup.GET("/:customer_id", h.GetWallet)
		walletGroup.GET("/:customer_id/transactions", h.ListTransactions)
		walletGroup.POST("/:customer_id/withdraw", middleware.Idempotency(db), h.Withdraw)
	}
}
