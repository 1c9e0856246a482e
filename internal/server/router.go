package server

import (
	"escrow-core/internal/handler"
	"escrow-core/internal/server/routes"

	"escrow-core/pkg/monitor"
	"escrow-core/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Handlers HTTP 层依赖的全部 handler
type Handlers struct {
	Escrow   *handler.EscrowHandler
	Wallet   *handler.WalletHandler
	Internal *handler.InternalHandler
}

// NewHTTPRouter 初始化并返回一个 Gin Engine
// db 用于幂等键存储
func NewHTTPRouter(db *gorm.DB, h Handlers) *gin.Engine {
	// 0. 初始化监控指标与自定义校验规则
	monitor.Init()
	validator.Init()

	// 1. 创建 Engine (使用默认中间件: Logger, Recovery)
	r := gin.Default()

	// 2. 注册通用中间件
	r.Use(monitor.PrometheusMiddleware())

	// 3. 注册基础路由
	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 4. 注册 API 路由组
	api := r.Group("/api/v1")
	{
		routes.RegisterEscrowRoutes(api, db, h.Escrow)
		routes.RegisterWalletRoutes(api, db, h.Wallet)
	}

	// 5. 内部路由, 由网关在集群内开放
	routes.RegisterInternalRoutes(r.Group("/internal"), db, h.Internal)

	return r
}
