package main

import (
	"context"
	"io"
	"time"

	"escrow-core/internal/handler"
	"escrow-core/internal/model"
	"escrow-core/internal/server"
	"escrow-core/internal/service"
	"escrow-core/internal/service/escrow"
	"escrow-core/internal/service/fee"
	"escrow-core/internal/service/ledger"
	"escrow-core/internal/service/mq"
	"escrow-core/internal/service/wallet"

	"escrow-core/pkg/cache"
	"escrow-core/pkg/config"
	"escrow-core/pkg/database"
	"escrow-core/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	_ "escrow-core/docs/swagger"
)

// @title Escrow Core API
// @version 1.0
// @description Milestone escrow and contractor wallet service.

// @host localhost:8080
// @BasePath /
func main() {
	// 0. 初始化 Config
	config.Init()

	// 1. 初始化 Logger
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	// 2. 连接数据库
	devMode := config.Global.App.Env == "development"
	db, err := database.ConnectPostgres(config.Global.DB.PostgresDSN(), devMode)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	defer database.Close(db)

	// 开发环境直接 AutoMigrate, 其他环境使用 cmd/migrate
	if devMode {
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			logger.Fatal("AutoMigrate 失败", zap.Error(err))
		}
	}

	// 3. 连接 Redis
	rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}
	defer rdb.Close()

	// 4. 费率策略
	policy, err := fee.NewFromConfig(config.Global.Escrow)
	if err != nil {
		logger.Fatal("费率配置错误", zap.Error(err))
	}

	// 5. 缓存: L1 Memory (TTL 1m), L2 Redis (TTL from Set)
	localCache := cache.NewMemoryCache(1*time.Minute, 5*time.Minute)
	redisCache := cache.NewRedisCache(rdb, "escrow:")
	statusCache := cache.NewMultiLevelCache(localCache, redisCache)

	// 6. 核心服务
	store := ledger.NewStore(db)
	wallets := wallet.NewService(store, decimal.NewFromInt(config.Global.Wallet.WithdrawMin))
	escrowSvc := escrow.NewService(store, wallets, policy,
		escrow.WithStatusCache(statusCache, config.Global.Escrow.StatusCacheTTL))

	// 7. 消息中继: outbox -> MQ
	producer, err := mq.NewProducer(config.Global.Redis.MQType, rdb, config.Global.Kafka.Brokers)
	if err != nil {
		logger.Fatal("初始化消息队列失败", zap.Error(err))
	}
	if closer, ok := producer.(io.Closer); ok {
		defer closer.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relay := service.NewRelayService(db, producer, config.Global.Relay.Interval, config.Global.Relay.BatchSize)
	go relay.Start(ctx)

	// 8. 定时对账
	cronService := service.NewCronService(rdb, wallets, config.Global.Cron.ReconcileSpec)
	if err := cronService.Start(); err != nil {
		logger.Fatal("定时任务启动失败", zap.Error(err))
	}
	defer cronService.Stop()

	// 9. HTTP + gRPC
	r := server.NewHTTPRouter(db, server.Handlers{
		Escrow:   handler.NewEscrowHandler(escrowSvc),
		Wallet:   handler.NewWalletHandler(wallets),
		Internal: handler.NewInternalHandler(store, escrowSvc, wallets),
	})
	grpcServer := server.NewGRPCServer(escrowSvc)

	app, err := server.New(server.Config{
		HttpPort: config.Global.App.HttpPort,
		GrpcPort: config.Global.App.GrpcPort,
	}, r, grpcServer)
	if err != nil {
		logger.Fatal("应用启动失败", zap.Error(err))
	}

	// 运行 (阻塞)
	if err := app.Run(ctx); err != nil {
		logger.Error("应用异常退出", zap.Error(err))
	}
	logger.Info("系统已退出")
}
