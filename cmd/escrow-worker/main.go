package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"escrow-core/internal/event"
	"escrow-core/internal/service/mq"
	"escrow-core/internal/service/trust"
	"escrow-core/internal/worker"
	"escrow-core/internal/worker/tasks"
	"escrow-core/pkg/config"
	"escrow-core/pkg/database"
	"escrow-core/pkg/logger"

	"go.uber.org/zap"
)

// escrow-worker 消费放款事件: 更新承包商信用分, 投递通知任务
// 与 escrow-server 分开部署, 任何失败都不会影响已经提交的放款
func main() {
	// 1. 初始化配置与日志
	config.Init()
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	logger.Info("启动事件消费服务 (Escrow Worker)...", zap.String("env", config.Global.App.Env))

	// 2. 数据库 (contractor_profiles / processed_events)
	db, err := database.ConnectPostgres(config.Global.DB.PostgresDSN(), false)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	defer database.Close(db)

	// 3. Redis
	rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}

	// 4. Asynq: 通知任务的生产端与处理端
	taskClient := worker.NewClient(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
	defer taskClient.Close()

	workerServer := worker.NewServer(
		config.Global.Redis.Addr,
		config.Global.Redis.Password,
		config.Global.Redis.DB,
		config.Global.Worker.Concurrency,
		tasks.LogNotifier{},
	)
	workerServer.Start()
	defer workerServer.Stop()

	// 5. MQ Consumer
	hostname, _ := os.Hostname()
	consumer, err := mq.NewConsumer(config.Global.Redis.MQType, rdb, config.Global.Kafka.Brokers, "escrow-trust-group", hostname)
	if err != nil {
		logger.Fatal("初始化消息队列失败", zap.Error(err))
	}

	trustSvc := trust.NewService(db, taskClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Info("开始监听放款事件", zap.String("topic", event.TopicMilestoneReleased))
		err := consumer.Subscribe(ctx, event.TopicMilestoneReleased, func(msg *mq.Message) error {
			return trustSvc.HandleReleased(ctx, msg)
		})
		if err != nil && ctx.Err() == nil {
			logger.Fatal("订阅失败", zap.Error(err))
		}
	}()

	// 6. 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在停止事件消费服务...")
	cancel()
	_ = consumer.Close()
	logger.Info("事件消费服务已停止")
}
