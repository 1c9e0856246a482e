package service

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"escrow-core/internal/service/wallet"
	"escrow-core/pkg/logger"
	"escrow-core/pkg/monitor"
	"escrow-core/pkg/utils/lock"
)

const reconcileLockKey = "cron:lock:wallet_reconcile"

type CronService struct {
	cron    *cron.Cron
	locker  lock.DistributedLock
	wallets *wallet.Service
	spec    string
}

func NewCronService(rdb *redis.Client, wallets *wallet.Service, spec string) *CronService {
	// 标准配置 (分钟级), 也支持 @every 描述符
	return &CronService{
		cron:    cron.New(),
		locker:  lock.NewRedisLock(rdb),
		wallets: wallets,
		spec:    spec,
	}
}

func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.ReconcileWallets); err != nil {
		return err
	}

	s.cron.Start()
	logger.Info("Cron Service started", zap.String("reconcile_spec", s.spec))
	return nil
}

func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("Cron Service stopped")
}

// ReconcileWallets 对账任务: 缓存余额 vs 流水求和
func (s *CronService) ReconcileWallets() {
	ctx := context.Background()

	// 1. 获取分布式锁, 防止多实例同时执行
	locked, err := s.locker.Acquire(ctx, reconcileLockKey, 5*time.Minute)
	if err != nil || !locked {
		logger.Debug("ReconcileWallets: 获取锁失败或已有实例在运行", zap.Error(err))
		return
	}
	defer func() {
		_ = s.locker.Release(ctx, reconcileLockKey)
	}()

	// 2. 执行对账
	start := time.Now()
	checked, drifted, err := s.wallets.ReconcileAll(ctx)
	monitor.Business.ReconcileJobDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Error("Wallet reconciliation failed", zap.Int("checked", checked), zap.Error(err))
		return
	}

	monitor.Business.WalletReconcileDrift.Reset()
	for _, r := range drifted {
		monitor.Business.WalletReconcileDrift.
			WithLabelValues(strconv.FormatUint(r.WalletID, 10)).
			Set(r.Drift.InexactFloat64())
		logger.Error("Wallet balance drifted from ledger",
			zap.Uint64("wallet_id", r.WalletID),
			zap.Uint64("customer_id", r.CustomerID),
			zap.String("cached", r.CachedBalance.String()),
			zap.String("ledger", r.LedgerBalance.String()))
	}
	logger.Info("Wallet reconciliation finished", zap.Int("checked", checked), zap.Int("drifted", len(drifted)))
}
