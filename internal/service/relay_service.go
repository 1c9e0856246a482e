package service

import (
	"context"
	"time"

	"escrow-core/internal/model"
	"escrow-core/internal/service/mq"
	"escrow-core/pkg/logger"
	"escrow-core/pkg/monitor"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RelayService 负责将本地消息表的消息搬运到 MQ
type RelayService struct {
	db        *gorm.DB
	producer  mq.Producer
	interval  time.Duration
	batchSize int
}

func NewRelayService(db *gorm.DB, producer mq.Producer, interval time.Duration, batchSize int) *RelayService {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &RelayService{
		db:        db,
		producer:  producer,
		interval:  interval,
		batchSize: batchSize,
	}
}

func (s *RelayService) Start(ctx context.Context) {
	logger.Info("Outbox relay started", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				logger.Error("Outbox relay batch failed", zap.Error(err))
			}
		}
	}
}

// RunOnce 投递一批 PENDING 消息, 返回成功投递的条数
// 发送成功后才标记 SENT => At-least-once, 消费端需要幂等
func (s *RelayService) RunOnce(ctx context.Context) (int, error) {
	var messages []model.OutboxMessage
	if err := s.db.WithContext(ctx).
		Where("status = ?", model.OutboxPending).
		Order("id ASC").
		Limit(s.batchSize).
		Find(&messages).Error; err != nil {
		return 0, err
	}

	sent := 0
	for i := range messages {
		msg := &messages[i]
		if err := s.producer.Publish(ctx, msg.Topic, msg.Key, msg.Payload); err != nil {
			monitor.Business.OutboxRelayedTotal.WithLabelValues(msg.Topic, "error").Inc()
			logger.Warn("Outbox publish failed",
				zap.Uint64("outbox_id", msg.ID), zap.String("topic", msg.Topic), zap.Error(err))
			if uerr := s.db.WithContext(ctx).Model(msg).Update("attempts", gorm.Expr("attempts + 1")).Error; uerr != nil {
				logger.Error("Outbox attempts update failed", zap.Uint64("outbox_id", msg.ID), zap.Error(uerr))
			}
			// 保证同一合同的事件顺序, 本批次后面的消息留到下一轮
			break
		}

		if err := s.db.WithContext(ctx).Model(msg).Updates(map[string]interface{}{
			"status":   model.OutboxSent,
			"attempts": gorm.Expr("attempts + 1"),
		}).Error; err != nil {
			logger.Error("Outbox mark sent failed", zap.Uint64("outbox_id", msg.ID), zap.Error(err))
			return sent, err
		}
		monitor.Business.OutboxRelayedTotal.WithLabelValues(msg.Topic, "sent").Inc()
		sent++
	}

	if sent > 0 {
		logger.Debug("Outbox batch relayed", zap.Int("sent", sent), zap.Int("fetched", len(messages)))
	}
	return sent, nil
}
