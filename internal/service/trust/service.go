package trust

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"escrow-core/internal/event"
	"escrow-core/internal/model"
	"escrow-core/internal/service/mq"
	"escrow-core/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// ReleaseBonus 每次放款增加的信用分
	ReleaseBonus = 2
	// MaxTrustScore 信用分上限
	MaxTrustScore = 100
)

// ReleaseNotifier 放款通知入队 (asynq)
type ReleaseNotifier interface {
	EnqueueMilestoneReleased(ctx context.Context, evt event.MilestoneReleasedEvent) error
}

// Service 消费放款事件: 更新承包商信用分并分发通知
// 不参与放款事务, 失败也不会影响已经提交的放款
type Service struct {
	db       *gorm.DB
	notifier ReleaseNotifier
}

func NewService(db *gorm.DB, notifier ReleaseNotifier) *Service {
	return &Service{db: db, notifier: notifier}
}

// HandleReleased mq.Consumer 的回调, 至少一次投递, 通过 processed_events 去重
func (s *Service) HandleReleased(ctx context.Context, msg *mq.Message) error {
	var evt event.MilestoneReleasedEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		// 格式错误的消息重试也无法处理, 记录后确认
		logger.Error("Malformed released event", zap.String("id", msg.ID), zap.Error(err))
		return nil
	}
	if evt.EventID == "" {
		logger.Error("Released event without event_id", zap.String("id", msg.ID))
		return nil
	}

	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.ProcessedEvent{
			EventID:     evt.EventID,
			Topic:       event.TopicMilestoneReleased,
			ProcessedAt: time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.ContractorProfile{
			CustomerID: evt.ContractorID,
			TrustScore: model.DefaultTrustScore,
		}).Error; err != nil {
			return err
		}

		applied = true
		return tx.Model(&model.ContractorProfile{}).
			Where("customer_id = ?", evt.ContractorID).
			Updates(map[string]interface{}{
				"trust_score": gorm.Expr(fmt.Sprintf(
					"CASE WHEN trust_score + %d > %d THEN %d ELSE trust_score + %d END",
					ReleaseBonus, MaxTrustScore, MaxTrustScore, ReleaseBonus)),
				"milestones_released": gorm.Expr("milestones_released + 1"),
				"updated_at":          time.Now(),
			}).Error
	})
	if err != nil {
		return err
	}

	if !applied {
		logger.Debug("Released event already processed", zap.String("event_id", evt.EventID))
		return nil
	}

	logger.Info("Trust score updated",
		zap.Uint64("contractor_id", evt.ContractorID),
		zap.Uint64("milestone_id", evt.MilestoneID))

	if s.notifier != nil {
		if err := s.notifier.EnqueueMilestoneReleased(ctx, evt); err != nil {
			logger.Error("Enqueue release notification failed",
				zap.String("event_id", evt.EventID), zap.Error(err))
		}
	}
	return nil
}

// Profile 查询承包商信用档案, 没有记录时返回默认值
func (s *Service) Profile(ctx context.Context, customerID uint64) (*model.ContractorProfile, error) {
	var p model.ContractorProfile
	err := s.db.WithContext(ctx).Where("customer_id = ?", customerID).
		Attrs(model.ContractorProfile{TrustScore: model.DefaultTrustScore}).
		FirstOrInit(&p).Error
	if err != nil {
		return nil, err
	}
	p.CustomerID = customerID
	return &p, nil
}
