package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"escrow-core/pkg/logger"
)

// 任务类型常量
const (
	TypeMilestoneReleasedNotify = "notify:milestone_released"
)

// MilestoneReleasedPayload 放款通知任务参数
type MilestoneReleasedPayload struct {
	EventID       string `json:"event_id"`
	MilestoneID   uint64 `json:"milestone_id"`
	MilestoneName string `json:"milestone_name"`
	ContractID    uint64 `json:"contract_id"`
	OwnerID       uint64 `json:"owner_id"`
	ContractorID  uint64 `json:"contractor_id"`
	Payout        string `json:"payout"`
}

// Notifier 通知投递渠道 (邮件/推送在本服务之外)
type Notifier interface {
	Notify(ctx context.Context, recipientID uint64, title, body string) error
}

// LogNotifier 只写日志的通知实现
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, recipientID uint64, title, body string) error {
	logger.Info("Notification delivered",
		zap.Uint64("recipient_id", recipientID),
		zap.String("title", title),
		zap.String("body", body))
	return nil
}

// ---------------------------------------------------------------------
// 1. Producer (Client) Code
// ---------------------------------------------------------------------

// NewMilestoneReleasedTask 创建放款通知任务
// TaskID 使用事件 ID, 同一事件重复入队会被 asynq 拒绝
func NewMilestoneReleasedTask(p MilestoneReleasedPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeMilestoneReleasedNotify, payload,
		asynq.TaskID("released:"+p.EventID),
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
		asynq.Queue("default"),
	), nil
}

// ---------------------------------------------------------------------
// 2. Consumer (Server) Code
// ---------------------------------------------------------------------

// MilestoneReleasedHandler 处理放款通知任务
type MilestoneReleasedHandler struct {
	notifier Notifier
}

func NewMilestoneReleasedHandler(n Notifier) *MilestoneReleasedHandler {
	return &MilestoneReleasedHandler{notifier: n}
}

// ProcessTask 实现 asynq.Handler
func (h *MilestoneReleasedHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p MilestoneReleasedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// JSON 解析失败，重试也没用，直接跳过 (SkipRetry)
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.notifier.Notify(ctx, p.ContractorID,
		"Payment released",
		fmt.Sprintf("Milestone %q has been released. %s VND was added to your wallet.", p.MilestoneName, p.Payout),
	); err != nil {
		return err
	}

	return h.notifier.Notify(ctx, p.OwnerID,
		"Milestone completed",
		fmt.Sprintf("You released milestone %q of contract #%d.", p.MilestoneName, p.ContractID),
	)
}
