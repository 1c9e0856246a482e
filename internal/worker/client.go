package worker

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"

	"escrow-core/internal/event"
	"escrow-core/internal/worker/tasks"
)

// Client 封装 Asynq Client
type Client struct {
	client *asynq.Client
}

// NewClient 初始化 Client
// addr: "localhost:6379"
func NewClient(addr string, password string, db int) *Client {
	c := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Client{client: c}
}

// EnqueueMilestoneReleased 放款通知入队, 同一事件重复入队视为成功
func (c *Client) EnqueueMilestoneReleased(ctx context.Context, evt event.MilestoneReleasedEvent) error {
	task, err := tasks.NewMilestoneReleasedTask(tasks.MilestoneReleasedPayload{
		EventID:       evt.EventID,
		MilestoneID:   evt.MilestoneID,
		MilestoneName: evt.MilestoneName,
		ContractID:    evt.ContractID,
		OwnerID:       evt.OwnerID,
		ContractorID:  evt.ContractorID,
		Payout:        evt.Payout,
	})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// Close 关闭客户端连接
func (c *Client) Close() error {
	return c.client.Close()
}
