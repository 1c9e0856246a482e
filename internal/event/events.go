package event

import "time"

// Outbox / MQ 主题
const (
	TopicMilestoneDeposited = "escrow_events_deposited"
	TopicMilestoneCompleted = "escrow_events_completed"
	TopicMilestoneReleased  = "escrow_events_released"
	TopicMilestoneDisputed  = "escrow_events_disputed"
	TopicDisputeResolved    = "escrow_events_dispute_resolved"
)

// MilestoneDepositedEvent 业主入金事件
// Topic: escrow_events_deposited
type MilestoneDepositedEvent struct {
	EventID     string    `json:"event_id"`
	MilestoneID uint64    `json:"milestone_id"`
	ContractID  uint64    `json:"contract_id"`
	OwnerID     uint64    `json:"owner_id"`
	Amount      string    `json:"amount"` // Decimal string
	DepositedAt time.Time `json:"deposited_at"`
}

// MilestoneCompletedEvent 承包商提交完工证据
// Topic: escrow_events_completed
type MilestoneCompletedEvent struct {
	EventID      string    `json:"event_id"`
	MilestoneID  uint64    `json:"milestone_id"`
	ContractID   uint64    `json:"contract_id"`
	ContractorID uint64    `json:"contractor_id"`
	EvidenceURL  string    `json:"evidence_url"`
	CompletedAt  time.Time `json:"completed_at"`
}

// MilestoneReleasedEvent 放款事件, 信用分更新和通知分发订阅该事件
// Topic: escrow_events_released
type MilestoneReleasedEvent struct {
	EventID       string    `json:"event_id"`
	MilestoneID   uint64    `json:"milestone_id"`
	MilestoneName string    `json:"milestone_name"`
	ContractID    uint64    `json:"contract_id"`
	OwnerID       uint64    `json:"owner_id"`
	ContractorID  uint64    `json:"contractor_id"`
	ApproverID    uint64    `json:"approver_id"` // 0 = 系统自动确认
	Amount        string    `json:"amount"`
	Payout        string    `json:"payout"`
	Fee           string    `json:"fee"`
	ReleasedAt    time.Time `json:"released_at"`
}

// MilestoneDisputedEvent 争议开启
// Topic: escrow_events_disputed
type MilestoneDisputedEvent struct {
	EventID     string `json:"event_id"`
	MilestoneID uint64 `json:"milestone_id"`
	ContractID  uint64 `json:"contract_id"`
	OpenedBy    uint64 `json:"opened_by"`
	PriorState  string `json:"prior_state"`
	Reason      string `json:"reason"`
}

// DisputeResolvedEvent 争议结束 (unlock 或 cancel)
// Topic: escrow_events_dispute_resolved
type DisputeResolvedEvent struct {
	EventID     string `json:"event_id"`
	MilestoneID uint64 `json:"milestone_id"`
	ContractID  uint64 `json:"contract_id"`
	Resolution  string `json:"resolution"` // unlock | cancel
	NewState    string `json:"new_state"`
	Refunded    string `json:"refunded,omitempty"`
}
