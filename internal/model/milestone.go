package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MilestoneState 里程碑状态. 封闭集合, 新增状态必须同步修改状态机转换表
type MilestoneState string

const (
	StatePending   MilestoneState = "PENDING"
	StateDeposited MilestoneState = "DEPOSITED"
	StateCompleted MilestoneState = "COMPLETED"
	StateReleased  MilestoneState = "RELEASED"
	StateDisputed  MilestoneState = "DISPUTED"
	StateCancelled MilestoneState = "CANCELLED"
)

// AllStates 按生命周期顺序列出所有状态
func AllStates() []MilestoneState {
	return []MilestoneState{StatePending, StateDeposited, StateCompleted, StateReleased, StateDisputed, StateCancelled}
}

// Terminal 终态之后不允许任何操作
func (s MilestoneState) Terminal() bool {
	return s == StateReleased || s == StateCancelled
}

// HoldsFunds 该状态下里程碑金额计入合同的 EscrowBalance
func (s MilestoneState) HoldsFunds() bool {
	return s == StateDeposited || s == StateCompleted || s == StateDisputed
}

// Milestone 合同的分阶段付款节点
// 核心设计: Version 字段实现乐观锁, 每次状态转换 +1
type Milestone struct {
	ID              uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ContractID      uint64          `gorm:"not null;index;uniqueIndex:idx_contract_seq" json:"contract_id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,0);not null" json:"amount"` // 创建后不可修改
	Seq             int             `gorm:"column:seq;not null;uniqueIndex:idx_contract_seq" json:"order"`
	State           MilestoneState  `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"state"`
	PreDisputeState MilestoneState  `gorm:"type:varchar(16)" json:"pre_dispute_state,omitempty"` // 解除争议时恢复到的状态
	Version         uint64          `gorm:"not null;default:0" json:"version"`
	EvidenceURL     string          `gorm:"type:text" json:"evidence_url,omitempty"`
	EvidenceNotes   string          `gorm:"type:text" json:"evidence_notes,omitempty"`
	DepositNote     string          `gorm:"type:text" json:"deposit_note,omitempty"`
	DisputeReason   string          `gorm:"type:text" json:"dispute_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DepositedAt     *time.Time      `json:"deposited_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	ReleasedAt      *time.Time      `json:"released_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
}

func (Milestone) TableName() string {
	return "milestones"
}
