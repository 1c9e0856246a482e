package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract 业主与承包商之间的合同 (报价被接受时创建)
// EscrowBalance 只能随里程碑状态变化而变化, 不变式:
// EscrowBalance == Σ(已入金且未放款/未取消的里程碑金额)
type Contract struct {
	ID                 uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID            uint64          `gorm:"not null;index" json:"owner_id"`
	ContractorID       uint64          `gorm:"not null;index" json:"contractor_id"`
	QuoteRef           string          `gorm:"type:varchar(64);index" json:"quote_ref,omitempty"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(20,0);not null" json:"total_amount"`
	EscrowBalance      decimal.Decimal `gorm:"type:decimal(20,0);not null;default:0" json:"escrow_balance"`
	PlatformFeeAccrued decimal.Decimal `gorm:"type:decimal(20,0);not null;default:0" json:"platform_fee_accrued"`
	RefundedTotal      decimal.Decimal `gorm:"type:decimal(20,0);not null;default:0" json:"refunded_total"` // 争议取消后退回业主的金额
	TerminatedAt       *time.Time      `json:"terminated_at,omitempty"`                                     // 所有里程碑到达 RELEASED/CANCELLED
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`

	Milestones []Milestone `gorm:"foreignKey:ContractID" json:"milestones,omitempty"`
}

func (Contract) TableName() string {
	return "contracts"
}
