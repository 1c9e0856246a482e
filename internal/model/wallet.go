package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxType 钱包流水类型
type TxType string

const (
	TxEscrowRelease TxType = "ESCROW_RELEASE"
	TxCommission    TxType = "COMMISSION"
	TxAdjust        TxType = "ADJUST"
	TxWithdrawal    TxType = "WITHDRAWAL"
)

// Earning 计入 TotalEarned 的收入类流水
func (t TxType) Earning() bool {
	return t == TxEscrowRelease || t == TxCommission
}

const (
	TxStatusCompleted = "COMPLETED"
	TxStatusPending   = "PENDING" // 提现等待银行处理
)

// Wallet 承包商钱包, 首次入账时懒创建
// Balance 是流水的物化缓存: Balance == Σ(WalletTransaction.Amount)
type Wallet struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID  uint64          `gorm:"not null;uniqueIndex" json:"customer_id"`
	Balance     decimal.Decimal `gorm:"type:decimal(20,0);not null;default:0" json:"balance"`
	HoldBalance decimal.Decimal `gorm:"type:decimal(20,0);not null;default:0" json:"hold_balance"` // 提现处理中
	TotalEarned decimal.Decimal `gorm:"type:decimal(20,0);not null;default:0" json:"total_earned"`
	Version     uint64          `gorm:"not null;default:0" json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

// WalletTransaction 钱包流水, 只追加, 永不更新或删除
type WalletTransaction struct {
	ID                 uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	WalletID           uint64          `gorm:"not null;index" json:"wallet_id"`
	Amount             decimal.Decimal `gorm:"type:decimal(20,0);not null" json:"amount"` // 有符号
	BalanceAfter       decimal.Decimal `gorm:"type:decimal(20,0);not null" json:"balance_after"`
	Type               TxType          `gorm:"type:varchar(20);not null;index" json:"type"`
	Status             string          `gorm:"type:varchar(16);not null;default:'COMPLETED'" json:"status"`
	RelatedContractID  *uint64         `gorm:"index" json:"related_contract_id,omitempty"`
	RelatedMilestoneID *uint64         `gorm:"uniqueIndex:idx_release_milestone" json:"related_milestone_id,omitempty"` // 同一里程碑最多入账一次
	RelatedOrderID     string          `gorm:"type:varchar(64);index" json:"related_order_id,omitempty"`
	Description        string          `gorm:"type:text" json:"description"`
	CreatedAt          time.Time       `json:"created_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
