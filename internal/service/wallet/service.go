package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"escrow-core/internal/model"
	"escrow-core/internal/service/ledger"
	"escrow-core/pkg/errno"
	"escrow-core/pkg/logger"
	"escrow-core/pkg/monitor"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ref 流水关联的业务对象
type Ref struct {
	ContractID  uint64
	MilestoneID uint64
	OrderID     string
	Description string
}

// BankAccount 提现收款账户
type BankAccount struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

// Reconciliation 钱包对账结果, Drift = CachedBalance - LedgerBalance
type Reconciliation struct {
	WalletID      uint64          `json:"wallet_id"`
	CustomerID    uint64          `json:"customer_id"`
	CachedBalance decimal.Decimal `json:"cached_balance"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
	Drift         decimal.Decimal `json:"drift"`
}

// Balanced 缓存余额与流水一致
func (r Reconciliation) Balanced() bool {
	return r.Drift.IsZero()
}

type Service struct {
	store       *ledger.Store
	withdrawMin decimal.Decimal
}

func NewService(store *ledger.Store, withdrawMin decimal.Decimal) *Service {
	return &Service{
		store:       store,
		withdrawMin: withdrawMin,
	}
}

// Credit 独立事务入账
func (s *Service) Credit(ctx context.Context, customerID uint64, amount decimal.Decimal, typ model.TxType, ref Ref) (*model.WalletTransaction, error) {
	var txn *model.WalletTransaction
	err := s.store.InTx(ctx, func(q *ledger.Queries) error {
		var err error
		txn, err = s.CreditTx(q.DB(), customerID, amount, typ, ref)
		return err
	})
	if err != nil {
		return nil, err
	}

	monitor.Business.WalletCreditsTotal.WithLabelValues(string(typ)).Inc()
	logger.Info("Wallet credited",
		zap.Uint64("customer_id", customerID),
		zap.String("type", string(typ)),
		zap.String("amount", amount.String()),
		zap.String("balance_after", txn.BalanceAfter.String()))
	return txn, nil
}

// CreditTx 在调用方的事务中入账: 懒创建钱包, 追加一条流水并更新缓存余额
// 放款时与里程碑状态、合同托管余额处于同一事务
func (s *Service) CreditTx(tx *gorm.DB, customerID uint64, amount decimal.Decimal, typ model.TxType, ref Ref) (*model.WalletTransaction, error) {
	if !ledger.WholePositive(amount) {
		return nil, errno.ErrInvalidAmount
	}
	switch typ {
	case model.TxEscrowRelease, model.TxCommission, model.TxAdjust:
	default:
		return nil, errno.ErrInvalidAmount.WithMessage(fmt.Sprintf("%s is not a credit type", typ))
	}

	if typ == model.TxEscrowRelease && ref.MilestoneID != 0 {
		var n int64
		if err := tx.Model(&model.WalletTransaction{}).
			Where("related_milestone_id = ?", ref.MilestoneID).
			Count(&n).Error; err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, errno.ErrAlreadyReleased
		}
	}

	w, err := ensureWallet(tx, customerID)
	if err != nil {
		return nil, err
	}
	return apply(tx, w.ID, entry{
		delta:  amount,
		earned: typ.Earning(),
		typ:    typ,
		status: model.TxStatusCompleted,
		ref:    ref,
	})
}

// CreditCommission 推荐佣金入账
func (s *Service) CreditCommission(ctx context.Context, customerID uint64, amount decimal.Decimal, orderID, description string) (*model.WalletTransaction, error) {
	if description == "" {
		description = fmt.Sprintf("Referral commission for order %s", orderID)
	}
	return s.Credit(ctx, customerID, amount, model.TxCommission, Ref{OrderID: orderID, Description: description})
}

// Adjust 运营人工调账, 金额有符号, 余额不能变为负数
func (s *Service) Adjust(ctx context.Context, customerID uint64, amount decimal.Decimal, reason string) (*model.WalletTransaction, error) {
	if amount.IsZero() || !amount.Equal(amount.Truncate(0)) {
		return nil, errno.ErrInvalidAmount
	}
	if amount.IsPositive() {
		return s.Credit(ctx, customerID, amount, model.TxAdjust, Ref{Description: reason})
	}

	var txn *model.WalletTransaction
	err := s.store.InTx(ctx, func(q *ledger.Queries) error {
		w, err := findWallet(q.DB(), customerID)
		if err != nil {
			return err
		}
		txn, err = apply(q.DB(), w.ID, entry{
			delta:  amount,
			typ:    model.TxAdjust,
			status: model.TxStatusCompleted,
			ref:    Ref{Description: reason},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	monitor.Business.WalletCreditsTotal.WithLabelValues(string(model.TxAdjust)).Inc()
	logger.Warn("Wallet debited by adjustment",
		zap.Uint64("customer_id", customerID),
		zap.String("amount", amount.String()),
		zap.String("reason", reason))
	return txn, nil
}

// Withdraw 提现申请: 可用余额 -> 冻结余额, 追加一条负数 WITHDRAWAL 流水 (PENDING)
func (s *Service) Withdraw(ctx context.Context, customerID uint64, amount decimal.Decimal, bank BankAccount) (*model.WalletTransaction, error) {
	if !ledger.WholePositive(amount) {
		return nil, errno.ErrInvalidAmount
	}
	if amount.LessThan(s.withdrawMin) {
		return nil, errno.ErrInvalidAmount.WithMessage(fmt.Sprintf("minimum withdrawal is %s", s.withdrawMin))
	}

	var txn *model.WalletTransaction
	err := s.store.InTx(ctx, func(q *ledger.Queries) error {
		w, err := findWallet(q.DB(), customerID)
		if err != nil {
			return err
		}
		txn, err = apply(q.DB(), w.ID, entry{
			delta:  amount.Neg(),
			hold:   amount,
			typ:    model.TxWithdrawal,
			status: model.TxStatusPending,
			ref: Ref{Description: fmt.Sprintf("Withdraw to %s %s (%s)",
				bank.BankName, maskAccount(bank.AccountNumber), bank.AccountName)},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	monitor.Business.WalletCreditsTotal.WithLabelValues(string(model.TxWithdrawal)).Inc()
	logger.Info("Withdrawal requested",
		zap.Uint64("customer_id", customerID),
		zap.String("amount", amount.String()),
		zap.Uint64("wallet_transaction_id", txn.ID))
	return txn, nil
}

// GetWallet 按客户查询钱包
func (s *Service) GetWallet(ctx context.Context, customerID uint64) (*model.Wallet, error) {
	w, err := findWallet(s.store.DB().WithContext(ctx), customerID)
	if err != nil {
		return nil, translate(err)
	}
	return w, nil
}

// ListTransactions 按时间倒序分页查询流水
func (s *Service) ListTransactions(ctx context.Context, customerID uint64, limit, offset int) ([]model.WalletTransaction, int64, error) {
	db := s.store.DB().WithContext(ctx)
	w, err := findWallet(db, customerID)
	if err != nil {
		return nil, 0, translate(err)
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := db.Model(&model.WalletTransaction{}).Where("wallet_id = ?", w.ID).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var txns []model.WalletTransaction
	err = db.Where("wallet_id = ?", w.ID).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&txns).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return txns, total, nil
}

// Reconcile 对账: 缓存余额 vs 流水求和
func (s *Service) Reconcile(ctx context.Context, walletID uint64) (*Reconciliation, error) {
	db := s.store.DB().WithContext(ctx)

	var w model.Wallet
	if err := db.Take(&w, "id = ?", walletID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrNotFound.WithMessage(fmt.Sprintf("wallet %d not found", walletID))
		}
		return nil, translate(err)
	}

	r, err := reconcile(db, &w)
	if err != nil {
		return nil, translate(err)
	}
	return r, nil
}

// ReconcileAll 分批遍历所有钱包, 返回存在偏差的钱包
func (s *Service) ReconcileAll(ctx context.Context) (checked int, drifted []Reconciliation, err error) {
	db := s.store.DB().WithContext(ctx)

	var batch []model.Wallet
	res := db.Model(&model.Wallet{}).FindInBatches(&batch, 200, func(_ *gorm.DB, _ int) error {
		for i := range batch {
			r, err := reconcile(db, &batch[i])
			if err != nil {
				return err
			}
			checked++
			if !r.Balanced() {
				drifted = append(drifted, *r)
			}
		}
		return nil
	})
	if res.Error != nil {
		return checked, drifted, translate(res.Error)
	}
	return checked, drifted, nil
}

func reconcile(db *gorm.DB, w *model.Wallet) (*Reconciliation, error) {
	var amounts []decimal.Decimal
	if err := db.Model(&model.WalletTransaction{}).
		Where("wallet_id = ?", w.ID).
		Pluck("amount", &amounts).Error; err != nil {
		return nil, err
	}

	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	return &Reconciliation{
		WalletID:      w.ID,
		CustomerID:    w.CustomerID,
		CachedBalance: w.Balance,
		LedgerBalance: sum,
		Drift:         w.Balance.Sub(sum),
	}, nil
}

type entry struct {
	delta  decimal.Decimal // 可用余额变化, 等于流水金额
	hold   decimal.Decimal // 冻结余额变化
	earned bool
	typ    model.TxType
	status string
	ref    Ref
}

// apply 余额变更与流水写入必须成对出现在同一事务中
func apply(tx *gorm.DB, walletID uint64, e entry) (*model.WalletTransaction, error) {
	updates := map[string]interface{}{
		"balance":    gorm.Expr("balance + ?", e.delta),
		"version":    gorm.Expr("version + 1"),
		"updated_at": time.Now(),
	}
	if e.earned {
		updates["total_earned"] = gorm.Expr("total_earned + ?", e.delta)
	}
	if !e.hold.IsZero() {
		updates["hold_balance"] = gorm.Expr("hold_balance + ?", e.hold)
	}

	q := tx.Model(&model.Wallet{}).Where("id = ?", walletID)
	if e.delta.IsNegative() {
		// 条件扣减, 并发扣款不会把余额扣成负数
		q = q.Where("balance + ? >= 0", e.delta)
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errno.ErrInsufficientBalance
	}

	var w model.Wallet
	if err := tx.Take(&w, "id = ?", walletID).Error; err != nil {
		return nil, err
	}

	txn := &model.WalletTransaction{
		WalletID:       walletID,
		Amount:         e.delta,
		BalanceAfter:   w.Balance,
		Type:           e.typ,
		Status:         e.status,
		RelatedOrderID: e.ref.OrderID,
		Description:    e.ref.Description,
	}
	if e.ref.ContractID != 0 {
		id := e.ref.ContractID
		txn.RelatedContractID = &id
	}
	if e.ref.MilestoneID != 0 {
		id := e.ref.MilestoneID
		txn.RelatedMilestoneID = &id
	}
	if err := tx.Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

// ensureWallet 懒创建: INSERT ... ON CONFLICT (customer_id) DO NOTHING, 再读取
func ensureWallet(tx *gorm.DB, customerID uint64) (*model.Wallet, error) {
	w := model.Wallet{
		CustomerID:  customerID,
		Balance:     decimal.Zero,
		HoldBalance: decimal.Zero,
		TotalEarned: decimal.Zero,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}},
		DoNothing: true,
	}).Create(&w).Error; err != nil {
		return nil, err
	}
	return findWallet(tx, customerID)
}

func findWallet(db *gorm.DB, customerID uint64) (*model.Wallet, error) {
	var w model.Wallet
	if err := db.Take(&w, "customer_id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrNotFound.WithMessage(fmt.Sprintf("wallet for customer %d not found", customerID))
		}
		return nil, err
	}
	return &w, nil
}

func translate(err error) error {
	var e errno.Errno
	if errors.As(err, &e) {
		return err
	}
	return errno.ErrPersistence.Wrap(err)
}

func maskAccount(n string) string {
	if len(n) <= 4 {
		return n
	}
	return "****" + n[len(n)-4:]
}
