package wallet

import (
	"context"
	"errors"
	"testing"

	"escrow-core/internal/model"
	"escrow-core/internal/service/ledger"
	"escrow-core/internal/testutil"
	"escrow-core/pkg/errno"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*Service, *gorm.DB) {
	db := testutil.NewTestDB(t)
	return NewService(ledger.NewStore(db), decimal.NewFromInt(50000)), db
}

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func assertBalanced(t *testing.T, svc *Service, customerID uint64) {
	t.Helper()
	w, err := svc.GetWallet(context.Background(), customerID)
	require.NoError(t, err)
	r, err := svc.Reconcile(context.Background(), w.ID)
	require.NoError(t, err)
	assert.True(t, r.Balanced(), "cached %s ledger %s", r.CachedBalance, r.LedgerBalance)
}

func TestCreditCreatesWalletLazily(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.GetWallet(ctx, 42)
	assert.True(t, errors.Is(err, errno.ErrNotFound))

	txn, err := svc.Credit(ctx, 42, d(485000), model.TxEscrowRelease, Ref{ContractID: 1, MilestoneID: 9})
	require.NoError(t, err)
	assert.Equal(t, "485000", txn.Amount.String())
	assert.Equal(t, "485000", txn.BalanceAfter.String())
	require.NotNil(t, txn.RelatedMilestoneID)
	assert.Equal(t, uint64(9), *txn.RelatedMilestoneID)

	w, err := svc.GetWallet(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "485000", w.Balance.String())
	assert.Equal(t, "485000", w.TotalEarned.String())
	assertBalanced(t, svc, 42)
}

func TestCreditAccumulates(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, 1, d(100000), model.TxEscrowRelease, Ref{MilestoneID: 1})
	require.NoError(t, err)
	_, err = svc.CreditCommission(ctx, 1, d(5000), "order-1", "")
	require.NoError(t, err)
	txn, err := svc.Adjust(ctx, 1, d(700), "goodwill")
	require.NoError(t, err)
	assert.Equal(t, "105700", txn.BalanceAfter.String())

	w, err := svc.GetWallet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "105700", w.Balance.String())
	// ADJUST 不计入累计收入
	assert.Equal(t, "105000", w.TotalEarned.String())
	assertBalanced(t, svc, 1)
}

func TestCreditRejectsInvalidAmounts(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	for _, amount := range []decimal.Decimal{d(0), d(-5), decimal.RequireFromString("10.5")} {
		_, err := svc.Credit(ctx, 1, amount, model.TxCommission, Ref{})
		assert.True(t, errors.Is(err, errno.ErrInvalidAmount), amount.String())
	}

	_, err := svc.Credit(ctx, 1, d(10), model.TxWithdrawal, Ref{})
	assert.True(t, errors.Is(err, errno.ErrInvalidAmount))

	var count int64
	require.NoError(t, db.Model(&model.Wallet{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMilestoneCreditedAtMostOnce(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, 1, d(1000), model.TxEscrowRelease, Ref{MilestoneID: 77})
	require.NoError(t, err)

	_, err = svc.Credit(ctx, 1, d(1000), model.TxEscrowRelease, Ref{MilestoneID: 77})
	assert.True(t, errors.Is(err, errno.ErrAlreadyReleased))

	w, err := svc.GetWallet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "1000", w.Balance.String())

	var count int64
	require.NoError(t, db.Model(&model.WalletTransaction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAdjustCannotOverdraw(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Adjust(ctx, 1, d(-10), "no wallet yet")
	assert.True(t, errors.Is(err, errno.ErrNotFound))

	_, err = svc.Credit(ctx, 1, d(1000), model.TxCommission, Ref{OrderID: "o-1"})
	require.NoError(t, err)

	_, err = svc.Adjust(ctx, 1, d(-1001), "too much")
	assert.True(t, errors.Is(err, errno.ErrInsufficientBalance))

	txn, err := svc.Adjust(ctx, 1, d(-1000), "clawback")
	require.NoError(t, err)
	assert.Equal(t, "0", txn.BalanceAfter.String())
	assertBalanced(t, svc, 1)
}

func TestWithdraw(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	bank := BankAccount{BankName: "VCB", AccountNumber: "0123456789", AccountName: "NGUYEN VAN A"}

	_, err := svc.Withdraw(ctx, 1, d(60000), bank)
	assert.True(t, errors.Is(err, errno.ErrNotFound))

	_, err = svc.Credit(ctx, 1, d(100000), model.TxEscrowRelease, Ref{MilestoneID: 1})
	require.NoError(t, err)

	_, err = svc.Withdraw(ctx, 1, d(49999), bank)
	assert.True(t, errors.Is(err, errno.ErrInvalidAmount))

	_, err = svc.Withdraw(ctx, 1, d(100001), bank)
	assert.True(t, errors.Is(err, errno.ErrInsufficientBalance))

	txn, err := svc.Withdraw(ctx, 1, d(60000), bank)
	require.NoError(t, err)
	assert.Equal(t, model.TxWithdrawal, txn.Type)
	assert.Equal(t, model.TxStatusPending, txn.Status)
	assert.Equal(t, "-60000", txn.Amount.String())
	assert.Contains(t, txn.Description, "****6789")
	assert.NotContains(t, txn.Description, "0123456789")

	w, err := svc.GetWallet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "40000", w.Balance.String())
	assert.Equal(t, "60000", w.HoldBalance.String())
	assert.Equal(t, "100000", w.TotalEarned.String())
	assertBalanced(t, svc, 1)
}

func TestListTransactions(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		_, err := svc.Credit(ctx, 3, d(i*1000), model.TxEscrowRelease, Ref{MilestoneID: uint64(i)})
		require.NoError(t, err)
	}

	txns, total, err := svc.ListTransactions(ctx, 3, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, txns, 2)
	assert.Equal(t, "5000", txns[0].Amount.String())
	assert.Equal(t, "15000", txns[0].BalanceAfter.String())

	txns, _, err = svc.ListTransactions(ctx, 3, 2, 4)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "1000", txns[0].Amount.String())
}

func TestReconcileDetectsDrift(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, 1, d(1000), model.TxCommission, Ref{OrderID: "o-1"})
	require.NoError(t, err)
	_, err = svc.Credit(ctx, 2, d(2000), model.TxCommission, Ref{OrderID: "o-2"})
	require.NoError(t, err)

	// 绕过服务直接改缓存余额
	require.NoError(t, db.Model(&model.Wallet{}).Where("customer_id = ?", 2).
		Update("balance", gorm.Expr("balance + ?", d(5))).Error)

	checked, drifted, err := svc.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, checked)
	require.Len(t, drifted, 1)
	assert.Equal(t, uint64(2), drifted[0].CustomerID)
	assert.Equal(t, "5", drifted[0].Drift.String())

	_, err = svc.Reconcile(ctx, 999)
	assert.True(t, errors.Is(err, errno.ErrNotFound))
}
