package escrow

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"escrow-core/internal/event"
	"escrow-core/internal/model"
	"escrow-core/internal/service/fee"
	"escrow-core/internal/service/ledger"
	"escrow-core/internal/service/wallet"
	"escrow-core/internal/testutil"
	"escrow-core/pkg/cache"
	"escrow-core/pkg/errno"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	ownerID      uint64 = 100
	contractorID uint64 = 200
	strangerID   uint64 = 300
)

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db      *gorm.DB
	store   *ledger.Store
	wallets *wallet.Service
	svc     *Service
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	db := testutil.NewTestDB(t)
	store := ledger.NewStore(db)
	wallets := wallet.NewService(store, decimal.NewFromInt(50000))
	policy := fee.Static{Calculator: fee.FlatRate{Rate: fee.DefaultRate}}

	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return &fixture{
		db:      db,
		store:   store,
		wallets: wallets,
		svc:     NewService(store, wallets, policy, opts...),
	}
}

// contract 创建一个合同, 每个金额对应一个里程碑
func (f *fixture) contract(t *testing.T, amounts ...int64) (*model.Contract, []model.Milestone) {
	t.Helper()
	total := decimal.Zero
	ms := make([]model.Milestone, 0, len(amounts))
	for i, a := range amounts {
		total = total.Add(d(a))
		ms = append(ms, model.Milestone{Name: "Phase " + string(rune('A'+i)), Amount: d(a)})
	}
	c := &model.Contract{OwnerID: ownerID, ContractorID: contractorID, TotalAmount: total}
	require.NoError(t, f.store.CreateContract(context.Background(), c, ms))
	return c, c.Milestones
}

func (f *fixture) contractRow(t *testing.T, id uint64) *model.Contract {
	t.Helper()
	c, err := f.store.GetContract(context.Background(), id)
	require.NoError(t, err)
	return c
}

func (f *fixture) walletBalance(t *testing.T, customerID uint64) decimal.Decimal {
	t.Helper()
	w, err := f.wallets.GetWallet(context.Background(), customerID)
	if errors.Is(err, errno.ErrNotFound) {
		return decimal.Zero
	}
	require.NoError(t, err)
	return w.Balance
}

func (f *fixture) assertInvariant(t *testing.T, contractID uint64) {
	t.Helper()
	stored, expected, err := f.store.EscrowInvariant(context.Background(), contractID)
	require.NoError(t, err)
	assert.True(t, stored.Equal(expected), "escrow balance %s, milestones hold %s", stored, expected)
}

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestDepositEvidenceReleaseScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, ms := f.contract(t, 500000)
	id := ms[0].ID

	m, err := f.svc.Deposit(ctx, id, ownerID, d(500000), "bank ref 123")
	require.NoError(t, err)
	assert.Equal(t, model.StateDeposited, m.State)
	assert.Equal(t, "bank ref 123", m.DepositNote)
	require.NotNil(t, m.DepositedAt)
	assert.Equal(t, "500000", f.contractRow(t, c.ID).EscrowBalance.String())

	m, err = f.svc.SubmitEvidence(ctx, id, contractorID, "https://cdn.example.com/proof.jpg", "foundation poured")
	require.NoError(t, err)
	assert.Equal(t, model.StateCompleted, m.State)
	assert.Equal(t, "https://cdn.example.com/proof.jpg", m.EvidenceURL)
	require.NotNil(t, m.CompletedAt)
	assert.Equal(t, "500000", f.contractRow(t, c.ID).EscrowBalance.String())

	before := f.walletBalance(t, contractorID)
	receipt, err := f.svc.ApproveAndRelease(ctx, id, ownerID)
	require.NoError(t, err)
	assert.Equal(t, "15000", receipt.Fee.String())
	assert.Equal(t, "485000", receipt.Payout.String())
	assert.True(t, receipt.Payout.Add(receipt.Fee).Equal(receipt.Amount))
	assert.Equal(t, fixedNow, receipt.ReleasedAt)

	m, err = f.store.GetMilestone(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StateReleased, m.State)
	require.NotNil(t, m.ReleasedAt)

	row := f.contractRow(t, c.ID)
	assert.True(t, row.EscrowBalance.IsZero())
	assert.Equal(t, "15000", row.PlatformFeeAccrued.String())
	assert.NotNil(t, row.TerminatedAt)

	assert.Equal(t, "485000", f.walletBalance(t, contractorID).Sub(before).String())

	var txns []model.WalletTransaction
	require.NoError(t, f.db.Where("type = ?", model.TxEscrowRelease).Find(&txns).Error)
	require.Len(t, txns, 1)
	assert.Equal(t, "485000", txns[0].Amount.String())
	require.NotNil(t, txns[0].RelatedContractID)
	assert.Equal(t, c.ID, *txns[0].RelatedContractID)
	assert.Equal(t, receipt.WalletTransactionID, txns[0].ID)

	f.assertInvariant(t, c.ID)
}

func TestReleaseWritesOutboxEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, ms := f.contract(t, 200000)

	_, err := f.svc.Deposit(ctx, ms[0].ID, ownerID, d(200000), "")
	require.NoError(t, err)
	_, err = f.svc.ApproveAndRelease(ctx, ms[0].ID, SystemApprover)
	require.NoError(t, err)

	var msgs []model.OutboxMessage
	require.NoError(t, f.db.Order("id").Find(&msgs).Error)
	require.Len(t, msgs, 2)
	assert.Equal(t, event.TopicMilestoneDeposited, msgs[0].Topic)
	assert.Equal(t, event.TopicMilestoneReleased, msgs[1].Topic)
	assert.Equal(t, model.OutboxPending, msgs[1].Status)

	var evt event.MilestoneReleasedEvent
	require.NoError(t, json.Unmarshal(msgs[1].Payload, &evt))
	assert.NotEmpty(t, evt.EventID)
	assert.Equal(t, c.ID, evt.ContractID)
	assert.Equal(t, contractorID, evt.ContractorID)
	assert.Equal(t, SystemApprover, evt.ApproverID)
	assert.Equal(t, "194000", evt.Payout)
	assert.Equal(t, "6000", evt.Fee)
}

func TestReleaseFromPendingFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, ms := f.contract(t, 500000)

	_, err := f.svc.ApproveAndRelease(ctx, ms[0].ID, ownerID)
	assert.True(t, errors.Is(err, errno.ErrInvalidState), "got %v", err)

	row := f.contractRow(t, c.ID)
	assert.True(t, row.EscrowBalance.IsZero())
	assert.True(t, row.PlatformFeeAccrued.IsZero())
	assert.True(t, f.walletBalance(t, contractorID).IsZero())

	m, err := f.store.GetMilestone(ctx, ms[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatePending, m.State)
	assert.Equal(t, uint64(0), m.Version)
}

func TestReleaseDirectlyFromDeposited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, ms := f.contract(t, 100000)

	_, err := f.svc.Deposit(ctx, ms[0].ID, ownerID, d(100000), "")
	require.NoError(t, err)

	receipt, err := f.svc.ApproveAndRelease(ctx, ms[0].ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, "97000", receipt.Payout.String())
}

func TestConcurrentDoubleRelease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, ms := f.contract(t, 1000000)
	id := ms[0].ID

	_, err := f.svc.Deposit(ctx, id, ownerID, d(1000000), "")
	require.NoError(t, err)

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, 2)
		recs  = make([]*ReleaseReceipt, 2)
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			recs[i], errs[i] = f.svc.ApproveAndRelease(ctx, id, ownerID)
		}(i)
	}
	close(start)
	wg.Wait()

	wins := 0
	for i := range errs {
		if errs[i] == nil {
			wins++
			assert.Equal(t, "970000", recs[i].Payout.String())
			continue
		}
		assert.True(t,
			errors.Is(errs[i], errno.ErrAlreadyReleased) || errors.Is(errs[i], errno.ErrInvalidState),
			"unexpected error %v", errs[i])
		assert.False(t, errno.Retryable(errs[i]))
	}
	assert.Equal(t, 1, wins)

	assert.Equal(t, "970000", f.walletBalance(t, contractorID).String())

	var count int64
	require.NoError(t, f.db.Model(&model.WalletTransaction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	row := f.contractRow(t, c.ID)
	assert.True(t, row.EscrowBalance.IsZero())
	assert.Equal(t, "30000", row.PlatformFeeAccrued.String())
}

func TestDepositValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, ms := f.contract(t, 500000)
	id := ms[0].ID

	_, err := f.svc.Deposit(ctx, 9999, ownerID, d(500000), "")
	assert.True(t, errors.Is(err, errno.ErrNotFound))

	for _, amount := range []decimal.Decimal{d(499999), d(0), d(-500000), decimal.RequireFromString("500000.5")} {
		_, err = f.svc.Deposit(ctx, id, ownerID, amount, "")
		assert.True(t, errors.Is(err, errno.ErrAmountMismatch), "%s: %v", amount, err)
	}

	_, err = f.svc.Deposit(ctx, id, contractorID, d(500000), "")
	assert.True(t, errors.Is(err, errno.ErrForbidden))

	assert.True(t, f.contractRow(t, c.ID).EscrowBalance.IsZero())

	_, err = f.svc.Deposit(ctx, id, ownerID, d(500000), "")
	require.NoError(t, err)

	// 重复入金
	_, err = f.svc.Deposit(ctx, id, ownerID, d(500000), "")
	assert.True(t, errors.Is(err, errno.ErrInvalidState))
	assert.Equal(t, "500000", f.contractRow(t, c.ID).EscrowBalance.String())
}

func TestActorChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, ms := f.contract(t, 100000)
	id := ms[0].ID

	_, err := f.svc.Deposit(ctx, id, ownerID, d(100000), "")
	require.NoError(t, err)

	_, err = f.svc.SubmitEvidence(ctx, id, ownerID, "https://x/y.jpg", "")
	assert.True(t, errors.Is(err, errno.ErrForbidden))

	_, err = f.svc.ApproveAndRelease(ctx, id, contractorID)
	assert.True(t, errors.Is(err, errno.ErrForbidden))

	_, err = f.svc.OpenDispute(ctx, id, strangerID, "not my contract")
	assert.True(t, errors.Is(err, errno.ErrForbidden))
}

func TestStaleVersionRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, ms := f.contract(t, 300000)
	id := ms[0].ID

	m, err := f.svc.Deposit(ctx, id, ownerID, d(300000), "")
	require.NoError(t, err)
	observed := m.Version

	_, err = f.svc.SubmitEvidence(ctx, id, contractorID, "https://x/y.jpg", "")
	require.NoError(t, err)

	_, err = f.svc.ApproveAndRelease(ctx, id, ownerID, WithExpectedVersion(observed))
	assert.True(t, errors.Is(err, errno.ErrInvalidState), "got %v", err)
	assert.True(t, f.walletBalance(t, contractorID).IsZero())

	_, err = f.svc.ApproveAndRelease(ctx, id, ownerID, WithExpectedVersion(observed+1))
	require.NoError(t, err)
}

func TestReleasedIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, ms := f.contract(t, 100000)
	id := ms[0].ID

	_, err := f.svc.Deposit(ctx, id, ownerID, d(100000), "")
	require.NoError(t, err)
	_, err = f.svc.ApproveAndRelease(ctx, id, ownerID)
	require.NoError(t, err)

	_, err = f.svc.ApproveAndRelease(ctx, id, ownerID)
	assert.True(t, errors.Is(err, errno.ErrAlreadyReleased))

	_, err = f.svc.Deposit(ctx, id, ownerID, d(100000), "")
	assert.True(t, errors.Is(err, errno.ErrInvalidState))

	_, err = f.svc.SubmitEvidence(ctx, id, contractorID, "https://x/y.jpg", "")
	assert.True(t, errors.Is(err, errno.ErrInvalidState))

	_, err = f.svc.OpenDispute(ctx, id, ownerID, "late complaint")
	assert.True(t, errors.Is(err, errno.ErrInvalidState))

	assert.Equal(t, "97000", f.walletBalance(t, contractorID).String())
}

// 入账失败时, 已经执行的状态转换和托管扣减必须一起回滚
func TestReleaseRollsBackWhenCreditFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, ms := f.contract(t, 100000)
	id := ms[0].ID

	_, err := f.svc.Deposit(ctx, id, ownerID, d(100000), "")
	require.NoError(t, err)
	before, err := f.store.GetMilestone(ctx, id)
	require.NoError(t, err)

	// 同一里程碑已有一条入账流水, CreditTx 会在状态转换和扣减之后失败
	_, err = f.wallets.Credit(ctx, contractorID, d(1), model.TxEscrowRelease, wallet.Ref{MilestoneID: id})
	require.NoError(t, err)

	var outboxBefore int64
	require.NoError(t, f.db.Model(&model.OutboxMessage{}).Count(&outboxBefore).Error)

	_, err = f.svc.ApproveAndRelease(ctx, id, ownerID)
	require.Error(t, err)

	after, err := f.store.GetMilestone(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StateDeposited, after.State)
	assert.Equal(t, before.Version, after.Version)
	assert.Nil(t, after.ReleasedAt)

	row := f.contractRow(t, c.ID)
	assert.Equal(t, "100000", row.EscrowBalance.String())
	assert.True(t, row.PlatformFeeAccrued.IsZero())
	assert.Nil(t, row.TerminatedAt)
	f.assertInvariant(t, c.ID)

	assert.Equal(t, "1", f.walletBalance(t, contractorID).String())

	var outboxAfter int64
	require.NoError(t, f.db.Model(&model.OutboxMessage{}).Count(&outboxAfter).Error)
	assert.Equal(t, outboxBefore, outboxAfter)

	var released int64
	require.NoError(t, f.db.Model(&model.OutboxMessage{}).
		Where("topic = ?", event.TopicMilestoneReleased).Count(&released).Error)
	assert.Zero(t, released)
}

func TestDisputeLocksThenUnlockAllowsRelease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, ms := f.contract(t, 400000)
	id := ms[0].ID

	_, err := f.svc.OpenDispute(ctx, id, ownerID, "too early")
	assert.True(t, errors.Is(err, errno.ErrInvalidState), "pending milestones cannot be disputed")

	_, err = f.svc.Deposit(ctx, id, ownerID, d(400000), "")
	require.NoError(t, err)

	m, err := f.svc.OpenDispute(ctx, id, contractorID, "owner unresponsive")
	require.NoError(t, err)
	assert.Equal(t, model.StateDisputed, m.State)
	assert.Equal(t, model.StateDeposited, m.PreDisputeState)

	locked, err := f.svc.IsLocked(ctx, id)
	require.NoError(t, err)
	assert.True(t, locked)

	_, err = f.svc.ApproveAndRelease(ctx, id, ownerID)
	assert.True(t, errors.Is(err, errno.ErrLocked), "got %v", err)
	_, err = f.svc.Deposit(ctx, id, ownerID, d(400000), "")
	assert.True(t, errors.Is(err, errno.ErrLocked), "got %v", err)
	_, err = f.svc.Deposit(ctx, id, ownerID, d(1), "")
	assert.True(t, errors.Is(err, errno.ErrLocked), "lock is reported before amount checks")
	_, err = f.svc.SubmitEvidence(ctx, id, contractorID, "https://x/y.jpg", "")
	assert.True(t, errors.Is(err, errno.ErrInvalidState), "got %v", err)
	assert.False(t, errors.Is(err, errno.ErrLocked))

	// 争议期间资金仍在托管中
	assert.Equal(t, "400000", f.contractRow(t, c.ID).EscrowBalance.String())
	f.assertInvariant(t, c.ID)

	m, err = f.svc.Unlock(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StateDeposited, m.State)
	assert.Empty(t, m.PreDisputeState)

	locked, err = f.svc.IsLocked(ctx, id)
	require.NoError(t, err)
	assert.False(t, locked)

	receipt, err := f.svc.ApproveAndRelease(ctx, id, ownerID)
	require.NoError(t, err)
	assert.Equal(t, "388000", receipt.Payout.String())
	f.assertInvariant(t, c.ID)
}

func TestUnlockRestoresCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, ms := f.contract(t, 100000)
	id := ms[0].ID

	_, err := f.svc.Deposit(ctx, id, ownerID, d(100000), "")
	require.NoError(t, err)
	_, err = f.svc.SubmitEvidence(ctx, id, contractorID, "https://x/y.jpg", "")
	require.NoError(t, err)
	_, err = f.svc.OpenDispute(ctx, id, ownerID, "quality")
	require.NoError(t, err)

	m, err := f.svc.Unlock(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StateCompleted, m.State)

	_, err = f.svc.Unlock(ctx, id)
	assert.True(t, errors.Is(err, errno.ErrInvalidState))
}

func TestCancelReturnsFundsToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, ms := f.contract(t, 250000)
	id := ms[0].ID

	_, err := f.svc.Cancel(ctx, id)
	assert.True(t, errors.Is(err, errno.ErrInvalidState))

	_, err = f.svc.Deposit(ctx, id, ownerID, d(250000), "")
	require.NoError(t, err)
	_, err = f.svc.OpenDispute(ctx, id, ownerID, "contractor left site")
	require.NoError(t, err)

	m, err := f.svc.Cancel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StateCancelled, m.State)
	require.NotNil(t, m.CancelledAt)

	row := f.contractRow(t, c.ID)
	assert.True(t, row.EscrowBalance.IsZero())
	assert.Equal(t, "250000", row.RefundedTotal.String())
	assert.True(t, row.PlatformFeeAccrued.IsZero())
	assert.NotNil(t, row.TerminatedAt)
	assert.True(t, f.walletBalance(t, contractorID).IsZero())

	_, err = f.svc.ApproveAndRelease(ctx, id, ownerID)
	assert.True(t, errors.Is(err, errno.ErrInvalidState))
	_, err = f.svc.Unlock(ctx, id)
	assert.True(t, errors.Is(err, errno.ErrInvalidState))
	f.assertInvariant(t, c.ID)
}

func TestEscrowInvariantAcrossMilestones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, ms := f.contract(t, 100000, 200000, 300000)

	for _, m := range ms {
		_, err := f.svc.Deposit(ctx, m.ID, ownerID, m.Amount, "")
		require.NoError(t, err)
		f.assertInvariant(t, c.ID)
	}
	assert.Equal(t, "600000", f.contractRow(t, c.ID).EscrowBalance.String())

	_, err := f.svc.ApproveAndRelease(ctx, ms[0].ID, ownerID)
	require.NoError(t, err)
	f.assertInvariant(t, c.ID)

	_, err = f.svc.OpenDispute(ctx, ms[1].ID, contractorID, "scope change")
	require.NoError(t, err)
	f.assertInvariant(t, c.ID)

	_, err = f.svc.Cancel(ctx, ms[1].ID)
	require.NoError(t, err)
	f.assertInvariant(t, c.ID)

	row := f.contractRow(t, c.ID)
	assert.Equal(t, "300000", row.EscrowBalance.String())
	assert.Equal(t, "3000", row.PlatformFeeAccrued.String())
	assert.Equal(t, "200000", row.RefundedTotal.String())
	assert.Nil(t, row.TerminatedAt)

	_, err = f.svc.ApproveAndRelease(ctx, ms[2].ID, ownerID)
	require.NoError(t, err)
	f.assertInvariant(t, c.ID)
	assert.NotNil(t, f.contractRow(t, c.ID).TerminatedAt)

	w, err := f.wallets.GetWallet(ctx, contractorID)
	require.NoError(t, err)
	r, err := f.wallets.Reconcile(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, r.Balanced())
	assert.Equal(t, "388000", r.LedgerBalance.String())
}

func TestIsLockedIsStableAndReportsMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, ms := f.contract(t, 100000)

	first, err := f.svc.IsLocked(ctx, ms[0].ID)
	require.NoError(t, err)
	second, err := f.svc.IsLocked(ctx, ms[0].ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.False(t, first)

	_, err = f.svc.IsLocked(ctx, 12345)
	assert.True(t, errors.Is(err, errno.ErrNotFound))
}

func TestStatusCacheInvalidatedOnWrite(t *testing.T) {
	f := newFixture(t, WithStatusCache(cache.NewMemoryCache(time.Minute, time.Minute), time.Minute))
	ctx := context.Background()
	_, ms := f.contract(t, 100000)
	id := ms[0].ID

	st, err := f.svc.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatePending, st.State)
	assert.False(t, st.IsDeposited)
	assert.False(t, st.CanRelease)

	_, err = f.svc.Deposit(ctx, id, ownerID, d(100000), "")
	require.NoError(t, err)

	st, err = f.svc.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StateDeposited, st.State)
	assert.True(t, st.IsDeposited)
	assert.True(t, st.CanRelease)
	assert.False(t, st.HasEvidence)

	_, err = f.svc.SubmitEvidence(ctx, id, contractorID, "https://x/y.jpg", "")
	require.NoError(t, err)
	st, err = f.svc.Status(ctx, id)
	require.NoError(t, err)
	assert.True(t, st.HasEvidence)

	_, err = f.svc.ApproveAndRelease(ctx, id, ownerID)
	require.NoError(t, err)
	st, err = f.svc.Status(ctx, id)
	require.NoError(t, err)
	assert.True(t, st.IsReleased)
	assert.True(t, st.IsDeposited)
	assert.False(t, st.CanRelease)
}

func TestCreateContractValidatesTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := &model.Contract{OwnerID: ownerID, ContractorID: contractorID, TotalAmount: d(100)}
	err := f.store.CreateContract(ctx, c, []model.Milestone{{Name: "a", Amount: d(60)}, {Name: "b", Amount: d(30)}})
	assert.True(t, errors.Is(err, errno.ErrAmountMismatch))

	err = f.store.CreateContract(ctx, c, []model.Milestone{{Name: "a", Amount: d(100)}, {Name: "b", Amount: d(0)}})
	assert.True(t, errors.Is(err, errno.ErrInvalidAmount))

	var count int64
	require.NoError(t, f.db.Model(&model.Contract{}).Count(&count).Error)
	assert.Zero(t, count)
}
