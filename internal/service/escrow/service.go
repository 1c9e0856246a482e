package escrow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"escrow-core/internal/event"
	"escrow-core/internal/model"
	"escrow-core/internal/service/fee"
	"escrow-core/internal/service/ledger"
	"escrow-core/internal/service/milestone"
	"escrow-core/internal/service/wallet"
	"escrow-core/pkg/cache"
	"escrow-core/pkg/errno"
	"escrow-core/pkg/logger"
	"escrow-core/pkg/monitor"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SystemApprover 自动确认放款时使用的审批人 ID
const SystemApprover uint64 = 0

// ReleaseReceipt 放款回执
type ReleaseReceipt struct {
	MilestoneID         uint64          `json:"milestone_id"`
	ContractID          uint64          `json:"contract_id"`
	ContractorID        uint64          `json:"contractor_id"`
	Amount              decimal.Decimal `json:"amount"`
	Payout              decimal.Decimal `json:"payout"`
	Fee                 decimal.Decimal `json:"fee"`
	ReleasedAt          time.Time       `json:"released_at"`
	WalletTransactionID uint64          `json:"wallet_transaction_id"`
}

// Service 托管服务: 入金、提交证据、审批放款以及争议回调
// 每个操作都是一个数据库事务, 状态校验与写入在同一事务中完成
type Service struct {
	store  *ledger.Store
	wallet *wallet.Service
	fees   fee.Policy

	statusCache cache.Cache
	statusTTL   time.Duration
	now         func() time.Time
}

func NewService(store *ledger.Store, walletSvc *wallet.Service, fees fee.Policy, opts ...Option) *Service {
	s := &Service{
		store:  store,
		wallet: walletSvc,
		fees:   fees,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Deposit 业主向 PENDING 里程碑入金, 金额必须与里程碑金额完全一致
func (s *Service) Deposit(ctx context.Context, milestoneID, ownerID uint64, amount decimal.Decimal, note string) (*model.Milestone, error) {
	var updated *model.Milestone

	err := s.store.InTx(ctx, func(q *ledger.Queries) error {
		m, c, err := load(q, milestoneID)
		if err != nil {
			return err
		}
		if ownerID != c.OwnerID {
			return errno.ErrForbidden.WithMessage("only the contract owner can deposit")
		}

		to, err := milestone.Next(m, milestone.EventDeposit)
		if err != nil {
			return err
		}
		if !ledger.WholePositive(amount) || !amount.Equal(m.Amount) {
			return errno.ErrAmountMismatch.WithMessage(
				fmt.Sprintf("deposit %s does not match milestone amount %s", amount, m.Amount))
		}

		now := s.now()
		updated, err = q.TransitionMilestone(m, to, map[string]interface{}{
			"deposited_at": now,
			"deposit_note": note,
		})
		if err != nil {
			return err
		}
		if err := q.AdjustEscrow(c.ID, ledger.EscrowDelta{Escrow: m.Amount}); err != nil {
			return err
		}

		return q.Outbox(event.TopicMilestoneDeposited, contractKey(c.ID), event.MilestoneDepositedEvent{
			EventID:     uuid.NewString(),
			MilestoneID: m.ID,
			ContractID:  c.ID,
			OwnerID:     c.OwnerID,
			Amount:      m.Amount.String(),
			DepositedAt: now,
		})
	})
	if err != nil {
		logger.Warn("Deposit rejected", zap.Uint64("milestone_id", milestoneID), zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, milestoneID)
	monitor.Business.EscrowDepositsTotal.Inc()
	logger.Info("Milestone deposited",
		zap.Uint64("milestone_id", updated.ID),
		zap.Uint64("contract_id", updated.ContractID),
		zap.String("amount", updated.Amount.String()))
	return updated, nil
}

// SubmitEvidence 承包商提交完工证据, 不涉及资金变动
func (s *Service) SubmitEvidence(ctx context.Context, milestoneID, contractorID uint64, proofURL, notes string) (*model.Milestone, error) {
	var updated *model.Milestone

	err := s.store.InTx(ctx, func(q *ledger.Queries) error {
		m, c, err := load(q, milestoneID)
		if err != nil {
			return err
		}
		if contractorID != c.ContractorID {
			return errno.ErrForbidden.WithMessage("only the contractor can submit evidence")
		}

		to, err := milestone.Next(m, milestone.EventSubmitEvidence)
		if err != nil {
			return err
		}

		now := s.now()
		updated, err = q.TransitionMilestone(m, to, map[string]interface{}{
			"evidence_url":   proofURL,
			"evidence_notes": notes,
			"completed_at":   now,
		})
		if err != nil {
			return err
		}

		return q.Outbox(event.TopicMilestoneCompleted, contractKey(c.ID), event.MilestoneCompletedEvent{
			EventID:      uuid.NewString(),
			MilestoneID:  m.ID,
			ContractID:   c.ID,
			ContractorID: c.ContractorID,
			EvidenceURL:  proofURL,
			CompletedAt:  now,
		})
	})
	if err != nil {
		logger.Warn("Evidence rejected", zap.Uint64("milestone_id", milestoneID), zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, milestoneID)
	logger.Info("Milestone evidence submitted", zap.Uint64("milestone_id", updated.ID))
	return updated, nil
}

// ApproveAndRelease 审批并放款
// 同一事务内: 里程碑 -> RELEASED, 合同托管余额扣减, 平台费累加, 承包商钱包入账, 写 outbox
func (s *Service) ApproveAndRelease(ctx context.Context, milestoneID, approverID uint64, opts ...ReleaseOption) (*ReleaseReceipt, error) {
	var o releaseOptions
	for _, opt := range opts {
		opt(&o)
	}

	var (
		receipt   *ReleaseReceipt
		fromState model.MilestoneState
	)

	err := s.store.InTx(ctx, func(q *ledger.Queries) error {
		// 1. 在事务中重新读取状态
		m, c, err := load(q, milestoneID)
		if err != nil {
			return err
		}
		if approverID != SystemApprover && approverID != c.OwnerID {
			return errno.ErrForbidden.WithMessage("only the contract owner can approve a release")
		}

		to, err := milestone.Next(m, milestone.EventApproveRelease)
		if err != nil {
			return err
		}
		if o.expectedVersion != nil && *o.expectedVersion != m.Version {
			return errno.ErrInvalidState.WithMessage(
				fmt.Sprintf("milestone %d changed since version %d (now %s, version %d)",
					m.ID, *o.expectedVersion, m.State, m.Version))
		}
		fromState = m.State

		// 2-3. 计算平台费与实付金额
		calc, err := s.fees.For(q.DB(), c.ContractorID)
		if err != nil {
			return err
		}
		platformFee := calc.Compute(m.Amount)
		if platformFee.IsNegative() || platformFee.GreaterThanOrEqual(m.Amount) {
			return errno.InternalServerError.WithMessage(
				fmt.Sprintf("fee %s out of range for amount %s", platformFee, m.Amount))
		}
		payout := m.Amount.Sub(platformFee)

		// 4. 状态转换 (乐观锁)
		now := s.now()
		if _, err := q.TransitionMilestone(m, to, map[string]interface{}{
			"released_at": now,
		}); err != nil {
			return err
		}

		// 5. 合同托管余额
		if err := q.AdjustEscrow(c.ID, ledger.EscrowDelta{Escrow: m.Amount.Neg(), Fee: platformFee}); err != nil {
			return err
		}

		// 6. 钱包入账, 与上面的写入同一事务
		txn, err := s.wallet.CreditTx(q.DB(), c.ContractorID, payout, model.TxEscrowRelease, wallet.Ref{
			ContractID:  c.ID,
			MilestoneID: m.ID,
			Description: fmt.Sprintf("Escrow release for milestone %q", m.Name),
		})
		if err != nil {
			return err
		}

		if _, err := q.MarkTerminatedIfDone(c.ID, now); err != nil {
			return err
		}

		receipt = &ReleaseReceipt{
			MilestoneID:         m.ID,
			ContractID:          c.ID,
			ContractorID:        c.ContractorID,
			Amount:              m.Amount,
			Payout:              payout,
			Fee:                 platformFee,
			ReleasedAt:          now,
			WalletTransactionID: txn.ID,
		}

		return q.Outbox(event.TopicMilestoneReleased, contractKey(c.ID), event.MilestoneReleasedEvent{
			EventID:       uuid.NewString(),
			MilestoneID:   m.ID,
			MilestoneName: m.Name,
			ContractID:    c.ID,
			OwnerID:       c.OwnerID,
			ContractorID:  c.ContractorID,
			ApproverID:    approverID,
			Amount:        m.Amount.String(),
			Payout:        payout.String(),
			Fee:           platformFee.String(),
			ReleasedAt:    now,
		})
	})
	if err != nil {
		if reason := conflictReason(err); reason != "" {
			monitor.Business.ReleaseConflictsTotal.WithLabelValues(reason).Inc()
		}
		logger.Warn("Release rejected", zap.Uint64("milestone_id", milestoneID), zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, milestoneID)

	monitor.Business.EscrowReleasesTotal.WithLabelValues(string(fromState)).Inc()
	monitor.Business.EscrowReleasedAmount.Add(receipt.Amount.InexactFloat64())
	monitor.Business.PlatformFeeTotal.Add(receipt.Fee.InexactFloat64())
	monitor.Business.WalletCreditsTotal.WithLabelValues(string(model.TxEscrowRelease)).Inc()

	logger.Info("Milestone released",
		zap.Uint64("milestone_id", receipt.MilestoneID),
		zap.Uint64("contract_id", receipt.ContractID),
		zap.Uint64("approver_id", approverID),
		zap.String("from_state", string(fromState)),
		zap.String("payout", receipt.Payout.String()),
		zap.String("fee", receipt.Fee.String()))
	return receipt, nil
}

// IsLocked 里程碑是否被未结争议冻结
func (s *Service) IsLocked(ctx context.Context, milestoneID uint64) (bool, error) {
	m, err := s.store.GetMilestone(ctx, milestoneID)
	if err != nil {
		return false, err
	}
	return m.State == model.StateDisputed, nil
}

func load(q *ledger.Queries, milestoneID uint64) (*model.Milestone, *model.Contract, error) {
	m, err := q.Milestone(milestoneID)
	if err != nil {
		return nil, nil, err
	}
	c, err := q.Contract(m.ContractID)
	if err != nil {
		return nil, nil, err
	}
	return m, c, nil
}

func contractKey(contractID uint64) string {
	return strconv.FormatUint(contractID, 10)
}

func conflictReason(err error) string {
	switch {
	case errors.Is(err, errno.ErrAlreadyReleased):
		return "already_released"
	case errors.Is(err, errno.ErrLocked):
		return "locked"
	case errors.Is(err, errno.ErrInvalidState):
		return "invalid_state"
	}
	return ""
}
