package escrow

import (
	"context"

	"escrow-core/internal/event"
	"escrow-core/internal/model"
	"escrow-core/internal/service/ledger"
	"escrow-core/internal/service/milestone"
	"escrow-core/pkg/errno"
	"escrow-core/pkg/logger"
	"escrow-core/pkg/monitor"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 争议子系统是 DISPUTED 状态的唯一写入方, 以下三个方法是它调用的回调

// OpenDispute 业主或承包商发起争议, 冻结里程碑并记住争议前状态
func (s *Service) OpenDispute(ctx context.Context, milestoneID, actorID uint64, reason string) (*model.Milestone, error) {
	var updated *model.Milestone

	err := s.store.InTx(ctx, func(q *ledger.Queries) error {
		m, c, err := load(q, milestoneID)
		if err != nil {
			return err
		}
		if actorID != c.OwnerID && actorID != c.ContractorID {
			return errno.ErrForbidden.WithMessage("only a party to the contract can open a dispute")
		}

		to, err := milestone.Next(m, milestone.EventOpenDispute)
		if err != nil {
			return err
		}

		updated, err = q.TransitionMilestone(m, to, map[string]interface{}{
			"pre_dispute_state": m.State,
			"dispute_reason":    reason,
		})
		if err != nil {
			return err
		}

		return q.Outbox(event.TopicMilestoneDisputed, contractKey(c.ID), event.MilestoneDisputedEvent{
			EventID:     uuid.NewString(),
			MilestoneID: m.ID,
			ContractID:  c.ID,
			OpenedBy:    actorID,
			PriorState:  string(m.State),
			Reason:      reason,
		})
	})
	if err != nil {
		logger.Warn("Open dispute rejected", zap.Uint64("milestone_id", milestoneID), zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, milestoneID)
	monitor.Business.DisputesTotal.WithLabelValues("open").Inc()
	logger.Info("Milestone disputed",
		zap.Uint64("milestone_id", updated.ID),
		zap.Uint64("opened_by", actorID),
		zap.String("prior_state", string(updated.PreDisputeState)))
	return updated, nil
}

// Unlock 争议以继续履约结束, 回到争议前的状态
func (s *Service) Unlock(ctx context.Context, milestoneID uint64) (*model.Milestone, error) {
	var updated *model.Milestone

	err := s.store.InTx(ctx, func(q *ledger.Queries) error {
		m, err := q.Milestone(milestoneID)
		if err != nil {
			return err
		}
		to, err := milestone.Next(m, milestone.EventUnlock)
		if err != nil {
			return err
		}

		updated, err = q.TransitionMilestone(m, to, map[string]interface{}{
			"pre_dispute_state": "",
		})
		if err != nil {
			return err
		}

		return q.Outbox(event.TopicDisputeResolved, contractKey(m.ContractID), event.DisputeResolvedEvent{
			EventID:     uuid.NewString(),
			MilestoneID: m.ID,
			ContractID:  m.ContractID,
			Resolution:  "unlock",
			NewState:    string(to),
		})
	})
	if err != nil {
		logger.Warn("Unlock rejected", zap.Uint64("milestone_id", milestoneID), zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, milestoneID)
	monitor.Business.DisputesTotal.WithLabelValues("unlock").Inc()
	logger.Info("Milestone unlocked",
		zap.Uint64("milestone_id", updated.ID),
		zap.String("state", string(updated.State)))
	return updated, nil
}

// Cancel 争议以取消结束: 终态 CANCELLED, 托管资金退回业主, 不入账钱包
func (s *Service) Cancel(ctx context.Context, milestoneID uint64) (*model.Milestone, error) {
	var updated *model.Milestone

	err := s.store.InTx(ctx, func(q *ledger.Queries) error {
		m, err := q.Milestone(milestoneID)
		if err != nil {
			return err
		}
		to, err := milestone.Next(m, milestone.EventCancel)
		if err != nil {
			return err
		}

		now := s.now()
		updated, err = q.TransitionMilestone(m, to, map[string]interface{}{
			"pre_dispute_state": "",
			"cancelled_at":      now,
		})
		if err != nil {
			return err
		}

		if err := q.AdjustEscrow(m.ContractID, ledger.EscrowDelta{
			Escrow:   m.Amount.Neg(),
			Refunded: m.Amount,
		}); err != nil {
			return err
		}
		if _, err := q.MarkTerminatedIfDone(m.ContractID, now); err != nil {
			return err
		}

		return q.Outbox(event.TopicDisputeResolved, contractKey(m.ContractID), event.DisputeResolvedEvent{
			EventID:     uuid.NewString(),
			MilestoneID: m.ID,
			ContractID:  m.ContractID,
			Resolution:  "cancel",
			NewState:    string(to),
			Refunded:    m.Amount.String(),
		})
	})
	if err != nil {
		logger.Warn("Cancel rejected", zap.Uint64("milestone_id", milestoneID), zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, milestoneID)
	monitor.Business.DisputesTotal.WithLabelValues("cancel").Inc()
	logger.Info("Milestone cancelled",
		zap.Uint64("milestone_id", updated.ID),
		zap.String("refunded", updated.Amount.String()))
	return updated, nil
}
