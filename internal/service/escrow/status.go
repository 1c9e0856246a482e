package escrow

import (
	"context"
	"fmt"
	"time"

	"escrow-core/internal/model"
	"escrow-core/pkg/logger"

	"go.uber.org/zap"
)

// Status 托管状态只读视图
type Status struct {
	MilestoneID uint64               `json:"milestone_id"`
	ContractID  uint64               `json:"contract_id"`
	Name        string               `json:"name"`
	Amount      string               `json:"amount"`
	State       model.MilestoneState `json:"state"`
	Version     uint64               `json:"version"`
	IsDeposited bool                 `json:"is_deposited"`
	IsReleased  bool                 `json:"is_released"`
	IsLocked    bool                 `json:"is_locked"`
	CanRelease  bool                 `json:"can_release"`
	HasEvidence bool                 `json:"has_evidence"`
	EvidenceURL string               `json:"evidence_url,omitempty"`
	DepositedAt *time.Time           `json:"deposited_at,omitempty"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
	ReleasedAt  *time.Time           `json:"released_at,omitempty"`
	CancelledAt *time.Time           `json:"cancelled_at,omitempty"`
}

// NewStatus 由里程碑计算视图
func NewStatus(m *model.Milestone) *Status {
	return &Status{
		MilestoneID: m.ID,
		ContractID:  m.ContractID,
		Name:        m.Name,
		Amount:      m.Amount.String(),
		State:       m.State,
		Version:     m.Version,
		IsDeposited: m.State.HoldsFunds() || m.State == model.StateReleased,
		IsReleased:  m.State == model.StateReleased,
		IsLocked:    m.State == model.StateDisputed,
		CanRelease:  m.State == model.StateDeposited || m.State == model.StateCompleted,
		HasEvidence: m.EvidenceURL != "",
		EvidenceURL: m.EvidenceURL,
		DepositedAt: m.DepositedAt,
		CompletedAt: m.CompletedAt,
		ReleasedAt:  m.ReleasedAt,
		CancelledAt: m.CancelledAt,
	}
}

// Status 查询托管状态, 优先读缓存 (L1 内存 + L2 Redis)
// 结果仅供展示: 失效只作用于本进程的 L1, 其它实例以及读写交错时可能在 TTL 内读到旧值,
// 所有写操作都在事务内重新读取并校验, 不依赖这里的 CanRelease
func (s *Service) Status(ctx context.Context, milestoneID uint64) (*Status, error) {
	key := statusKey(milestoneID)

	if s.statusCache != nil {
		var cached Status
		if err := s.statusCache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	m, err := s.store.GetMilestone(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	st := NewStatus(m)

	if s.statusCache != nil {
		if err := s.statusCache.Set(ctx, key, st, s.statusTTL); err != nil {
			logger.Debug("Status cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return st, nil
}

// invalidate 写事务提交后删除缓存, 失败只记录日志, 靠 TTL 兜底
func (s *Service) invalidate(ctx context.Context, milestoneID uint64) {
	if s.statusCache == nil {
		return
	}
	if err := s.statusCache.Delete(ctx, statusKey(milestoneID)); err != nil {
		logger.Warn("Status cache invalidation failed",
			zap.Uint64("milestone_id", milestoneID), zap.Error(err))
	}
}

func statusKey(milestoneID uint64) string {
	return fmt.Sprintf("escrow:status:%d", milestoneID)
}
