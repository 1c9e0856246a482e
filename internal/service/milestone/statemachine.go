package milestone

import (
	"fmt"

	"escrow-core/internal/model"
	"escrow-core/pkg/errno"
)

// Event 触发里程碑状态转换的事件
type Event string

const (
	EventDeposit        Event = "deposit"
	EventSubmitEvidence Event = "submit_evidence"
	EventApproveRelease Event = "approve_release"
	EventOpenDispute    Event = "open_dispute"
	EventUnlock         Event = "unlock"
	EventCancel         Event = "cancel"
)

// AllEvents 所有合法事件
func AllEvents() []Event {
	return []Event{EventDeposit, EventSubmitEvidence, EventApproveRelease, EventOpenDispute, EventUnlock, EventCancel}
}

type edge struct {
	from  model.MilestoneState
	event Event
}

// transitions 唯一定义合法状态边的地方
// DISPUTED --unlock--> 的目标在 Next 中按 PreDisputeState 解析, 表中记录的是缺省值
var transitions = map[edge]model.MilestoneState{
	{model.StatePending, EventDeposit}:          model.StateDeposited,
	{model.StateDeposited, EventSubmitEvidence}: model.StateCompleted,
	{model.StateDeposited, EventApproveRelease}: model.StateReleased,
	{model.StateCompleted, EventApproveRelease}: model.StateReleased,
	{model.StateDeposited, EventOpenDispute}:    model.StateDisputed,
	{model.StateCompleted, EventOpenDispute}:    model.StateDisputed,
	{model.StateDisputed, EventUnlock}:          model.StateCompleted,
	{model.StateDisputed, EventCancel}:          model.StateCancelled,
}

// lockedEvents 争议期间被冻结的资金操作, 返回 Locked 而不是 InvalidState
// 其它没有出边的事件 (例如提交凭证) 一律是 InvalidState
var lockedEvents = map[Event]bool{
	EventDeposit:        true,
	EventApproveRelease: true,
}

// Transition 纯函数: 根据当前状态和事件返回目标状态
func Transition(from model.MilestoneState, ev Event) (model.MilestoneState, error) {
	if !knownState(from) {
		return "", errno.ErrInvalidState.WithMessage(fmt.Sprintf("unknown milestone state %q", from))
	}
	if !knownEvent(ev) {
		return "", errno.ErrInvalidState.WithMessage(fmt.Sprintf("unknown milestone event %q", ev))
	}

	if to, ok := transitions[edge{from, ev}]; ok {
		return to, nil
	}

	switch {
	case from == model.StateDisputed && lockedEvents[ev]:
		return "", errno.ErrLocked
	case from == model.StateReleased && ev == EventApproveRelease:
		return "", errno.ErrAlreadyReleased
	}
	return "", errno.ErrInvalidState.WithMessage(fmt.Sprintf("cannot %s a milestone in state %s", ev, from))
}

// Next 对具体里程碑求目标状态, unlock 恢复到争议前的状态
func Next(m *model.Milestone, ev Event) (model.MilestoneState, error) {
	to, err := Transition(m.State, ev)
	if err != nil {
		return "", err
	}
	if ev == EventUnlock {
		switch m.PreDisputeState {
		case model.StateDeposited, model.StateCompleted:
			return m.PreDisputeState, nil
		}
	}
	return to, nil
}

func knownState(s model.MilestoneState) bool {
	switch s {
	case model.StatePending, model.StateDeposited, model.StateCompleted,
		model.StateReleased, model.StateDisputed, model.StateCancelled:
		return true
	}
	return false
}

func knownEvent(ev Event) bool {
	switch ev {
	case EventDeposit, EventSubmitEvidence, EventApproveRelease,
		EventOpenDispute, EventUnlock, EventCancel:
		return true
	}
	return false
}
