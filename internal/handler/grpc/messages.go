package grpc

import (
	"escrow-core/internal/model"
)

type DepositRequest struct {
	MilestoneID uint64 `json:"milestone_id"`
	ActorID     uint64 `json:"actor_id"`
	Amount      string `json:"amount"`
	Note        string `json:"note"`
}

type SubmitEvidenceRequest struct {
	MilestoneID uint64 `json:"milestone_id"`
	ActorID     uint64 `json:"actor_id"`
	ProofURL    string `json:"proof_url"`
	Notes       string `json:"notes"`
}

type ApproveAndReleaseRequest struct {
	MilestoneID     uint64  `json:"milestone_id"`
	ActorID         uint64  `json:"actor_id"`
	ExpectedVersion *uint64 `json:"expected_version,omitempty"`
}

type IsLockedRequest struct {
	MilestoneID uint64 `json:"milestone_id"`
}

type MilestoneResponse struct {
	Milestone *model.Milestone `json:"milestone"`
}

type IsLockedResponse struct {
	MilestoneID uint64 `json:"milestone_id"`
	Locked      bool   `json:"locked"`
}
