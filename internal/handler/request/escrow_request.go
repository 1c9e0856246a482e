package request

// 金额一律使用十进制字符串, 由 money 规则校验为正整数 (VND)

type DepositRequest struct {
	Amount string `json:"amount" binding:"required,money"`
	Note   string `json:"note" binding:"max=500"`
}

type SubmitEvidenceRequest struct {
	ProofURL string `json:"proof_url" binding:"required,url"`
	Notes    string `json:"notes" binding:"max=2000"`
}

type ReleaseRequest struct {
	// 调用方最后看到的版本号, 可选
	ExpectedVersion *uint64 `json:"expected_version"`
}

type OpenDisputeRequest struct {
	ActorID uint64 `json:"actor_id" binding:"required"`
	Reason  string `json:"reason" binding:"required,max=1000"`
}

type MilestoneInput struct {
	Name   string `json:"name" binding:"required,max=255"`
	Amount string `json:"amount" binding:"required,money"`
	Order  int    `json:"order" binding:"min=0"`
}

type CreateContractRequest struct {
	OwnerID      uint64           `json:"owner_id" binding:"required"`
	ContractorID uint64           `json:"contractor_id" binding:"required"`
	QuoteRef     string           `json:"quote_ref" binding:"max=64"`
	TotalAmount  string           `json:"total_amount" binding:"required,money"`
	Milestones   []MilestoneInput `json:"milestones" binding:"required,min=1,dive"`
}
