package handler

import (
	"escrow-core/internal/handler/middleware"
	"escrow-core/internal/handler/request"
	"escrow-core/internal/handler/response"
	"escrow-core/internal/service/escrow"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type EscrowHandler struct {
	svc *escrow.Service
}

func NewEscrowHandler(svc *escrow.Service) *EscrowHandler {
	return &EscrowHandler{svc: svc}
}

// Deposit 业主入金
// @Summary 里程碑入金
// @Description 业主把里程碑金额存入托管, 金额必须与里程碑金额一致
// @Tags Escrow
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Caller ID"
// @Param Idempotency-Key header string false "Idempotency key"
// @Param id path int true "Milestone ID"
// @Param request body request.DepositRequest true "Deposit Request"
// @Success 200 {object} response.Response
// @Router /api/v1/milestones/{id}/deposit [post]
func (h *EscrowHandler) Deposit(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req request.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	m, err := h.svc.Deposit(c.Request.Context(), id, middleware.ActorID(c), decimal.RequireFromString(req.Amount), req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, m)
}

// SubmitEvidence 承包商提交完工证据
// @Summary 提交完工证据
// @Tags Escrow
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Caller ID"
// @Param id path int true "Milestone ID"
// @Param request body request.SubmitEvidenceRequest true "Evidence"
// @Success 200 {object} response.Response
// @Router /api/v1/milestones/{id}/evidence [post]
func (h *EscrowHandler) SubmitEvidence(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req request.SubmitEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	m, err := h.svc.SubmitEvidence(c.Request.Context(), id, middleware.ActorID(c), req.ProofURL, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, m)
}

// Release 审批并放款
// @Summary 审批放款
// @Description 业主审批后扣除平台费, 实付金额进入承包商钱包
// @Tags Escrow
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Caller ID"
// @Param Idempotency-Key header string false "Idempotency key"
// @Param id path int true "Milestone ID"
// @Param request body request.ReleaseRequest false "Release options"
// @Success 200 {object} response.Response
// @Router /api/v1/milestones/{id}/release [post]
func (h *EscrowHandler) Release(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req request.ReleaseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
	}

	var opts []escrow.ReleaseOption
	if req.ExpectedVersion != nil {
		opts = append(opts, escrow.WithExpectedVersion(*req.ExpectedVersion))
	}

	receipt, err := h.svc.ApproveAndRelease(c.Request.Context(), id, middleware.ActorID(c), opts...)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, receipt)
}

// Status 托管状态
// @Summary 查询托管状态
// @Tags Escrow
// @Produce json
// @Param id path int true "Milestone ID"
// @Success 200 {object} response.Response
// @Router /api/v1/milestones/{id}/escrow [get]
func (h *EscrowHandler) Status(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	st, err := h.svc.Status(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, st)
}

// IsLocked 是否被争议冻结
// @Summary 查询争议锁
// @Tags Escrow
// @Produce json
// @Param id path int true "Milestone ID"
// @Success 200 {object} response.Response
// @Router /api/v1/milestones/{id}/lock [get]
func (h *EscrowHandler) IsLocked(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	locked, err := h.svc.IsLocked(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"milestone_id": id, "locked": locked})
}
