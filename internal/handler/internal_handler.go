package handler

import (
	"escrow-core/internal/handler/request"
	"escrow-core/internal/handler/response"
	"escrow-core/internal/model"
	"escrow-core/internal/service/escrow"
	"escrow-core/internal/service/ledger"
	"escrow-core/internal/service/wallet"
	"escrow-core/pkg/errno"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// InternalHandler 供内部服务调用 (报价/争议/推荐/运营), 不对公网暴露
type InternalHandler struct {
	store   *ledger.Store
	escrow  *escrow.Service
	wallets *wallet.Service
}

func NewInternalHandler(store *ledger.Store, escrowSvc *escrow.Service, wallets *wallet.Service) *InternalHandler {
	return &InternalHandler{store: store, escrow: escrowSvc, wallets: wallets}
}

// CreateContract 报价被接受后创建合同与里程碑
// @Summary 创建合同
// @Tags Internal
// @Accept json
// @Produce json
// @Param request body request.CreateContractRequest true "Contract"
// @Success 200 {object} response.Response
// @Router /internal/contracts [post]
func (h *InternalHandler) CreateContract(c *gin.Context) {
	var req request.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	if req.OwnerID == req.ContractorID {
		response.Error(c, errno.ErrBind.WithMessage("owner and contractor must differ"))
		return
	}

	contract := &model.Contract{
		OwnerID:      req.OwnerID,
		ContractorID: req.ContractorID,
		QuoteRef:     req.QuoteRef,
		TotalAmount:  decimal.RequireFromString(req.TotalAmount),
	}
	milestones := make([]model.Milestone, 0, len(req.Milestones))
	for _, in := range req.Milestones {
		milestones = append(milestones, model.Milestone{
			Name:   in.Name,
			Amount: decimal.RequireFromString(in.Amount),
			Seq:    in.Order,
		})
	}

	if err := h.store.CreateContract(c.Request.Context(), contract, milestones); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, contract)
}

// OpenDispute 争议子系统冻结里程碑
// @Summary 开启争议
// @Tags Internal
// @Accept json
// @Produce json
// @Param id path int true "Milestone ID"
// @Param request body request.OpenDisputeRequest true "Dispute"
// @Success 200 {object} response.Response
// @Router /internal/milestones/{id}/dispute [post]
func (h *InternalHandler) OpenDispute(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req request.OpenDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	m, err := h.escrow.OpenDispute(c.Request.Context(), id, req.ActorID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, m)
}

// Unlock 争议解决, 恢复履约
// @Summary 解除争议
// @Tags Internal
// @Produce json
// @Param id path int true "Milestone ID"
// @Success 200 {object} response.Response
// @Router /internal/milestones/{id}/unlock [post]
func (h *InternalHandler) Unlock(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	m, err := h.escrow.Unlock(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, m)
}

// Cancel 争议解决, 退款给业主
// @Summary 取消里程碑
// @Tags Internal
// @Produce json
// @Param id path int true "Milestone ID"
// @Success 200 {object} response.Response
// @Router /internal/milestones/{id}/cancel [post]
func (h *InternalHandler) Cancel(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	m, err := h.escrow.Cancel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, m)
}

// CreditCommission 推荐佣金入账
// @Summary 佣金入账
// @Tags Internal
// @Accept json
// @Produce json
// @Param customer_id path int true "Customer ID"
// @Param request body request.CommissionRequest true "Commission"
// @Success 200 {object} response.Response
// @Router /internal/wallets/{customer_id}/commission [post]
func (h *InternalHandler) CreditCommission(c *gin.Context) {
	customerID, ok := uintParam(c, "customer_id")
	if !ok {
		return
	}
	var req request.CommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	txn, err := h.wallets.CreditCommission(c.Request.Context(), customerID,
		decimal.RequireFromString(req.Amount), req.OrderID, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, txn)
}

// Adjust 运营调账
// @Summary 人工调账
// @Tags Internal
// @Accept json
// @Produce json
// @Param customer_id path int true "Customer ID"
// @Param request body request.AdjustRequest true "Adjustment"
// @Success 200 {object} response.Response
// @Router /internal/wallets/{customer_id}/adjust [post]
func (h *InternalHandler) Adjust(c *gin.Context) {
	customerID, ok := uintParam(c, "customer_id")
	if !ok {
		return
	}
	var req request.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, errno.ErrInvalidAmount)
		return
	}
	txn, err := h.wallets.Adjust(c.Request.Context(), customerID, amount, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, txn)
}

// Reconcile 单个钱包对账
// @Summary 钱包对账
// @Tags Internal
// @Produce json
// @Param wallet_id path int true "Wallet ID"
// @Success 200 {object} response.Response
// @Router /internal/reconcile/wallets/{wallet_id} [get]
func (h *InternalHandler) Reconcile(c *gin.Context) {
	walletID, ok := uintParam(c, "wallet_id")
	if !ok {
		return
	}
	r, err := h.wallets.Reconcile(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"wallet_id":      r.WalletID,
		"customer_id":    r.CustomerID,
		"cached_balance": r.CachedBalance,
		"ledger_balance": r.LedgerBalance,
		"drift":          r.Drift,
		"balanced":       r.Balanced(),
	})
}
