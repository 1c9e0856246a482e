package handler

import (
	"escrow-core/internal/handler/middleware"
	"escrow-core/internal/handler/request"
	"escrow-core/internal/handler/response"
	"escrow-core/internal/service/wallet"
	"escrow-core/pkg/errno"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	svc *wallet.Service
}

func NewWalletHandler(svc *wallet.Service) *WalletHandler {
	return &WalletHandler{svc: svc}
}

// ownWallet 用户只能访问自己的钱包
func ownWallet(c *gin.Context) (uint64, bool) {
	customerID, ok := uintParam(c, "customer_id")
	if !ok {
		return 0, false
	}
	if customerID != middleware.ActorID(c) {
		response.Error(c, errno.ErrForbidden.WithMessage("wallets are only visible to their owner"))
		return 0, false
	}
	return customerID, true
}

// GetWallet 钱包余额
// @Summary 查询钱包
// @Tags Wallet
// @Produce json
// @Param X-User-ID header int true "Caller ID"
// @Param customer_id path int true "Customer ID"
// @Success 200 {object} response.Response
// @Router /api/v1/wallets/{customer_id} [get]
func (h *WalletHandler) GetWallet(c *gin.Context) {
	customerID, ok := ownWallet(c)
	if !ok {
		return
	}
	w, err := h.svc.GetWallet(c.Request.Context(), customerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, w)
}

// ListTransactions 钱包流水
// @Summary 查询钱包流水
// @Tags Wallet
// @Produce json
// @Param X-User-ID header int true "Caller ID"
// @Param customer_id path int true "Customer ID"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Response
// @Router /api/v1/wallets/{customer_id}/transactions [get]
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	customerID, ok := ownWallet(c)
	if !ok {
		return
	}
	var q request.ListTransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	txns, total, err := h.svc.ListTransactions(c.Request.Context(), customerID, q.Limit, q.Offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"items": txns, "total": total})
}

// Withdraw 申请提现
// @Summary 申请提现
// @Description 可用余额转入冻结余额, 等待银行处理
// @Tags Wallet
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Caller ID"
// @Param Idempotency-Key header string false "Idempotency key"
// @Param customer_id path int true "Customer ID"
// @Param request body request.WithdrawRequest true "Withdraw Request"
// @Success 200 {object} response.Response
// @Router /api/v1/wallets/{customer_id}/withdraw [post]
func (h *WalletHandler) Withdraw(c *gin.Context) {
	customerID, ok := ownWallet(c)
	if !ok {
		return
	}
	var req request.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	txn, err := h.svc.Withdraw(c.Request.Context(), customerID, decimal.RequireFromString(req.Amount), wallet.BankAccount{
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, txn)
}
