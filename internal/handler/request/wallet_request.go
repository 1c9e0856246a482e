package request

type WithdrawRequest struct {
	Amount        string `json:"amount" binding:"required,money"`
	BankName      string `json:"bank_name" binding:"required,max=100"`
	AccountNumber string `json:"account_number" binding:"required,numeric,min=6,max=30"`
	AccountName   string `json:"account_name" binding:"required,max=100"`
}

type CommissionRequest struct {
	Amount      string `json:"amount" binding:"required,money"`
	OrderID     string `json:"order_id" binding:"required,max=64"`
	Description string `json:"description" binding:"max=500"`
}

type AdjustRequest struct {
	// 有符号整数, 负数表示扣减
	Amount string `json:"amount" binding:"required,numeric"`
	Reason string `json:"reason" binding:"required,max=500"`
}

type ListTransactionsQuery struct {
	Limit  int `form:"limit" binding:"min=0,max=100"`
	Offset int `form:"offset" binding:"min=0"`
}
