package request

type ChargeBalanceRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type DeductBalanceRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}
