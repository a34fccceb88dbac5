package request

import (
	"github.com/google/uuid"
)

type IssueCouponRequest struct {
	AccountID uuid.UUID `json:"account_id" binding:"required"`
}

type JoinQueueRequest struct {
	AccountID uuid.UUID `json:"account_id" binding:"required"`
}
