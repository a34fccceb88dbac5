package response

import (
	"time"

	"commerce-core/internal/domain/coupon"

	"github.com/google/uuid"
)

type GrantResponse struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"accountId"`
	CouponID  uuid.UUID `json:"couponId"`
	Status    string    `json:"status"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type QueueEntryResponse struct {
	ID           uuid.UUID  `json:"id"`
	AccountID    uuid.UUID  `json:"accountId"`
	CouponID     uuid.UUID  `json:"couponId"`
	Status       string     `json:"status"`
	Position     int        `json:"position"`
	FailedReason *string    `json:"failedReason,omitempty"`
	ProcessedAt  *time.Time `json:"processedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func FromGrant(g *coupon.Grant) *GrantResponse {
	return &GrantResponse{
		ID:        g.ID(),
		AccountID: g.AccountID(),
		CouponID:  g.CouponID(),
		Status:    string(g.Status()),
		IssuedAt:  g.IssuedAt(),
		ExpiresAt: g.ExpiresAt(),
	}
}

func FromQueueEntry(e *coupon.QueueEntry) *QueueEntryResponse {
	resp := &QueueEntryResponse{
		ID:          e.ID(),
		AccountID:   e.AccountID(),
		CouponID:    e.CouponID(),
		Status:      string(e.Status()),
		Position:    e.Position(),
		ProcessedAt: e.ProcessedAt(),
		CreatedAt:   e.CreatedAt(),
	}
	if reason := e.FailedReason(); reason != "" {
		resp.FailedReason = &reason
	}
	return resp
}
