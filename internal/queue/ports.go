package queue

import (
	"context"
	"time"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	// ErrEntryNotFound: no queue entry for the (account, coupon) pair.
	ErrEntryNotFound = errs.New("queue entry not found")
	// ErrActiveEntryExists: an Append raced with an existing non-terminal
	// entry for the same pair.
	ErrActiveEntryExists = errs.New("active queue entry already exists")
)

// EntryRepository owns the per-coupon ordering key: Append assigns the
// entry's position atomically with the duplicate-pair check.
type EntryRepository interface {
	Append(ctx context.Context, e *coupon.QueueEntry) error
	FindActive(ctx context.Context, accountID, couponID uuid.UUID) (*coupon.QueueEntry, error)
	FindLatest(ctx context.Context, accountID, couponID uuid.UUID) (*coupon.QueueEntry, error)
	// ListWaiting returns WAITING entries in position order; limit <= 0
	// means all.
	ListWaiting(ctx context.Context, couponID uuid.UUID, limit int) ([]*coupon.QueueEntry, error)
	Update(ctx context.Context, e *coupon.QueueEntry) error
	CouponIDsWithWaiting(ctx context.Context) ([]uuid.UUID, error)
}

// CouponSource lists coupons whose queues are worth draining.
type CouponSource interface {
	ListIssuable(ctx context.Context, now time.Time) ([]*coupon.Coupon, error)
}

// Issuer is the same allocation path direct issuance uses.
type Issuer interface {
	Issue(ctx context.Context, accountID, couponID uuid.UUID) (*coupon.Grant, error)
}

// GrantSweeper expires stale grants; run on the slow cadence.
type GrantSweeper interface {
	ExpireGrants(ctx context.Context) (int, error)
}
