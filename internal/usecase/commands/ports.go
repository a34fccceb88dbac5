package commands

import (
	"context"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/domain/order"

	"github.com/google/uuid"
)

// OrderRepository persists a committed order with its line items as one
// recorded transaction.
type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	// Transition moves the order from one status to another only if it is
	// still in the from status, reporting engine.ErrConflict otherwise.
	// Racing transitions see exactly one winner.
	Transition(ctx context.Context, id uuid.UUID, from, to order.Status) error
}

// GrantSource lists grants for the expiry sweep. Mutation still goes through
// the allocation engine; this is a read-only enumeration.
type GrantSource interface {
	ListGrants(ctx context.Context) ([]*coupon.Grant, error)
}
