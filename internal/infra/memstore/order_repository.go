package memstore

import (
	"context"
	"sync"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/engine"

	"github.com/google/uuid"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*order.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[uuid.UUID]*order.Order),
	}
}

func (r *OrderRepository) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[o.ID()]; ok {
		return engine.ErrDuplicate
	}
	r.orders[o.ID()] = o
	return nil
}

func (r *OrderRepository) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, engine.ErrNotFound
	}
	return o, nil
}

func (r *OrderRepository) Transition(_ context.Context, id uuid.UUID, from, to order.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return engine.ErrNotFound
	}
	if o.Status() != from {
		return engine.ErrConflict
	}
	r.orders[id] = order.Restore(
		o.ID(), o.AccountID(), o.Items(), o.GrantID(),
		o.Subtotal(), o.Discount(), o.Total(), to, o.ShippingNote(), o.CreatedAt(),
	)
	return nil
}

// CountByAccount supports assertions in concurrency tests.
func (r *OrderRepository) CountByAccount(accountID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, o := range r.orders {
		if o.AccountID() == accountID {
			n++
		}
	}
	return n
}

// Count returns the total number of persisted orders.
func (r *OrderRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
