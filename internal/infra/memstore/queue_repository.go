package memstore

import (
	"context"
	"sort"
	"sync"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/queue"

	"github.com/google/uuid"
)

// QueueEntryRepository keeps per-coupon waiting lists in memory. Append is
// atomic with the duplicate-pair check and position assignment, which is the
// whole contract.
type QueueEntryRepository struct {
	mu      sync.Mutex
	entries map[uuid.UUID][]*coupon.QueueEntry // couponID -> entries in join order
}

func NewQueueEntryRepository() *QueueEntryRepository {
	return &QueueEntryRepository{
		entries: make(map[uuid.UUID][]*coupon.QueueEntry),
	}
}

func (r *QueueEntryRepository) Append(_ context.Context, e *coupon.QueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	waiting := 0
	for _, existing := range r.entries[e.CouponID()] {
		if existing.AccountID() == e.AccountID() && !existing.Status().IsTerminal() {
			return queue.ErrActiveEntryExists
		}
		if existing.Status() == coupon.QueueWaiting {
			waiting++
		}
	}

	e.UpdatePosition(waiting + 1)
	r.entries[e.CouponID()] = append(r.entries[e.CouponID()], e.Clone())
	return nil
}

func (r *QueueEntryRepository) FindActive(_ context.Context, accountID, couponID uuid.UUID) (*coupon.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries[couponID] {
		if e.AccountID() == accountID && !e.Status().IsTerminal() {
			return e.Clone(), nil
		}
	}
	return nil, queue.ErrEntryNotFound
}

func (r *QueueEntryRepository) FindLatest(_ context.Context, accountID, couponID uuid.UUID) (*coupon.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.entries[couponID]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].AccountID() == accountID {
			return list[i].Clone(), nil
		}
	}
	return nil, queue.ErrEntryNotFound
}

func (r *QueueEntryRepository) ListWaiting(_ context.Context, couponID uuid.UUID, limit int) ([]*coupon.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var waiting []*coupon.QueueEntry
	for _, e := range r.entries[couponID] {
		if e.Status() == coupon.QueueWaiting {
			waiting = append(waiting, e.Clone())
		}
	}
	sort.SliceStable(waiting, func(i, j int) bool {
		return waiting[i].Position() < waiting[j].Position()
	})

	if limit > 0 && len(waiting) > limit {
		waiting = waiting[:limit]
	}
	return waiting, nil
}

func (r *QueueEntryRepository) Update(_ context.Context, e *coupon.QueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.entries[e.CouponID()]
	for i, existing := range list {
		if existing.ID() == e.ID() {
			list[i] = e.Clone()
			return nil
		}
	}
	return queue.ErrEntryNotFound
}

func (r *QueueEntryRepository) CouponIDsWithWaiting(_ context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []uuid.UUID
	for couponID, list := range r.entries {
		for _, e := range list {
			if e.Status() == coupon.QueueWaiting {
				ids = append(ids, couponID)
				break
			}
		}
	}
	return ids, nil
}
