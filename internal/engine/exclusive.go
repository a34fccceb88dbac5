package engine

import (
	"context"
	"time"

	"commerce-core/internal/pkg/errs"
)

// ExclusiveAllocator serializes callers behind a per-key lock held for the
// whole read-mutate-write cycle. Waiters past the bounded timeout get ErrBusy
// without the mutation ever being applied.
type ExclusiveAllocator struct {
	store       Store
	locker      Locker
	waitTimeout time.Duration
}

func NewExclusiveAllocator(store Store, locker Locker, waitTimeout time.Duration) *ExclusiveAllocator {
	return &ExclusiveAllocator{
		store:       store,
		locker:      locker,
		waitTimeout: waitTimeout,
	}
}

func (a *ExclusiveAllocator) Allocate(ctx context.Context, key Key, fn MutationFunc) (any, error) {
	release, err := a.locker.Acquire(ctx, key, a.waitTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	snapshot, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	next, err := fn(snapshot.Value)
	if err != nil {
		return nil, err
	}

	// The lock serializes writers, so the version cannot have moved; a
	// conflict here means a writer bypassed the locker.
	if err := a.store.CompareAndSwap(ctx, key, next, snapshot.Version); err != nil {
		return nil, errs.Wrapf(err, "write under exclusive lock for %s", key)
	}
	return next, nil
}
