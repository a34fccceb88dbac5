package engine

import (
	"context"
)

// OptimisticAllocator never blocks: it reads a versioned snapshot, computes
// the mutation locally and writes back conditioned on the version. Losers of
// a write race get ErrConflict and decide for themselves whether to retry.
type OptimisticAllocator struct {
	store Store
}

func NewOptimisticAllocator(store Store) *OptimisticAllocator {
	return &OptimisticAllocator{store: store}
}

func (a *OptimisticAllocator) Allocate(ctx context.Context, key Key, fn MutationFunc) (any, error) {
	snapshot, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	next, err := fn(snapshot.Value)
	if err != nil {
		return nil, err
	}

	if err := a.store.CompareAndSwap(ctx, key, next, snapshot.Version); err != nil {
		return nil, err
	}
	return next, nil
}
