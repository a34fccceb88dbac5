package engine

import (
	"context"
	"time"
)

// Versioned is an aggregate snapshot paired with the version it was read at.
type Versioned struct {
	Value   any
	Version int64
}

// Store is the storage boundary the engine mutates through. Implementations
// must make CompareAndSwap atomic with respect to the version check and
// Insert atomic with respect to the uniqueness check.
type Store interface {
	// Get returns the current snapshot or ErrNotFound.
	Get(ctx context.Context, key Key) (Versioned, error)
	// CompareAndSwap writes value if the stored version still equals
	// expected, bumping the version; otherwise ErrConflict.
	CompareAndSwap(ctx context.Context, key Key, value any, expected int64) error
	// Insert creates the aggregate or fails with ErrDuplicate.
	Insert(ctx context.Context, key Key, value any) error
}

// Locker provides the exclusive strategy's per-key serializing lock.
type Locker interface {
	// Acquire blocks up to wait for the key's lock. On success the returned
	// release must be called exactly once. A timeout yields ErrBusy.
	Acquire(ctx context.Context, key Key, wait time.Duration) (release func(), err error)
}
