// Package engine serializes read-mutate-write cycles on keyed aggregates.
//
// Two interchangeable strategies implement the same Allocator contract:
// Exclusive takes a per-key lock with a bounded wait, Optimistic writes back
// conditioned on an unchanged version. For a counter starting at N, both admit
// exactly N successful decrements under any level of concurrency; the losers
// see the aggregate's own business rejection, never a lock artifact.
package engine

import (
	"context"
	"errors"
	"fmt"

	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	// ErrNotFound: unknown key at the storage boundary.
	ErrNotFound = errs.New("aggregate not found")
	// ErrConflict: optimistic version mismatch; caller may retry.
	ErrConflict = errs.New("version conflict")
	// ErrBusy: lock wait timed out; caller may retry.
	ErrBusy = errs.New("resource busy")
	// ErrDuplicate: conditional insert lost the uniqueness race.
	ErrDuplicate = errs.New("duplicate key")
)

// IsRetryable reports whether the caller may retry the allocation as-is.
// Business rejections returned by mutations are never retryable.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrBusy)
}

type Kind string

const (
	KindAccount Kind = "account"
	KindProduct Kind = "product"
	KindCoupon  Kind = "coupon"
	KindGrant   Kind = "grant"
)

// Key identifies one aggregate at the storage boundary.
type Key struct {
	Kind Kind
	ID   uuid.UUID
}

func NewKey(kind Kind, id uuid.UUID) Key {
	return Key{Kind: kind, ID: id}
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Kind, k.ID)
}

// MutationFunc maps current aggregate state to new state or a rejection.
// Implementations must not mutate current in place: clone, change, return.
type MutationFunc func(current any) (any, error)

// Allocator applies a mutation to the aggregate under key with at-most-once,
// per-key serialized semantics. On any error the aggregate is unchanged.
type Allocator interface {
	Allocate(ctx context.Context, key Key, fn MutationFunc) (any, error)
}

// Allocate is the typed entry point over Allocator's any-valued contract.
func Allocate[T any](ctx context.Context, a Allocator, key Key, fn func(T) (T, error)) (T, error) {
	var zero T
	out, err := a.Allocate(ctx, key, func(current any) (any, error) {
		typed, ok := current.(T)
		if !ok {
			return nil, errs.Newf("unexpected aggregate type %T for key %s", current, key)
		}
		return fn(typed)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := out.(T)
	if !ok {
		return zero, errs.Newf("unexpected result type %T for key %s", out, key)
	}
	return typed, nil
}
