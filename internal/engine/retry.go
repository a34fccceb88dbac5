package engine

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"time"
)

// RetryPolicy bounds how often retryable allocation errors (ErrConflict,
// ErrBusy) are retried before surfacing to the caller.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		Backoff:    50 * time.Millisecond,
	}
}

// AllocateWithRetry retries conflicts and lock timeouts with exponential
// backoff plus jitter. Business rejections pass through on the first attempt.
func AllocateWithRetry(ctx context.Context, a Allocator, key Key, fn MutationFunc, policy RetryPolicy) (any, error) {
	var out any
	var err error

	for attempt := 0; ; attempt++ {
		out, err = a.Allocate(ctx, key, fn)
		if err == nil || !IsRetryable(err) || attempt >= policy.MaxRetries {
			return out, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(calculateBackoff(attempt, policy.Backoff)):
		}
	}
}

// WithRetry wraps an allocator so every allocation goes through
// AllocateWithRetry with the given policy.
func WithRetry(a Allocator, policy RetryPolicy) Allocator {
	return &retryAllocator{inner: a, policy: policy}
}

type retryAllocator struct {
	inner  Allocator
	policy RetryPolicy
}

func (r *retryAllocator) Allocate(ctx context.Context, key Key, fn MutationFunc) (any, error) {
	return AllocateWithRetry(ctx, r.inner, key, fn, r.policy)
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	// Mask the high bit so the conversion stays positive.
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	return int64(uval) % n
}
