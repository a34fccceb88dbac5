package engine_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"commerce-core/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyAllocator fails with a fixed error a set number of times, then succeeds.
type flakyAllocator struct {
	failures int32
	err      error
	calls    int32
}

func (f *flakyAllocator) Allocate(_ context.Context, _ engine.Key, _ engine.MutationFunc) (any, error) {
	n := atomic.AddInt32(&f.calls, 1)
	if n <= f.failures {
		return nil, f.err
	}
	return "ok", nil
}

func TestAllocateWithRetry(t *testing.T) {
	policy := engine.RetryPolicy{MaxRetries: 3, Backoff: time.Millisecond}
	key := engine.Key{}

	t.Run("retries conflicts until success", func(t *testing.T) {
		a := &flakyAllocator{failures: 2, err: engine.ErrConflict}
		out, err := engine.AllocateWithRetry(context.Background(), a, key, nil, policy)
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
		assert.Equal(t, int32(3), a.calls)
	})

	t.Run("retries lock timeouts", func(t *testing.T) {
		a := &flakyAllocator{failures: 1, err: engine.ErrBusy}
		_, err := engine.AllocateWithRetry(context.Background(), a, key, nil, policy)
		require.NoError(t, err)
		assert.Equal(t, int32(2), a.calls)
	})

	t.Run("gives up after the retry budget", func(t *testing.T) {
		a := &flakyAllocator{failures: 100, err: engine.ErrConflict}
		_, err := engine.AllocateWithRetry(context.Background(), a, key, nil, policy)
		assert.ErrorIs(t, err, engine.ErrConflict)
		assert.Equal(t, int32(policy.MaxRetries+1), a.calls)
	})

	t.Run("business rejections are never retried", func(t *testing.T) {
		a := &flakyAllocator{failures: 100, err: errCounterDrained}
		_, err := engine.AllocateWithRetry(context.Background(), a, key, nil, policy)
		assert.ErrorIs(t, err, errCounterDrained)
		assert.Equal(t, int32(1), a.calls)
	})

	t.Run("cancelled context stops the backoff wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		a := &flakyAllocator{failures: 100, err: engine.ErrConflict}
		_, err := engine.AllocateWithRetry(ctx, a, key, nil, policy)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, engine.IsRetryable(engine.ErrConflict))
	assert.True(t, engine.IsRetryable(engine.ErrBusy))
	assert.False(t, engine.IsRetryable(engine.ErrNotFound))
	assert.False(t, engine.IsRetryable(engine.ErrDuplicate))
	assert.False(t, engine.IsRetryable(errCounterDrained))
	assert.False(t, engine.IsRetryable(nil))
}
