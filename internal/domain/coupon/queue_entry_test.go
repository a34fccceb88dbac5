//go:build unit

package coupon_test

import (
	"testing"
	"time"

	"commerce-core/internal/domain/coupon"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueEntry(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	processedAt := createdAt.Add(time.Second)

	newEntry := func() *coupon.QueueEntry {
		return coupon.NewQueueEntry(uuid.New(), uuid.New(), 1, createdAt)
	}

	t.Run("starts waiting", func(t *testing.T) {
		e := newEntry()
		assert.Equal(t, coupon.QueueWaiting, e.Status())
		assert.Equal(t, 1, e.Position())
		assert.Nil(t, e.ProcessedAt())
	})

	t.Run("completion records the processing time", func(t *testing.T) {
		e := newEntry()
		e.MarkProcessing()
		e.MarkCompleted(processedAt)

		assert.Equal(t, coupon.QueueCompleted, e.Status())
		require.NotNil(t, e.ProcessedAt())
		assert.Equal(t, processedAt, *e.ProcessedAt())
	})

	t.Run("failure records a reason", func(t *testing.T) {
		e := newEntry()
		e.MarkProcessing()
		e.MarkFailed("EXHAUSTED", processedAt)

		assert.Equal(t, coupon.QueueFailed, e.Status())
		assert.Equal(t, "EXHAUSTED", e.FailedReason())
	})

	t.Run("reset returns a processing entry to the line", func(t *testing.T) {
		e := newEntry()
		e.MarkProcessing()
		e.ResetWaiting()
		assert.Equal(t, coupon.QueueWaiting, e.Status())
	})

	t.Run("terminal entries keep their position", func(t *testing.T) {
		e := newEntry()
		e.MarkCompleted(processedAt)
		e.UpdatePosition(9)
		assert.Equal(t, 1, e.Position())
	})

	t.Run("waiting entries can move up", func(t *testing.T) {
		e := coupon.NewQueueEntry(uuid.New(), uuid.New(), 5, createdAt)
		e.UpdatePosition(2)
		assert.Equal(t, 2, e.Position())
	})

	t.Run("terminal statuses", func(t *testing.T) {
		assert.False(t, coupon.QueueWaiting.IsTerminal())
		assert.False(t, coupon.QueueProcessing.IsTerminal())
		assert.True(t, coupon.QueueCompleted.IsTerminal())
		assert.True(t, coupon.QueueFailed.IsTerminal())
	})
}
