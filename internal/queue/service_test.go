package queue_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"commerce-core/internal/domain/account"
	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/domain/vo"
	"commerce-core/internal/engine"
	"commerce-core/internal/infra/memstore"
	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/queue"
	"commerce-core/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memstore.Store
	entries *memstore.QueueEntryRepository
	service *queue.Service
	issuer  commands.CouponCommands
	clock   *clock.MockClock
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.NewStore()
	entries := memstore.NewQueueEntryRepository()
	clk := clock.NewMockClock(testNow)
	logger := discardLogger()
	allocator := engine.NewExclusiveAllocator(store, store, 5*time.Second)

	issuer := commands.NewCouponCommands(
		allocator, store, memstore.NewGrantSource(store), clk, logger,
	)
	service := queue.NewService(
		entries, memstore.NewCouponSource(store), issuer, store, clk, logger,
	)
	return &fixture{
		store:   store,
		entries: entries,
		service: service,
		issuer:  issuer,
		clock:   clk,
	}
}

func (f *fixture) seedQueueCoupon(t *testing.T, quota int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	rate, err := vo.NewDiscountRate(10)
	require.NoError(t, err)
	cpn, err := coupon.NewCoupon(
		id, "drop", coupon.NewRateDiscount(rate), vo.ZeroMoney(),
		quota, testNow.Add(-time.Hour), testNow.Add(time.Hour), true,
	)
	require.NoError(t, err)
	f.store.Seed(engine.NewKey(engine.KindCoupon, id), cpn)
	return id
}

func (f *fixture) seedDirectCoupon(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	rate, err := vo.NewDiscountRate(10)
	require.NoError(t, err)
	cpn, err := coupon.NewCoupon(
		id, "plain", coupon.NewRateDiscount(rate), vo.ZeroMoney(),
		10, testNow.Add(-time.Hour), testNow.Add(time.Hour), false,
	)
	require.NoError(t, err)
	f.store.Seed(engine.NewKey(engine.KindCoupon, id), cpn)
	return id
}

func (f *fixture) seedAccount(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	f.store.Seed(engine.NewKey(engine.KindAccount, id), account.NewAccount(id, "tester", testNow))
	return id
}

func TestJoin(t *testing.T) {
	ctx := context.Background()

	t.Run("positions are assigned in join order", func(t *testing.T) {
		f := newFixture(t)
		couponID := f.seedQueueCoupon(t, 10)

		for want := 1; want <= 3; want++ {
			entry, err := f.service.Join(ctx, f.seedAccount(t), couponID)
			require.NoError(t, err)
			assert.Equal(t, coupon.QueueWaiting, entry.Status())
			assert.Equal(t, want, entry.Position())
		}
	})

	t.Run("rejoining returns the existing entry", func(t *testing.T) {
		f := newFixture(t)
		couponID := f.seedQueueCoupon(t, 10)
		accountID := f.seedAccount(t)

		first, err := f.service.Join(ctx, accountID, couponID)
		require.NoError(t, err)
		again, err := f.service.Join(ctx, accountID, couponID)
		require.NoError(t, err)

		assert.Equal(t, first.ID(), again.ID())
		assert.Equal(t, first.Position(), again.Position())
	})

	t.Run("direct coupons have no queue", func(t *testing.T) {
		f := newFixture(t)
		couponID := f.seedDirectCoupon(t)

		_, err := f.service.Join(ctx, f.seedAccount(t), couponID)
		assert.ErrorIs(t, err, queue.ErrNotQueueCoupon)
	})

	t.Run("unknown coupon", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Join(ctx, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, queue.ErrCouponNotFound)
	})
}

func TestStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("reports the latest entry, terminal included", func(t *testing.T) {
		f := newFixture(t)
		couponID := f.seedQueueCoupon(t, 10)
		accountID := f.seedAccount(t)

		_, err := f.service.Join(ctx, accountID, couponID)
		require.NoError(t, err)

		require.NoError(t, f.service.Drain(ctx, couponID, 10))

		entry, err := f.service.Status(ctx, accountID, couponID)
		require.NoError(t, err)
		assert.Equal(t, coupon.QueueCompleted, entry.Status())

		// Status reads never mutate.
		again, err := f.service.Status(ctx, accountID, couponID)
		require.NoError(t, err)
		assert.Equal(t, entry.Status(), again.Status())
	})

	t.Run("no entry for the pair", func(t *testing.T) {
		f := newFixture(t)
		couponID := f.seedQueueCoupon(t, 10)
		_, err := f.service.Status(ctx, uuid.New(), couponID)
		assert.ErrorIs(t, err, queue.ErrEntryNotFound)
	})
}

func TestDrain(t *testing.T) {
	ctx := context.Background()

	t.Run("completes entries in position order and issues grants", func(t *testing.T) {
		f := newFixture(t)
		couponID := f.seedQueueCoupon(t, 10)
		accounts := []uuid.UUID{f.seedAccount(t), f.seedAccount(t), f.seedAccount(t)}

		for _, accountID := range accounts {
			_, err := f.service.Join(ctx, accountID, couponID)
			require.NoError(t, err)
		}

		require.NoError(t, f.service.Drain(ctx, couponID, 10))

		for _, accountID := range accounts {
			entry, err := f.service.Status(ctx, accountID, couponID)
			require.NoError(t, err)
			assert.Equal(t, coupon.QueueCompleted, entry.Status())

			grantKey := engine.NewKey(engine.KindGrant, coupon.GrantID(accountID, couponID))
			_, err = f.store.Get(ctx, grantKey)
			assert.NoError(t, err)
		}
	})

	t.Run("batch size bounds one drain pass", func(t *testing.T) {
		f := newFixture(t)
		couponID := f.seedQueueCoupon(t, 10)

		for i := 0; i < 5; i++ {
			_, err := f.service.Join(ctx, f.seedAccount(t), couponID)
			require.NoError(t, err)
		}

		require.NoError(t, f.service.Drain(ctx, couponID, 2))

		waiting, err := f.entries.ListWaiting(ctx, couponID, 0)
		require.NoError(t, err)
		assert.Len(t, waiting, 3)
	})

	t.Run("exhaustion fails the overflow entries with a reason", func(t *testing.T) {
		f := newFixture(t)
		couponID := f.seedQueueCoupon(t, 1)
		winner := f.seedAccount(t)
		loser := f.seedAccount(t)

		_, err := f.service.Join(ctx, winner, couponID)
		require.NoError(t, err)
		_, err = f.service.Join(ctx, loser, couponID)
		require.NoError(t, err)

		require.NoError(t, f.service.Drain(ctx, couponID, 10))

		winnerEntry, err := f.service.Status(ctx, winner, couponID)
		require.NoError(t, err)
		assert.Equal(t, coupon.QueueCompleted, winnerEntry.Status())

		loserEntry, err := f.service.Status(ctx, loser, couponID)
		require.NoError(t, err)
		assert.Equal(t, coupon.QueueFailed, loserEntry.Status())
		assert.Equal(t, "EXHAUSTED", loserEntry.FailedReason())
	})

	t.Run("an account already granted directly fails its queue entry", func(t *testing.T) {
		f := newFixture(t)
		couponID := f.seedQueueCoupon(t, 10)
		accountID := f.seedAccount(t)

		_, err := f.issuer.Issue(ctx, accountID, couponID)
		require.NoError(t, err)

		_, err = f.service.Join(ctx, accountID, couponID)
		require.NoError(t, err)
		require.NoError(t, f.service.Drain(ctx, couponID, 10))

		entry, err := f.service.Status(ctx, accountID, couponID)
		require.NoError(t, err)
		assert.Equal(t, coupon.QueueFailed, entry.Status())
		assert.Equal(t, "ALREADY_GRANTED", entry.FailedReason())
	})

	t.Run("drain all covers every issuable queue coupon", func(t *testing.T) {
		f := newFixture(t)
		couponA := f.seedQueueCoupon(t, 10)
		couponB := f.seedQueueCoupon(t, 10)
		accountID := f.seedAccount(t)

		_, err := f.service.Join(ctx, accountID, couponA)
		require.NoError(t, err)
		_, err = f.service.Join(ctx, accountID, couponB)
		require.NoError(t, err)

		require.NoError(t, f.service.DrainAll(ctx, 10))

		for _, couponID := range []uuid.UUID{couponA, couponB} {
			entry, statusErr := f.service.Status(ctx, accountID, couponID)
			require.NoError(t, statusErr)
			assert.Equal(t, coupon.QueueCompleted, entry.Status())
		}
	})
}

func TestRecomputePositions(t *testing.T) {
	ctx := context.Background()

	t.Run("closes gaps after a partial drain", func(t *testing.T) {
		f := newFixture(t)
		couponID := f.seedQueueCoupon(t, 10)
		accounts := []uuid.UUID{f.seedAccount(t), f.seedAccount(t), f.seedAccount(t)}

		for _, accountID := range accounts {
			_, err := f.service.Join(ctx, accountID, couponID)
			require.NoError(t, err)
		}

		// Drain only the head of the line.
		require.NoError(t, f.service.Drain(ctx, couponID, 1))
		require.NoError(t, f.service.RecomputePositions(ctx))

		second, err := f.service.Status(ctx, accounts[1], couponID)
		require.NoError(t, err)
		assert.Equal(t, 1, second.Position())

		third, err := f.service.Status(ctx, accounts[2], couponID)
		require.NoError(t, err)
		assert.Equal(t, 2, third.Position())
	})

	t.Run("terminal entries keep their final position", func(t *testing.T) {
		f := newFixture(t)
		couponID := f.seedQueueCoupon(t, 10)
		head := f.seedAccount(t)

		first, err := f.service.Join(ctx, head, couponID)
		require.NoError(t, err)
		_, err = f.service.Join(ctx, f.seedAccount(t), couponID)
		require.NoError(t, err)

		require.NoError(t, f.service.Drain(ctx, couponID, 1))
		require.NoError(t, f.service.RecomputePositions(ctx))

		done, err := f.service.Status(ctx, head, couponID)
		require.NoError(t, err)
		assert.Equal(t, coupon.QueueCompleted, done.Status())
		assert.Equal(t, first.Position(), done.Position())
	})
}
