package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"commerce-core/internal/domain/account"
	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/domain/product"
	"commerce-core/internal/domain/vo"
	"commerce-core/internal/engine"
	"commerce-core/internal/infra/memstore"
	"commerce-core/internal/pkg/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// fixture wires the command layer against the in-memory store with the
// exclusive strategy, the same shape the bootstrap assembles.
type fixture struct {
	store     *memstore.Store
	allocator engine.Allocator
	orders    *memstore.OrderRepository
	clock     *clock.MockClock
	logger    *slog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.NewStore()
	return &fixture{
		store:     store,
		allocator: engine.NewExclusiveAllocator(store, store, 5*time.Second),
		orders:    memstore.NewOrderRepository(),
		clock:     clock.NewMockClock(testNow),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (f *fixture) seedAccount(t *testing.T, balance int64) uuid.UUID {
	t.Helper()
	id := uuid.New()
	m, err := vo.NewMoney(balance)
	require.NoError(t, err)
	f.store.Seed(engine.NewKey(engine.KindAccount, id), account.Restore(id, "tester", m, testNow))
	return id
}

func (f *fixture) seedProduct(t *testing.T, price int64, stock int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	m, err := vo.NewMoney(price)
	require.NoError(t, err)
	s, err := product.NewStock(stock)
	require.NoError(t, err)
	f.store.Seed(engine.NewKey(engine.KindProduct, id), product.NewProduct(id, "widget", "misc", m, s, testNow))
	return id
}

func (f *fixture) seedCoupon(t *testing.T, quota int, useQueue bool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	rate, err := vo.NewDiscountRate(10)
	require.NoError(t, err)
	minAmount, err := vo.NewMoney(0)
	require.NoError(t, err)
	cpn, err := coupon.NewCoupon(
		id, "promo", coupon.NewRateDiscount(rate), minAmount,
		quota, testNow.Add(-time.Hour), testNow.Add(time.Hour), useQueue,
	)
	require.NoError(t, err)
	f.store.Seed(engine.NewKey(engine.KindCoupon, id), cpn)
	return id
}

func (f *fixture) getAccount(t *testing.T, id uuid.UUID) *account.Account {
	t.Helper()
	snapshot, err := f.store.Get(context.Background(), engine.NewKey(engine.KindAccount, id))
	require.NoError(t, err)
	return snapshot.Value.(*account.Account)
}

func (f *fixture) getProduct(t *testing.T, id uuid.UUID) *product.Product {
	t.Helper()
	snapshot, err := f.store.Get(context.Background(), engine.NewKey(engine.KindProduct, id))
	require.NoError(t, err)
	return snapshot.Value.(*product.Product)
}

func (f *fixture) getCoupon(t *testing.T, id uuid.UUID) *coupon.Coupon {
	t.Helper()
	snapshot, err := f.store.Get(context.Background(), engine.NewKey(engine.KindCoupon, id))
	require.NoError(t, err)
	return snapshot.Value.(*coupon.Coupon)
}

func keyForGrant(id uuid.UUID) engine.Key {
	return engine.NewKey(engine.KindGrant, id)
}

func (f *fixture) getGrant(t *testing.T, id uuid.UUID) *coupon.Grant {
	t.Helper()
	snapshot, err := f.store.Get(context.Background(), engine.NewKey(engine.KindGrant, id))
	require.NoError(t, err)
	return snapshot.Value.(*coupon.Grant)
}
