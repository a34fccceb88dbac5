//go:build unit

package order_test

import (
	"testing"
	"time"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/domain/vo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(t *testing.T, amount int64) vo.Money {
	t.Helper()
	m, err := vo.NewMoney(amount)
	require.NoError(t, err)
	return m
}

func item(t *testing.T, qty int, unitPrice int64) order.Item {
	t.Helper()
	q, err := vo.NewQuantity(qty)
	require.NoError(t, err)
	return order.NewItem(uuid.New(), q, money(t, unitPrice))
}

func TestNewOrder(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("requires at least one item", func(t *testing.T) {
		_, err := order.NewOrder(uuid.New(), nil, nil, vo.ZeroMoney(), vo.ZeroMoney(), vo.ZeroMoney(), "", now)
		assert.ErrorIs(t, err, order.ErrNoItems)
	})

	t.Run("starts paid and can be cancelled", func(t *testing.T) {
		o, err := order.NewOrder(
			uuid.New(), []order.Item{item(t, 2, 500)}, nil,
			money(t, 1000), vo.ZeroMoney(), money(t, 1000), "leave at door", now,
		)
		require.NoError(t, err)
		assert.Equal(t, order.StatusPaid, o.Status())
		assert.NotEqual(t, uuid.Nil, o.ID())

		o.Cancel()
		assert.Equal(t, order.StatusCancelled, o.Status())
	})
}

func TestRestore(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	id := uuid.New()
	grantID := uuid.New()
	items := []order.Item{item(t, 2, 500)}

	o := order.Restore(
		id, uuid.New(), items, &grantID,
		money(t, 1000), money(t, 100), money(t, 900),
		order.StatusCancelled, "leave at door", now,
	)

	assert.Equal(t, id, o.ID())
	assert.Equal(t, order.StatusCancelled, o.Status())
	assert.Equal(t, &grantID, o.GrantID())
	assert.Equal(t, int64(900), o.Total().Amount())
	assert.Equal(t, items, o.Items())
	assert.Equal(t, now, o.CreatedAt())
}

func TestItemSubtotal(t *testing.T) {
	i := item(t, 3, 250)
	assert.Equal(t, int64(750), i.Subtotal().Amount())
}

func TestDefaultPriceCalculator(t *testing.T) {
	calc := order.NewDefaultPriceCalculator()

	t.Run("subtotal sums line items", func(t *testing.T) {
		items := []order.Item{item(t, 2, 500), item(t, 1, 300)}
		assert.Equal(t, int64(1300), calc.Subtotal(items).Amount())
	})

	t.Run("total floors at zero when discount exceeds subtotal", func(t *testing.T) {
		assert.Equal(t, int64(0), calc.Total(money(t, 100), money(t, 500)).Amount())
		assert.Equal(t, int64(400), calc.Total(money(t, 500), money(t, 100)).Amount())
	})
}
