//go:build unit

package vo_test

import (
	"testing"

	"commerce-core/internal/domain/vo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	t.Run("rejects negative amounts", func(t *testing.T) {
		_, err := vo.NewMoney(-1)
		assert.ErrorIs(t, err, vo.ErrNegativeMoney)
	})

	t.Run("zero is valid", func(t *testing.T) {
		m, err := vo.NewMoney(0)
		require.NoError(t, err)
		assert.True(t, m.IsZero())
		assert.False(t, m.IsPositive())
	})

	t.Run("subtract reports underflow", func(t *testing.T) {
		small, err := vo.NewMoney(100)
		require.NoError(t, err)
		large, err := vo.NewMoney(200)
		require.NoError(t, err)

		_, err = small.Subtract(large)
		assert.ErrorIs(t, err, vo.ErrNegativeMoney)

		got, err := large.Subtract(small)
		require.NoError(t, err)
		assert.Equal(t, int64(100), got.Amount())
	})

	t.Run("subtract floored clamps at zero", func(t *testing.T) {
		small, err := vo.NewMoney(100)
		require.NoError(t, err)
		large, err := vo.NewMoney(200)
		require.NoError(t, err)

		assert.Equal(t, int64(0), small.SubtractFloored(large).Amount())
		assert.Equal(t, int64(100), large.SubtractFloored(small).Amount())
	})

	t.Run("comparisons", func(t *testing.T) {
		a, err := vo.NewMoney(100)
		require.NoError(t, err)
		b, err := vo.NewMoney(200)
		require.NoError(t, err)

		assert.True(t, a.IsLessThan(b))
		assert.False(t, b.IsLessThan(a))
		assert.True(t, b.IsGreaterThanOrEqual(a))
		assert.True(t, a.IsGreaterThanOrEqual(a))
	})

	t.Run("multiply", func(t *testing.T) {
		m, err := vo.NewMoney(250)
		require.NoError(t, err)
		assert.Equal(t, int64(750), m.Multiply(3).Amount())
	})
}

func TestQuantity(t *testing.T) {
	cases := []struct {
		name  string
		value int
		errIs error
	}{
		{name: "positive value", value: 1},
		{name: "large value", value: 10000},
		{name: "zero", value: 0, errIs: vo.ErrNonPositiveQuantity},
		{name: "negative", value: -5, errIs: vo.ErrNonPositiveQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := vo.NewQuantity(tc.value)
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.value, q.Value())
		})
	}
}

func TestDiscountRate(t *testing.T) {
	t.Run("bounds", func(t *testing.T) {
		cases := []struct {
			name       string
			percentage int
			errIs      error
		}{
			{name: "zero percent", percentage: 0},
			{name: "full discount", percentage: 100},
			{name: "negative", percentage: -1, errIs: vo.ErrInvalidDiscountRate},
			{name: "above hundred", percentage: 101, errIs: vo.ErrInvalidDiscountRate},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := vo.NewDiscountRate(tc.percentage)
				if tc.errIs != nil {
					assert.ErrorIs(t, err, tc.errIs)
					return
				}
				require.NoError(t, err)
			})
		}
	})

	t.Run("calculates truncated percentage", func(t *testing.T) {
		rate, err := vo.NewDiscountRate(10)
		require.NoError(t, err)
		amount, err := vo.NewMoney(999)
		require.NoError(t, err)

		assert.Equal(t, int64(99), rate.CalculateDiscountAmount(amount).Amount())
	})
}
