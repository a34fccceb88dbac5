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

func TestGrantID(t *testing.T) {
	accountID := uuid.New()
	couponID := uuid.New()

	t.Run("deterministic per pair", func(t *testing.T) {
		assert.Equal(t, coupon.GrantID(accountID, couponID), coupon.GrantID(accountID, couponID))
	})

	t.Run("distinct across pairs", func(t *testing.T) {
		other := uuid.New()
		assert.NotEqual(t, coupon.GrantID(accountID, couponID), coupon.GrantID(other, couponID))
		assert.NotEqual(t, coupon.GrantID(accountID, couponID), coupon.GrantID(accountID, other))
	})

	t.Run("order of account and coupon matters", func(t *testing.T) {
		assert.NotEqual(t, coupon.GrantID(accountID, couponID), coupon.GrantID(couponID, accountID))
	})
}

func TestGrantLifecycle(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	accountID := uuid.New()
	couponID := uuid.New()

	t.Run("new grant is unused and expires after the validity period", func(t *testing.T) {
		g := coupon.NewGrant(accountID, couponID, issuedAt)
		assert.Equal(t, coupon.GrantUnused, g.Status())
		assert.Equal(t, issuedAt.AddDate(0, 0, coupon.DefaultValidityDays), g.ExpiresAt())
		assert.True(t, g.BelongsTo(accountID))
		assert.False(t, g.BelongsTo(couponID))
	})

	t.Run("use then cancel round trips", func(t *testing.T) {
		g := coupon.NewGrant(accountID, couponID, issuedAt)
		require.NoError(t, g.Use(issuedAt.Add(time.Hour)))
		assert.Equal(t, coupon.GrantUsed, g.Status())

		require.NoError(t, g.Cancel())
		assert.Equal(t, coupon.GrantUnused, g.Status())
	})

	t.Run("double use is rejected", func(t *testing.T) {
		g := coupon.NewGrant(accountID, couponID, issuedAt)
		require.NoError(t, g.Use(issuedAt))
		assert.ErrorIs(t, g.Use(issuedAt), coupon.ErrGrantNotUnused)
	})

	t.Run("use after expiry is rejected", func(t *testing.T) {
		g := coupon.NewGrant(accountID, couponID, issuedAt)
		late := g.ExpiresAt().Add(time.Second)
		assert.ErrorIs(t, g.Use(late), coupon.ErrGrantExpired)
	})

	t.Run("cancel requires a used grant", func(t *testing.T) {
		g := coupon.NewGrant(accountID, couponID, issuedAt)
		assert.ErrorIs(t, g.Cancel(), coupon.ErrGrantNotUsed)
	})

	t.Run("expire is terminal", func(t *testing.T) {
		g := coupon.NewGrant(accountID, couponID, issuedAt)
		g.Expire()
		assert.Equal(t, coupon.GrantExpired, g.Status())
		assert.ErrorIs(t, g.Use(issuedAt), coupon.ErrGrantNotUnused)
	})

	t.Run("expiry boundary is exclusive", func(t *testing.T) {
		g := coupon.NewGrant(accountID, couponID, issuedAt)
		assert.False(t, g.IsExpiredAt(g.ExpiresAt()))
		assert.True(t, g.IsExpiredAt(g.ExpiresAt().Add(time.Nanosecond)))
	})
}
