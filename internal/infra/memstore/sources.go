package memstore

import (
	"context"
	"time"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/engine"
)

// CouponSource enumerates issuable coupons straight off the store.
type CouponSource struct {
	store *Store
}

func NewCouponSource(store *Store) *CouponSource {
	return &CouponSource{store: store}
}

func (s *CouponSource) ListIssuable(_ context.Context, now time.Time) ([]*coupon.Coupon, error) {
	var out []*coupon.Coupon
	for _, value := range s.store.ListKind(engine.KindCoupon) {
		cpn, ok := value.(*coupon.Coupon)
		if !ok {
			continue
		}
		if cpn.IsIssuable(now) {
			out = append(out, cpn)
		}
	}
	return out, nil
}

// GrantSource enumerates grants for the expiry sweep.
type GrantSource struct {
	store *Store
}

func NewGrantSource(store *Store) *GrantSource {
	return &GrantSource{store: store}
}

func (s *GrantSource) ListGrants(_ context.Context) ([]*coupon.Grant, error) {
	var out []*coupon.Grant
	for _, value := range s.store.ListKind(engine.KindGrant) {
		if g, ok := value.(*coupon.Grant); ok {
			out = append(out, g)
		}
	}
	return out, nil
}
