package commands

import (
	"context"
	"errors"
	"log/slog"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/engine"
	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrCouponNotFound    = errs.New("coupon not found")
	ErrCouponExhausted   = errs.New("coupon quota exhausted")
	ErrCouponNotInWindow = errs.New("coupon is not open for issuance")
	ErrAlreadyGranted    = errs.New("coupon already granted to this account")
	ErrQueueOnly         = errs.New("coupon is issued through the admission queue")
)

type CouponCommands interface {
	// IssueDirect serves client calls and refuses queue-mediated coupons.
	IssueDirect(ctx context.Context, accountID, couponID uuid.UUID) (*coupon.Grant, error)
	// Issue allocates one unit of quota and creates the grant; shared by the
	// direct path and the queue drain.
	Issue(ctx context.Context, accountID, couponID uuid.UUID) (*coupon.Grant, error)
	// ExpireGrants sweeps unused grants past their expiry. Returns the count.
	ExpireGrants(ctx context.Context) (int, error)
}

type couponCommandsImpl struct {
	allocator engine.Allocator
	store     engine.Store
	grants    GrantSource
	clock     clock.Clock
	logger    *slog.Logger
}

func NewCouponCommands(
	allocator engine.Allocator,
	store engine.Store,
	grants GrantSource,
	clk clock.Clock,
	logger *slog.Logger,
) CouponCommands {
	return &couponCommandsImpl{
		allocator: allocator,
		store:     store,
		grants:    grants,
		clock:     clk,
		logger:    logger,
	}
}

func (c *couponCommandsImpl) IssueDirect(ctx context.Context, accountID, couponID uuid.UUID) (*coupon.Grant, error) {
	cpn, err := c.getCoupon(ctx, couponID)
	if err != nil {
		return nil, err
	}
	if cpn.UseQueue() {
		return nil, ErrQueueOnly
	}
	return c.Issue(ctx, accountID, couponID)
}

func (c *couponCommandsImpl) Issue(ctx context.Context, accountID, couponID uuid.UUID) (*coupon.Grant, error) {
	grantKey := engine.NewKey(engine.KindGrant, coupon.GrantID(accountID, couponID))

	// Cheap pre-check; the Insert below is the authoritative guard.
	if _, err := c.store.Get(ctx, grantKey); err == nil {
		return nil, ErrAlreadyGranted
	} else if !errors.Is(err, engine.ErrNotFound) {
		return nil, err
	}

	now := c.clock.Now()
	couponKey := engine.NewKey(engine.KindCoupon, couponID)

	_, err := engine.Allocate(ctx, c.allocator, couponKey, func(current *coupon.Coupon) (*coupon.Coupon, error) {
		next := current.Clone()
		if incErr := next.IncreaseIssued(now); incErr != nil {
			return nil, incErr
		}
		return next, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrNotFound):
			return nil, errs.Mark(err, ErrCouponNotFound)
		case errors.Is(err, coupon.ErrExhausted):
			return nil, errs.Mark(err, ErrCouponExhausted)
		case errors.Is(err, coupon.ErrOutsideWindow):
			return nil, errs.Mark(err, ErrCouponNotInWindow)
		default:
			return nil, err
		}
	}

	grant := coupon.NewGrant(accountID, couponID, now)
	if err := c.store.Insert(ctx, grantKey, grant); err != nil {
		// The quota unit was consumed but the grant lost the uniqueness
		// race (or storage failed); hand the unit back.
		c.releaseQuota(ctx, couponKey)
		if errors.Is(err, engine.ErrDuplicate) {
			return nil, errs.Mark(err, ErrAlreadyGranted)
		}
		return nil, errs.Wrap(err, "create grant")
	}

	return grant, nil
}

func (c *couponCommandsImpl) ExpireGrants(ctx context.Context) (int, error) {
	grants, err := c.grants.ListGrants(ctx)
	if err != nil {
		return 0, err
	}

	now := c.clock.Now()
	expired := 0
	for _, g := range grants {
		if g.Status() != coupon.GrantUnused || !g.IsExpiredAt(now) {
			continue
		}

		key := engine.NewKey(engine.KindGrant, g.ID())
		_, err := engine.Allocate(ctx, c.allocator, key, func(current *coupon.Grant) (*coupon.Grant, error) {
			next := current.Clone()
			if next.Status() != coupon.GrantUnused {
				return current, nil
			}
			next.Expire()
			return next, nil
		})
		if err != nil {
			c.logger.Error("grant expiry sweep failed for entry",
				"grant_id", g.ID(), "error", err.Error())
			continue
		}
		expired++
	}
	return expired, nil
}

func (c *couponCommandsImpl) getCoupon(ctx context.Context, couponID uuid.UUID) (*coupon.Coupon, error) {
	snapshot, err := c.store.Get(ctx, engine.NewKey(engine.KindCoupon, couponID))
	if err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			return nil, errs.Mark(err, ErrCouponNotFound)
		}
		return nil, err
	}
	cpn, ok := snapshot.Value.(*coupon.Coupon)
	if !ok {
		return nil, errs.Newf("unexpected aggregate type %T for coupon %s", snapshot.Value, couponID)
	}
	return cpn, nil
}

// releaseQuota compensates a consumed quota unit. A failure here leaves the
// counter overstated and must be reconciled by hand, so it is logged loudly.
func (c *couponCommandsImpl) releaseQuota(ctx context.Context, couponKey engine.Key) {
	_, err := engine.Allocate(ctx, c.allocator, couponKey, func(current *coupon.Coupon) (*coupon.Coupon, error) {
		next := current.Clone()
		if decErr := next.DecreaseIssued(); decErr != nil {
			return nil, decErr
		}
		return next, nil
	})
	if err != nil {
		c.logger.Error("coupon quota compensation failed; manual reconciliation required",
			"key", couponKey.String(), "error", err.Error())
	}
}
