package coupon

import (
	"errors"
	"time"

	"commerce-core/internal/domain/vo"

	"github.com/google/uuid"
)

var (
	ErrNegativeQuota = errors.New("total quantity must be zero or more")
	ErrExhausted     = errors.New("coupon quota exhausted")
	ErrOutsideWindow = errors.New("coupon is outside its issuance window")
	ErrNothingIssued = errors.New("no issued coupons to release")
	ErrBelowMinimum  = errors.New("order amount below coupon minimum")
)

const (
	// Grants expire this long after issuance.
	DefaultValidityDays = 30

	// At most one grant per (account, coupon) pair.
	MaxIssuancePerAccount = 1
)

// Coupon is the contended issuance counter: issuedQuantity only moves through
// the allocation engine, and never exceeds totalQuantity or drops below zero.
type Coupon struct {
	id             uuid.UUID
	name           string
	discount       Discount
	minOrderAmount vo.Money
	totalQuantity  int
	issuedQuantity int
	startsAt       time.Time
	endsAt         time.Time
	useQueue       bool
}

func NewCoupon(
	id uuid.UUID,
	name string,
	discount Discount,
	minOrderAmount vo.Money,
	totalQuantity int,
	startsAt, endsAt time.Time,
	useQueue bool,
) (*Coupon, error) {
	if totalQuantity < 0 {
		return nil, ErrNegativeQuota
	}
	return &Coupon{
		id:             id,
		name:           name,
		discount:       discount,
		minOrderAmount: minOrderAmount,
		totalQuantity:  totalQuantity,
		issuedQuantity: 0,
		startsAt:       startsAt,
		endsAt:         endsAt,
		useQueue:       useQueue,
	}, nil
}

func Restore(
	id uuid.UUID,
	name string,
	discount Discount,
	minOrderAmount vo.Money,
	totalQuantity, issuedQuantity int,
	startsAt, endsAt time.Time,
	useQueue bool,
) *Coupon {
	return &Coupon{
		id:             id,
		name:           name,
		discount:       discount,
		minOrderAmount: minOrderAmount,
		totalQuantity:  totalQuantity,
		issuedQuantity: issuedQuantity,
		startsAt:       startsAt,
		endsAt:         endsAt,
		useQueue:       useQueue,
	}
}

// IsIssuable reports whether now is within [startsAt, endsAt) and quota remains.
func (c *Coupon) IsIssuable(now time.Time) bool {
	return c.IsWithinWindow(now) && c.issuedQuantity < c.totalQuantity
}

func (c *Coupon) IsWithinWindow(now time.Time) bool {
	return !now.Before(c.startsAt) && now.Before(c.endsAt)
}

func (c *Coupon) IncreaseIssued(now time.Time) error {
	if !c.IsWithinWindow(now) {
		return ErrOutsideWindow
	}
	if c.issuedQuantity >= c.totalQuantity {
		return ErrExhausted
	}
	c.issuedQuantity++
	return nil
}

// DecreaseIssued compensates a failed step after a successful increment.
// It is never valid as a standalone operation.
func (c *Coupon) DecreaseIssued() error {
	if c.issuedQuantity <= 0 {
		return ErrNothingIssued
	}
	c.issuedQuantity--
	return nil
}

// CalculateDiscount returns zero when the order misses the minimum amount.
func (c *Coupon) CalculateDiscount(orderAmount vo.Money) vo.Money {
	if orderAmount.IsLessThan(c.minOrderAmount) {
		return vo.ZeroMoney()
	}
	return c.discount.Apply(orderAmount)
}

func (c *Coupon) ValidateMinimum(orderAmount vo.Money) error {
	if orderAmount.IsLessThan(c.minOrderAmount) {
		return ErrBelowMinimum
	}
	return nil
}

func (c *Coupon) Clone() *Coupon {
	cp := *c
	return &cp
}

func (c *Coupon) ID() uuid.UUID            { return c.id }
func (c *Coupon) Name() string             { return c.name }
func (c *Coupon) Discount() Discount       { return c.discount }
func (c *Coupon) MinOrderAmount() vo.Money { return c.minOrderAmount }
func (c *Coupon) TotalQuantity() int       { return c.totalQuantity }
func (c *Coupon) IssuedQuantity() int      { return c.issuedQuantity }
func (c *Coupon) StartsAt() time.Time      { return c.startsAt }
func (c *Coupon) EndsAt() time.Time        { return c.endsAt }
func (c *Coupon) UseQueue() bool           { return c.useQueue }
