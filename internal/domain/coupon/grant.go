package coupon

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrGrantNotUnused = errors.New("grant has already been used or expired")
	ErrGrantNotUsed   = errors.New("only a used grant can be cancelled")
	ErrGrantExpired   = errors.New("grant has expired")
)

type GrantStatus string

const (
	GrantUnused  GrantStatus = "UNUSED"
	GrantUsed    GrantStatus = "USED"
	GrantExpired GrantStatus = "EXPIRED"
)

// grantNamespace seeds the deterministic grant id so that two racing issuances
// for the same (account, coupon) pair collide on insert instead of duplicating.
var grantNamespace = uuid.MustParse("9f2c1af5-7b83-4c21-a2bd-6e1f4f1f9a77")

func GrantID(accountID, couponID uuid.UUID) uuid.UUID {
	name := make([]byte, 0, 32)
	name = append(name, accountID[:]...)
	name = append(name, couponID[:]...)
	return uuid.NewSHA1(grantNamespace, name)
}

// Grant is a user's claim on one unit of a coupon's quota ("user coupon").
type Grant struct {
	id        uuid.UUID
	accountID uuid.UUID
	couponID  uuid.UUID
	status    GrantStatus
	issuedAt  time.Time
	expiresAt time.Time
}

func NewGrant(accountID, couponID uuid.UUID, issuedAt time.Time) *Grant {
	return &Grant{
		id:        GrantID(accountID, couponID),
		accountID: accountID,
		couponID:  couponID,
		status:    GrantUnused,
		issuedAt:  issuedAt,
		expiresAt: issuedAt.AddDate(0, 0, DefaultValidityDays),
	}
}

func RestoreGrant(id, accountID, couponID uuid.UUID, status GrantStatus, issuedAt, expiresAt time.Time) *Grant {
	return &Grant{
		id:        id,
		accountID: accountID,
		couponID:  couponID,
		status:    status,
		issuedAt:  issuedAt,
		expiresAt: expiresAt,
	}
}

func (g *Grant) Use(now time.Time) error {
	if g.status != GrantUnused {
		return ErrGrantNotUnused
	}
	if now.After(g.expiresAt) {
		return ErrGrantExpired
	}
	g.status = GrantUsed
	return nil
}

// Cancel reverts the most recent Use; it is the compensation path only.
func (g *Grant) Cancel() error {
	if g.status != GrantUsed {
		return ErrGrantNotUsed
	}
	g.status = GrantUnused
	return nil
}

// Expire is terminal and one-way.
func (g *Grant) Expire() {
	g.status = GrantExpired
}

func (g *Grant) IsExpiredAt(now time.Time) bool {
	return now.After(g.expiresAt)
}

func (g *Grant) BelongsTo(accountID uuid.UUID) bool {
	return g.accountID == accountID
}

func (g *Grant) Clone() *Grant {
	c := *g
	return &c
}

func (g *Grant) ID() uuid.UUID        { return g.id }
func (g *Grant) AccountID() uuid.UUID { return g.accountID }
func (g *Grant) CouponID() uuid.UUID  { return g.couponID }
func (g *Grant) Status() GrantStatus  { return g.status }
func (g *Grant) IssuedAt() time.Time  { return g.issuedAt }
func (g *Grant) ExpiresAt() time.Time { return g.expiresAt }
