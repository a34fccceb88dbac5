package account

import (
	"errors"
	"time"

	"commerce-core/internal/domain/vo"

	"github.com/google/uuid"
)

var (
	ErrNonPositiveAmount   = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Account holds a user's balance. All mutation goes through the allocation
// engine keyed by the account id; the entity only enforces local invariants.
type Account struct {
	id        uuid.UUID
	name      string
	balance   vo.Money
	createdAt time.Time
}

func NewAccount(id uuid.UUID, name string, createdAt time.Time) *Account {
	return &Account{
		id:        id,
		name:      name,
		balance:   vo.ZeroMoney(),
		createdAt: createdAt,
	}
}

func Restore(id uuid.UUID, name string, balance vo.Money, createdAt time.Time) *Account {
	return &Account{
		id:        id,
		name:      name,
		balance:   balance,
		createdAt: createdAt,
	}
}

func (a *Account) Charge(amount vo.Money) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	a.balance = a.balance.Add(amount)
	return nil
}

func (a *Account) Deduct(amount vo.Money) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if a.balance.IsLessThan(amount) {
		return ErrInsufficientBalance
	}
	next, err := a.balance.Subtract(amount)
	if err != nil {
		return err
	}
	a.balance = next
	return nil
}

func (a *Account) HasEnoughBalance(required vo.Money) bool {
	return a.balance.IsGreaterThanOrEqual(required)
}

// Clone supports copy-on-write mutation under the optimistic strategy.
func (a *Account) Clone() *Account {
	c := *a
	return &c
}

func (a *Account) ID() uuid.UUID        { return a.id }
func (a *Account) Name() string         { return a.name }
func (a *Account) Balance() vo.Money    { return a.balance }
func (a *Account) CreatedAt() time.Time { return a.createdAt }
