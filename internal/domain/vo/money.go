package vo

import (
	"errors"
	"fmt"
)

var ErrNegativeMoney = errors.New("money cannot be negative")

// Money is an amount in integer currency units. Arithmetic never leaves
// negative amounts observable: Subtract reports underflow instead.
type Money struct {
	amount int64
}

func NewMoney(amount int64) (Money, error) {
	if amount < 0 {
		return Money{}, ErrNegativeMoney
	}
	return Money{amount: amount}, nil
}

func ZeroMoney() Money {
	return Money{}
}

func (m Money) Amount() int64 {
	return m.amount
}

func (m Money) IsZero() bool {
	return m.amount == 0
}

func (m Money) IsPositive() bool {
	return m.amount > 0
}

func (m Money) IsLessThan(other Money) bool {
	return m.amount < other.amount
}

func (m Money) IsGreaterThanOrEqual(other Money) bool {
	return m.amount >= other.amount
}

func (m Money) Add(other Money) Money {
	return Money{amount: m.amount + other.amount}
}

func (m Money) Subtract(other Money) (Money, error) {
	if m.amount < other.amount {
		return Money{}, ErrNegativeMoney
	}
	return Money{amount: m.amount - other.amount}, nil
}

// SubtractFloored clamps at zero instead of failing; used for
// "subtotal minus discount" where over-discounting just means free.
func (m Money) SubtractFloored(other Money) Money {
	if m.amount < other.amount {
		return Money{}
	}
	return Money{amount: m.amount - other.amount}
}

func (m Money) Multiply(n int) Money {
	return Money{amount: m.amount * int64(n)}
}

func (m Money) String() string {
	return fmt.Sprintf("%d", m.amount)
}
