package coupon

import (
	"errors"

	"commerce-core/internal/domain/vo"
)

var ErrInvalidDiscount = errors.New("discount must be either a rate or a fixed amount")

// Discount is either a percentage rate or a fixed amount, never both.
type Discount struct {
	rate   *vo.DiscountRate
	amount *vo.Money
}

func NewRateDiscount(rate vo.DiscountRate) Discount {
	return Discount{rate: &rate}
}

func NewAmountDiscount(amount vo.Money) Discount {
	return Discount{amount: &amount}
}

func NewDiscount(rate *vo.DiscountRate, amount *vo.Money) (Discount, error) {
	if (rate == nil) == (amount == nil) {
		return Discount{}, ErrInvalidDiscount
	}
	return Discount{rate: rate, amount: amount}, nil
}

func (d Discount) IsRate() bool {
	return d.rate != nil
}

func (d Discount) Rate() vo.DiscountRate {
	if d.rate != nil {
		return *d.rate
	}
	return vo.DiscountRate{}
}

func (d Discount) Amount() vo.Money {
	if d.amount != nil {
		return *d.amount
	}
	return vo.ZeroMoney()
}

func (d Discount) Apply(orderAmount vo.Money) vo.Money {
	if d.rate != nil {
		return d.rate.CalculateDiscountAmount(orderAmount)
	}
	if d.amount != nil {
		return *d.amount
	}
	return vo.ZeroMoney()
}
