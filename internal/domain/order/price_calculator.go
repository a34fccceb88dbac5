package order

import "commerce-core/internal/domain/vo"

// PriceCalculator derives subtotal and final total from line items and an
// optional discount. The total is floored at zero.
type PriceCalculator interface {
	Subtotal(items []Item) vo.Money
	Total(subtotal, discount vo.Money) vo.Money
}

type DefaultPriceCalculator struct{}

func NewDefaultPriceCalculator() *DefaultPriceCalculator {
	return &DefaultPriceCalculator{}
}

func (c *DefaultPriceCalculator) Subtotal(items []Item) vo.Money {
	sum := vo.ZeroMoney()
	for _, item := range items {
		sum = sum.Add(item.Subtotal())
	}
	return sum
}

func (c *DefaultPriceCalculator) Total(subtotal, discount vo.Money) vo.Money {
	return subtotal.SubtractFloored(discount)
}
