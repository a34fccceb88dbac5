package vo

import (
	"errors"
	"fmt"
)

var ErrInvalidDiscountRate = errors.New("discount rate must be between 0 and 100")

// DiscountRate is a whole percentage in [0, 100].
type DiscountRate struct {
	percentage int
}

func NewDiscountRate(percentage int) (DiscountRate, error) {
	if percentage < 0 || percentage > 100 {
		return DiscountRate{}, ErrInvalidDiscountRate
	}
	return DiscountRate{percentage: percentage}, nil
}

func (r DiscountRate) Percentage() int {
	return r.percentage
}

func (r DiscountRate) CalculateDiscountAmount(amount Money) Money {
	return Money{amount: amount.amount * int64(r.percentage) / 100}
}

func (r DiscountRate) String() string {
	return fmt.Sprintf("%d%%", r.percentage)
}
