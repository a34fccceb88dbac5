package vo

import "errors"

var ErrNonPositiveQuantity = errors.New("quantity must be positive")

type Quantity struct {
	value int
}

func NewQuantity(value int) (Quantity, error) {
	if value <= 0 {
		return Quantity{}, ErrNonPositiveQuantity
	}
	return Quantity{value: value}, nil
}

func (q Quantity) Value() int {
	return q.value
}
