package product

import (
	"errors"

	"commerce-core/internal/domain/vo"
)

var (
	ErrNegativeStock     = errors.New("stock cannot be negative")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Stock is a non-negative unit count. Decrease is all-or-nothing: it either
// yields the reduced stock or reports insufficiency without partial effect.
type Stock struct {
	quantity int
}

func NewStock(quantity int) (Stock, error) {
	if quantity < 0 {
		return Stock{}, ErrNegativeStock
	}
	return Stock{quantity: quantity}, nil
}

func (s Stock) Quantity() int {
	return s.quantity
}

func (s Stock) Decrease(q vo.Quantity) (Stock, error) {
	next := s.quantity - q.Value()
	if next < 0 {
		return Stock{}, ErrInsufficientStock
	}
	return Stock{quantity: next}, nil
}

func (s Stock) Increase(q vo.Quantity) Stock {
	return Stock{quantity: s.quantity + q.Value()}
}

func (s Stock) IsSufficientFor(required vo.Quantity) bool {
	return s.quantity >= required.Value()
}
