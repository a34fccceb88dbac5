package order

import (
	"errors"
	"time"

	"commerce-core/internal/domain/vo"

	"github.com/google/uuid"
)

var ErrNoItems = errors.New("order must contain at least one item")

type Status string

const (
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

type Item struct {
	productID uuid.UUID
	quantity  vo.Quantity
	unitPrice vo.Money
}

func NewItem(productID uuid.UUID, quantity vo.Quantity, unitPrice vo.Money) Item {
	return Item{
		productID: productID,
		quantity:  quantity,
		unitPrice: unitPrice,
	}
}

func (i Item) ProductID() uuid.UUID  { return i.productID }
func (i Item) Quantity() vo.Quantity { return i.quantity }
func (i Item) UnitPrice() vo.Money   { return i.unitPrice }

func (i Item) Subtotal() vo.Money {
	return i.unitPrice.Multiply(i.quantity.Value())
}

// Order records one committed unit of work: stock decremented, balance
// deducted, and optionally a coupon grant consumed.
type Order struct {
	id           uuid.UUID
	accountID    uuid.UUID
	items        []Item
	grantID      *uuid.UUID
	subtotal     vo.Money
	discount     vo.Money
	total        vo.Money
	status       Status
	shippingNote string
	createdAt    time.Time
}

func NewOrder(
	accountID uuid.UUID,
	items []Item,
	grantID *uuid.UUID,
	subtotal, discount, total vo.Money,
	shippingNote string,
	createdAt time.Time,
) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	return &Order{
		id:           uuid.New(),
		accountID:    accountID,
		items:        items,
		grantID:      grantID,
		subtotal:     subtotal,
		discount:     discount,
		total:        total,
		status:       StatusPaid,
		shippingNote: shippingNote,
		createdAt:    createdAt,
	}, nil
}

// Restore rehydrates a persisted order without re-running creation checks.
func Restore(
	id, accountID uuid.UUID,
	items []Item,
	grantID *uuid.UUID,
	subtotal, discount, total vo.Money,
	status Status,
	shippingNote string,
	createdAt time.Time,
) *Order {
	return &Order{
		id:           id,
		accountID:    accountID,
		items:        items,
		grantID:      grantID,
		subtotal:     subtotal,
		discount:     discount,
		total:        total,
		status:       status,
		shippingNote: shippingNote,
		createdAt:    createdAt,
	}
}

func (o *Order) Cancel() {
	o.status = StatusCancelled
}

func (o *Order) ID() uuid.UUID        { return o.id }
func (o *Order) AccountID() uuid.UUID { return o.accountID }
func (o *Order) Items() []Item        { return o.items }
func (o *Order) GrantID() *uuid.UUID  { return o.grantID }
func (o *Order) Subtotal() vo.Money   { return o.subtotal }
func (o *Order) Discount() vo.Money   { return o.discount }
func (o *Order) Total() vo.Money      { return o.total }
func (o *Order) Status() Status       { return o.status }
func (o *Order) ShippingNote() string { return o.shippingNote }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
