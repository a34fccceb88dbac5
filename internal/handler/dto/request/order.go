package request

import (
	"strings"

	"commerce-core/internal/usecase/commands"

	"github.com/google/uuid"
)

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

type PlaceOrderRequest struct {
	AccountID    uuid.UUID          `json:"account_id" binding:"required"`
	Items        []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	GrantID      *uuid.UUID         `json:"grant_id,omitempty"`
	ShippingNote *string            `json:"shipping_note,omitempty"`
}

func (r PlaceOrderRequest) LineItems() []commands.LineItem {
	items := make([]commands.LineItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, commands.LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return items
}

func (r PlaceOrderRequest) GetShippingNote() string {
	if r.ShippingNote == nil {
		return ""
	}
	return strings.TrimSpace(*r.ShippingNote)
}
