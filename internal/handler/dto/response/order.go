package response

import (
	"time"

	"commerce-core/internal/domain/order"

	"github.com/google/uuid"
)

type OrderItemResponse struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unitPrice"`
	Subtotal  int64     `json:"subtotal"`
}

type OrderResponse struct {
	ID           uuid.UUID           `json:"id"`
	AccountID    uuid.UUID           `json:"accountId"`
	Items        []OrderItemResponse `json:"items"`
	GrantID      *uuid.UUID          `json:"grantId,omitempty"`
	Subtotal     int64               `json:"subtotal"`
	Discount     int64               `json:"discount"`
	Total        int64               `json:"total"`
	Status       string              `json:"status"`
	ShippingNote *string             `json:"shippingNote,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
}

func FromOrder(o *order.Order) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID(),
			Quantity:  item.Quantity().Value(),
			UnitPrice: item.UnitPrice().Amount(),
			Subtotal:  item.Subtotal().Amount(),
		})
	}

	resp := &OrderResponse{
		ID:        o.ID(),
		AccountID: o.AccountID(),
		Items:     items,
		GrantID:   o.GrantID(),
		Subtotal:  o.Subtotal().Amount(),
		Discount:  o.Discount().Amount(),
		Total:     o.Total().Amount(),
		Status:    string(o.Status()),
		CreatedAt: o.CreatedAt(),
	}
	if note := o.ShippingNote(); note != "" {
		resp.ShippingNote = &note
	}
	return resp
}
