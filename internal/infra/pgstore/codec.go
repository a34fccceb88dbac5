package pgstore

import (
	"encoding/json"
	"time"

	"commerce-core/internal/domain/account"
	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/domain/product"
	"commerce-core/internal/domain/vo"
	"commerce-core/internal/engine"
	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

// Aggregates are stored as JSONB documents; the codec translates between the
// documents and the domain entities' identity-accepting constructors.

type accountDoc struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

type productDoc struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     int64     `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
}

type couponDoc struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	DiscountRate   *int      `json:"discount_rate,omitempty"`
	DiscountAmount *int64    `json:"discount_amount,omitempty"`
	MinOrderAmount int64     `json:"min_order_amount"`
	TotalQuantity  int       `json:"total_quantity"`
	IssuedQuantity int       `json:"issued_quantity"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	UseQueue       bool      `json:"use_queue"`
}

type grantDoc struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	CouponID  uuid.UUID `json:"coupon_id"`
	Status    string    `json:"status"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func encode(kind engine.Kind, value any) ([]byte, error) {
	switch kind {
	case engine.KindAccount:
		a, ok := value.(*account.Account)
		if !ok {
			return nil, errs.Newf("encode: unexpected type %T for kind %s", value, kind)
		}
		return json.Marshal(accountDoc{
			ID:        a.ID(),
			Name:      a.Name(),
			Balance:   a.Balance().Amount(),
			CreatedAt: a.CreatedAt(),
		})

	case engine.KindProduct:
		p, ok := value.(*product.Product)
		if !ok {
			return nil, errs.Newf("encode: unexpected type %T for kind %s", value, kind)
		}
		return json.Marshal(productDoc{
			ID:        p.ID(),
			Name:      p.Name(),
			Category:  p.Category(),
			Price:     p.Price().Amount(),
			Stock:     p.Stock().Quantity(),
			CreatedAt: p.CreatedAt(),
		})

	case engine.KindCoupon:
		c, ok := value.(*coupon.Coupon)
		if !ok {
			return nil, errs.Newf("encode: unexpected type %T for kind %s", value, kind)
		}
		doc := couponDoc{
			ID:             c.ID(),
			Name:           c.Name(),
			MinOrderAmount: c.MinOrderAmount().Amount(),
			TotalQuantity:  c.TotalQuantity(),
			IssuedQuantity: c.IssuedQuantity(),
			StartsAt:       c.StartsAt(),
			EndsAt:         c.EndsAt(),
			UseQueue:       c.UseQueue(),
		}
		if c.Discount().IsRate() {
			rate := c.Discount().Rate().Percentage()
			doc.DiscountRate = &rate
		} else {
			amount := c.Discount().Amount().Amount()
			doc.DiscountAmount = &amount
		}
		return json.Marshal(doc)

	case engine.KindGrant:
		g, ok := value.(*coupon.Grant)
		if !ok {
			return nil, errs.Newf("encode: unexpected type %T for kind %s", value, kind)
		}
		return json.Marshal(grantDoc{
			ID:        g.ID(),
			AccountID: g.AccountID(),
			CouponID:  g.CouponID(),
			Status:    string(g.Status()),
			IssuedAt:  g.IssuedAt(),
			ExpiresAt: g.ExpiresAt(),
		})

	default:
		return nil, errs.Newf("encode: unknown kind %s", kind)
	}
}

func decode(kind engine.Kind, data []byte) (any, error) {
	switch kind {
	case engine.KindAccount:
		var doc accountDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errs.Wrap(err, "decode account")
		}
		balance, err := vo.NewMoney(doc.Balance)
		if err != nil {
			return nil, errs.Wrap(err, "decode account balance")
		}
		return account.Restore(doc.ID, doc.Name, balance, doc.CreatedAt), nil

	case engine.KindProduct:
		var doc productDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errs.Wrap(err, "decode product")
		}
		price, err := vo.NewMoney(doc.Price)
		if err != nil {
			return nil, errs.Wrap(err, "decode product price")
		}
		stock, err := product.NewStock(doc.Stock)
		if err != nil {
			return nil, errs.Wrap(err, "decode product stock")
		}
		return product.NewProduct(doc.ID, doc.Name, doc.Category, price, stock, doc.CreatedAt), nil

	case engine.KindCoupon:
		var doc couponDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errs.Wrap(err, "decode coupon")
		}
		minAmount, err := vo.NewMoney(doc.MinOrderAmount)
		if err != nil {
			return nil, errs.Wrap(err, "decode coupon minimum")
		}
		var discount coupon.Discount
		if doc.DiscountRate != nil {
			rate, rateErr := vo.NewDiscountRate(*doc.DiscountRate)
			if rateErr != nil {
				return nil, errs.Wrap(rateErr, "decode coupon rate")
			}
			discount = coupon.NewRateDiscount(rate)
		} else if doc.DiscountAmount != nil {
			amount, amountErr := vo.NewMoney(*doc.DiscountAmount)
			if amountErr != nil {
				return nil, errs.Wrap(amountErr, "decode coupon amount")
			}
			discount = coupon.NewAmountDiscount(amount)
		}
		return coupon.Restore(
			doc.ID, doc.Name, discount, minAmount,
			doc.TotalQuantity, doc.IssuedQuantity,
			doc.StartsAt, doc.EndsAt, doc.UseQueue,
		), nil

	case engine.KindGrant:
		var doc grantDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errs.Wrap(err, "decode grant")
		}
		return coupon.RestoreGrant(
			doc.ID, doc.AccountID, doc.CouponID,
			coupon.GrantStatus(doc.Status), doc.IssuedAt, doc.ExpiresAt,
		), nil

	default:
		return nil, errs.Newf("decode: unknown kind %s", kind)
	}
}
