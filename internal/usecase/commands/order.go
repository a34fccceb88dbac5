package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sort"

	"commerce-core/internal/domain/account"
	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/domain/order"
	"commerce-core/internal/domain/product"
	"commerce-core/internal/domain/vo"
	"commerce-core/internal/engine"
	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound     = errs.New("product not found")
	ErrInsufficientStock   = errs.New("insufficient stock")
	ErrInvalidQuantity     = errs.New("quantity must be a positive integer")
	ErrGrantNotFound       = errs.New("coupon grant not found")
	ErrGrantNotUsable      = errs.New("coupon grant is not usable")
	ErrCouponMinimumNotMet = errs.New("order amount below coupon minimum")
	ErrOrderNotFound       = errs.New("order not found")
	ErrOrderNotCancellable = errs.New("order cannot be cancelled")
)

type LineItem struct {
	ProductID uuid.UUID
	Quantity  int
}

type OrderCommands interface {
	PlaceOrder(ctx context.Context, accountID uuid.UUID, items []LineItem, grantID *uuid.UUID, shippingNote string) (*order.Order, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
}

type orderCommandsImpl struct {
	allocator engine.Allocator
	store     engine.Store
	orders    OrderRepository
	calc      order.PriceCalculator
	clock     clock.Clock
	logger    *slog.Logger
}

func NewOrderCommands(
	allocator engine.Allocator,
	store engine.Store,
	orders OrderRepository,
	calc order.PriceCalculator,
	clk clock.Clock,
	logger *slog.Logger,
) OrderCommands {
	return &orderCommandsImpl{
		allocator: allocator,
		store:     store,
		orders:    orders,
		calc:      calc,
		clock:     clk,
		logger:    logger,
	}
}

// PlaceOrder runs the all-or-nothing unit of work: stock decrements first
// (ascending product id, so concurrent orders lock in the same order), then
// the optional coupon grant, then the balance deduction, then persistence.
// Any failure compensates the completed steps in reverse before returning.
func (c *orderCommandsImpl) PlaceOrder(
	ctx context.Context,
	accountID uuid.UUID,
	lineItems []LineItem,
	grantID *uuid.UUID,
	shippingNote string,
) (*order.Order, error) {
	items, err := c.loadItems(ctx, lineItems)
	if err != nil {
		return nil, err
	}

	decremented, err := c.decrementStock(ctx, items)
	if err != nil {
		c.compensateStock(ctx, decremented)
		return nil, err
	}

	subtotal := c.calc.Subtotal(items)

	discount := vo.ZeroMoney()
	grantUsed := false
	if grantID != nil {
		discount, err = c.useGrant(ctx, accountID, *grantID, subtotal)
		if err != nil {
			c.compensateStock(ctx, items)
			return nil, err
		}
		grantUsed = true
	}

	total := c.calc.Total(subtotal, discount)
	if err := c.deductBalance(ctx, accountID, total); err != nil {
		if grantUsed {
			c.compensateGrant(ctx, *grantID)
		}
		c.compensateStock(ctx, items)
		return nil, err
	}

	placed, err := order.NewOrder(accountID, items, grantID, subtotal, discount, total, shippingNote, c.clock.Now())
	if err == nil {
		err = c.orders.Create(ctx, placed)
	}
	if err != nil {
		c.compensateBalance(ctx, accountID, total)
		if grantUsed {
			c.compensateGrant(ctx, *grantID)
		}
		c.compensateStock(ctx, items)
		return nil, errs.Wrap(err, "persist order")
	}

	return placed, nil
}

func (c *orderCommandsImpl) CancelOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	placed, err := c.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, errs.Mark(err, ErrOrderNotFound)
	}
	if placed.Status() != order.StatusPaid {
		return nil, ErrOrderNotCancellable
	}

	// Claim the transition before refunding so racing cancels pay out once.
	if err := c.orders.Transition(ctx, orderID, order.StatusPaid, order.StatusCancelled); err != nil {
		switch {
		case errors.Is(err, engine.ErrConflict):
			return nil, errs.Mark(err, ErrOrderNotCancellable)
		case errors.Is(err, engine.ErrNotFound):
			return nil, errs.Mark(err, ErrOrderNotFound)
		default:
			return nil, errs.Wrap(err, "record cancellation")
		}
	}

	// Refund mirrors placement in reverse: balance, grant, stock.
	c.compensateBalance(ctx, placed.AccountID(), placed.Total())
	if placed.GrantID() != nil {
		c.compensateGrant(ctx, *placed.GrantID())
	}
	c.compensateStock(ctx, placed.Items())

	placed.Cancel()
	return placed, nil
}

// loadItems resolves prices and read-checks stock. The check is advisory;
// the engine decrement below is authoritative.
func (c *orderCommandsImpl) loadItems(ctx context.Context, lineItems []LineItem) ([]order.Item, error) {
	if len(lineItems) == 0 {
		return nil, errs.Mark(order.ErrNoItems, ErrInvalidQuantity)
	}

	sorted := make([]LineItem, len(lineItems))
	copy(sorted, lineItems)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].ProductID[:], sorted[j].ProductID[:]) < 0
	})

	items := make([]order.Item, 0, len(sorted))
	for _, li := range sorted {
		quantity, err := vo.NewQuantity(li.Quantity)
		if err != nil {
			return nil, errs.Mark(err, ErrInvalidQuantity)
		}

		snapshot, err := c.store.Get(ctx, engine.NewKey(engine.KindProduct, li.ProductID))
		if err != nil {
			if errors.Is(err, engine.ErrNotFound) {
				return nil, errs.Mark(err, ErrProductNotFound)
			}
			return nil, err
		}
		prod, ok := snapshot.Value.(*product.Product)
		if !ok {
			return nil, errs.Newf("unexpected aggregate type %T for product %s", snapshot.Value, li.ProductID)
		}
		if !prod.HasSufficientStock(quantity) {
			return nil, ErrInsufficientStock
		}

		items = append(items, order.NewItem(li.ProductID, quantity, prod.Price()))
	}
	return items, nil
}

// decrementStock returns the items whose decrement committed, so a failure
// partway can re-increment exactly those.
func (c *orderCommandsImpl) decrementStock(ctx context.Context, items []order.Item) ([]order.Item, error) {
	decremented := make([]order.Item, 0, len(items))
	for _, item := range items {
		key := engine.NewKey(engine.KindProduct, item.ProductID())
		quantity := item.Quantity()

		_, err := engine.Allocate(ctx, c.allocator, key, func(current *product.Product) (*product.Product, error) {
			next := current.Clone()
			if decErr := next.DecreaseStock(quantity); decErr != nil {
				return nil, decErr
			}
			return next, nil
		})
		if err != nil {
			if errors.Is(err, product.ErrInsufficientStock) {
				return decremented, errs.Mark(err, ErrInsufficientStock)
			}
			return decremented, err
		}
		decremented = append(decremented, item)
	}
	return decremented, nil
}

func (c *orderCommandsImpl) useGrant(ctx context.Context, accountID, grantID uuid.UUID, subtotal vo.Money) (vo.Money, error) {
	grantKey := engine.NewKey(engine.KindGrant, grantID)

	snapshot, err := c.store.Get(ctx, grantKey)
	if err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			return vo.Money{}, errs.Mark(err, ErrGrantNotFound)
		}
		return vo.Money{}, err
	}
	grant, ok := snapshot.Value.(*coupon.Grant)
	if !ok {
		return vo.Money{}, errs.Newf("unexpected aggregate type %T for grant %s", snapshot.Value, grantID)
	}
	if !grant.BelongsTo(accountID) {
		return vo.Money{}, ErrGrantNotFound
	}

	cpnSnapshot, err := c.store.Get(ctx, engine.NewKey(engine.KindCoupon, grant.CouponID()))
	if err != nil {
		return vo.Money{}, errs.Wrap(err, "load coupon for grant")
	}
	cpn, ok := cpnSnapshot.Value.(*coupon.Coupon)
	if !ok {
		return vo.Money{}, errs.Newf("unexpected aggregate type %T for coupon %s", cpnSnapshot.Value, grant.CouponID())
	}
	if err := cpn.ValidateMinimum(subtotal); err != nil {
		return vo.Money{}, errs.Mark(err, ErrCouponMinimumNotMet)
	}

	now := c.clock.Now()
	_, err = engine.Allocate(ctx, c.allocator, grantKey, func(current *coupon.Grant) (*coupon.Grant, error) {
		next := current.Clone()
		if useErr := next.Use(now); useErr != nil {
			return nil, useErr
		}
		return next, nil
	})
	if err != nil {
		if errors.Is(err, coupon.ErrGrantNotUnused) || errors.Is(err, coupon.ErrGrantExpired) {
			return vo.Money{}, errs.Mark(err, ErrGrantNotUsable)
		}
		return vo.Money{}, err
	}

	return cpn.CalculateDiscount(subtotal), nil
}

func (c *orderCommandsImpl) deductBalance(ctx context.Context, accountID uuid.UUID, total vo.Money) error {
	if total.IsZero() {
		return nil
	}

	key := engine.NewKey(engine.KindAccount, accountID)
	_, err := engine.Allocate(ctx, c.allocator, key, func(current *account.Account) (*account.Account, error) {
		next := current.Clone()
		if dedErr := next.Deduct(total); dedErr != nil {
			return nil, dedErr
		}
		return next, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrNotFound):
			return errs.Mark(err, ErrAccountNotFound)
		case errors.Is(err, account.ErrInsufficientBalance):
			return errs.Mark(err, ErrInsufficientBalance)
		default:
			return err
		}
	}
	return nil
}

// Compensations are ordinary allocations against the same keys. Their
// failures leave state to reconcile by hand and are logged, never swallowed.

func (c *orderCommandsImpl) compensateStock(ctx context.Context, items []order.Item) {
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		key := engine.NewKey(engine.KindProduct, item.ProductID())

		_, err := engine.Allocate(ctx, c.allocator, key, func(current *product.Product) (*product.Product, error) {
			next := current.Clone()
			next.IncreaseStock(item.Quantity())
			return next, nil
		})
		if err != nil {
			c.logger.Error("stock compensation failed; manual reconciliation required",
				"product_id", item.ProductID(), "quantity", item.Quantity().Value(), "error", err.Error())
		}
	}
}

func (c *orderCommandsImpl) compensateGrant(ctx context.Context, grantID uuid.UUID) {
	key := engine.NewKey(engine.KindGrant, grantID)

	_, err := engine.Allocate(ctx, c.allocator, key, func(current *coupon.Grant) (*coupon.Grant, error) {
		next := current.Clone()
		if cancelErr := next.Cancel(); cancelErr != nil {
			return nil, cancelErr
		}
		return next, nil
	})
	if err != nil {
		c.logger.Error("grant compensation failed; manual reconciliation required",
			"grant_id", grantID, "error", err.Error())
	}
}

func (c *orderCommandsImpl) compensateBalance(ctx context.Context, accountID uuid.UUID, total vo.Money) {
	if total.IsZero() {
		return
	}

	key := engine.NewKey(engine.KindAccount, accountID)
	_, err := engine.Allocate(ctx, c.allocator, key, func(current *account.Account) (*account.Account, error) {
		next := current.Clone()
		if chargeErr := next.Charge(total); chargeErr != nil {
			return nil, chargeErr
		}
		return next, nil
	})
	if err != nil {
		c.logger.Error("balance compensation failed; manual reconciliation required",
			"account_id", accountID, "amount", total.Amount(), "error", err.Error())
	}
}
