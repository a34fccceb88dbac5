// Package repository holds the SQL repositories for entities that live
// outside the engine's aggregate table.
package repository

import (
	"context"
	"errors"
	"time"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/domain/vo"
	"commerce-core/internal/engine"
	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create writes the order and its line items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errs.Wrap(err, "begin order transaction")
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO orders (id, account_id, grant_id, subtotal, discount, total, status, shipping_note, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID(), o.AccountID(), o.GrantID(),
		o.Subtotal().Amount(), o.Discount().Amount(), o.Total().Amount(),
		string(o.Status()), o.ShippingNote(), o.CreatedAt(),
	)
	if err != nil {
		return errs.Wrap(err, "insert order")
	}

	for _, item := range o.Items() {
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, unit_price)
			 VALUES ($1, $2, $3, $4)`,
			o.ID(), item.ProductID(), item.Quantity().Value(), item.UnitPrice().Amount(),
		)
		if err != nil {
			return errs.Wrap(err, "insert order item")
		}
	}

	return errs.Wrap(tx.Commit(ctx), "commit order")
}

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var (
		accountID    uuid.UUID
		grantID      *uuid.UUID
		subtotal     int64
		discount     int64
		total        int64
		status       string
		shippingNote string
		createdAt    time.Time
	)

	err := r.pool.QueryRow(ctx,
		`SELECT account_id, grant_id, subtotal, discount, total, status, shipping_note, created_at
		 FROM orders WHERE id = $1`, id,
	).Scan(&accountID, &grantID, &subtotal, &discount, &total, &status, &shippingNote, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, engine.ErrNotFound
		}
		return nil, errs.Wrap(err, "read order")
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}

	return restoreOrder(id, accountID, items, grantID, subtotal, discount, total, order.Status(status), shippingNote, createdAt)
}

// Transition is the single-winner status update: the WHERE clause rejects a
// second writer that read the same from status.
func (r *OrderRepository) Transition(ctx context.Context, id uuid.UUID, from, to order.Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`,
		id, string(from), string(to),
	)
	if err != nil {
		return errs.Wrap(err, "transition order status")
	}
	if tag.RowsAffected() == 0 {
		return engine.ErrConflict
	}
	return nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderID uuid.UUID) ([]order.Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_id, quantity, unit_price FROM order_items WHERE order_id = $1`,
		orderID,
	)
	if err != nil {
		return nil, errs.Wrap(err, "read order items")
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var productID uuid.UUID
		var quantity int
		var unitPrice int64
		if err := rows.Scan(&productID, &quantity, &unitPrice); err != nil {
			return nil, errs.Wrap(err, "scan order item")
		}

		q, err := vo.NewQuantity(quantity)
		if err != nil {
			return nil, errs.Wrap(err, "restore item quantity")
		}
		price, err := vo.NewMoney(unitPrice)
		if err != nil {
			return nil, errs.Wrap(err, "restore item price")
		}
		items = append(items, order.NewItem(productID, q, price))
	}
	return items, rows.Err()
}

func restoreOrder(
	id, accountID uuid.UUID,
	items []order.Item,
	grantID *uuid.UUID,
	subtotal, discount, total int64,
	status order.Status,
	shippingNote string,
	createdAt time.Time,
) (*order.Order, error) {
	sub, err := vo.NewMoney(subtotal)
	if err != nil {
		return nil, errs.Wrap(err, "restore order subtotal")
	}
	disc, err := vo.NewMoney(discount)
	if err != nil {
		return nil, errs.Wrap(err, "restore order discount")
	}
	tot, err := vo.NewMoney(total)
	if err != nil {
		return nil, errs.Wrap(err, "restore order total")
	}
	return order.Restore(id, accountID, items, grantID, sub, disc, tot, status, shippingNote, createdAt), nil
}
