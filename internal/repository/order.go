package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/craft-market/internal/domain/cart"
	"github.com/xenking/craft-market/internal/domain/order"
)

const (
	lockCartSQL = `SELECT checked_out_at FROM carts WHERE id = $1 FOR UPDATE`

	lockBuyerBalanceSQL = `SELECT balance FROM users WHERE id = $1 FOR UPDATE`

	cartLineItemsSQL = `SELECT p.id, s.owner_id, p.price - p.price * p.discount / 100
		FROM cart_products cp
		JOIN products p ON p.id = cp.product_id
		JOIN shops s ON s.id = p.shop_id
		WHERE cp.cart_id = $1
		ORDER BY cp.added_at`

	debitBuyerSQL   = `UPDATE users SET balance = balance - $2 WHERE id = $1`
	creditSellerSQL = `UPDATE users SET balance = balance + $2 WHERE id = $1`

	insertOrderSQL = `INSERT INTO orders (id, cart_id, buyer_id, total)
		VALUES ($1, $2, $3, $4) RETURNING created_at`

	insertPurchaseSQL = `INSERT INTO purchases (order_id, user_id, product_id, price)
		VALUES ($1, $2, $3, $4)`

	consumeCartSQL = `UPDATE carts SET checked_out_at = now(), total_price = 0, updated_at = now()
		WHERE id = $1`

	clearCartProductsSQL = `DELETE FROM cart_products WHERE cart_id = $1`

	getOrderByIDSQL = `SELECT id, cart_id, buyer_id, total, created_at FROM orders WHERE id = $1`

	listOrdersByBuyerSQL = `SELECT id, cart_id, buyer_id, total, created_at
		FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC`

	listOrdersSQL = `SELECT id, cart_id, buyer_id, total, created_at FROM orders ORDER BY created_at DESC`
)

// lineItem is a cart entry resolved for settlement: the product, the shop
// owner to credit, and the discounted price to transfer.
type lineItem struct {
	productID string
	sellerID  string
	price     int64
}

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreateFromCart settles the cart in a single transaction. The cart and
// buyer rows are locked first, so concurrent checkouts of the same cart
// (or concurrent spends of the same balance) serialize: one wins, the
// other observes the consumed cart or the reduced balance and fails
// without applying anything.
//
// The order total is the sum of the line items' discounted prices as they
// stand inside the transaction, not the cart's running total: catalog
// edits between add and checkout settle at the current price. Per line
// item, in insertion order: the buyer is debited the discounted price, the
// product's shop owner is credited the same amount, and a purchase history
// row is written. The transfers are zero-sum by construction. Finally one
// order row is inserted and the cart is marked consumed with its links
// cleared.
func (r *OrderRepository) CreateFromCart(ctx context.Context, c *cart.Cart, buyerID string) (*order.Order, error) {
	o := &order.Order{
		ID:      uuid.New().String(),
		CartID:  c.ID,
		BuyerID: buyerID,
	}

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var checkedOutAt *time.Time
		if err := tx.QueryRow(ctx, lockCartSQL, c.ID).Scan(&checkedOutAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return cart.ErrNotFound
			}
			return errors.Wrap(err, "lock cart")
		}
		if checkedOutAt != nil {
			return cart.ErrAlreadyCheckedOut
		}

		items, err := loadLineItems(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return order.ErrEmptyCart
		}

		var total int64
		for _, item := range items {
			total += item.price
		}

		var balance int64
		if err := tx.QueryRow(ctx, lockBuyerBalanceSQL, buyerID).Scan(&balance); err != nil {
			return errors.Wrap(err, "lock buyer balance")
		}
		if total > balance {
			return cart.ErrInsufficientBalance
		}

		if err := tx.QueryRow(ctx, insertOrderSQL, o.ID, o.CartID, o.BuyerID, total).Scan(&o.CreatedAt); err != nil {
			return errors.Wrap(err, "insert order")
		}

		for _, item := range items {
			if _, err := tx.Exec(ctx, debitBuyerSQL, buyerID, item.price); err != nil {
				return errors.Wrapf(err, "debit buyer for product %s", item.productID)
			}
			if _, err := tx.Exec(ctx, creditSellerSQL, item.sellerID, item.price); err != nil {
				return errors.Wrapf(err, "credit seller for product %s", item.productID)
			}
			if _, err := tx.Exec(ctx, insertPurchaseSQL, o.ID, buyerID, item.productID, item.price); err != nil {
				return errors.Wrapf(err, "record purchase of product %s", item.productID)
			}
		}
		o.Total = total

		if _, err := tx.Exec(ctx, consumeCartSQL, c.ID); err != nil {
			return errors.Wrap(err, "consume cart")
		}
		if _, err := tx.Exec(ctx, clearCartProductsSQL, c.ID); err != nil {
			return errors.Wrap(err, "clear cart products")
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrNotFound),
			errors.Is(err, cart.ErrAlreadyCheckedOut),
			errors.Is(err, cart.ErrInsufficientBalance),
			errors.Is(err, order.ErrEmptyCart):
			return nil, err
		}
		return nil, fmt.Errorf("settling cart %q: %w", c.ID, err)
	}

	return o, nil
}

func loadLineItems(ctx context.Context, tx pgx.Tx, cartID string) ([]lineItem, error) {
	rows, err := tx.Query(ctx, cartLineItemsSQL, cartID)
	if err != nil {
		return nil, errors.Wrap(err, "load line items")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (lineItem, error) {
		var item lineItem
		err := row.Scan(&item.productID, &item.sellerID, &item.price)
		return item, err
	})
}

// GetByID returns a single order by identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// ListByBuyer returns the buyer's orders, newest first.
func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByBuyerSQL, buyerID)
	if err != nil {
		return nil, fmt.Errorf("listing orders of %q: %w", buyerID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// List returns every order, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(&o.ID, &o.CartID, &o.BuyerID, &o.Total, &o.CreatedAt)
	return o, err
}
