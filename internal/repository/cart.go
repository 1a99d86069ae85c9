package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/craft-market/internal/domain/cart"
	"github.com/xenking/craft-market/internal/domain/product"
)

const (
	createCartSQL = `INSERT INTO carts (id, owner_id) VALUES ($1, $2)`

	getCartByIDSQL = `SELECT id, owner_id, total_price, checked_out_at, updated_at
		FROM carts WHERE id = $1`

	listCartsByOwnerSQL = `SELECT id, owner_id, total_price, checked_out_at, updated_at
		FROM carts WHERE owner_id = $1 ORDER BY updated_at DESC`

	getCartProductsSQL = `SELECT ` + productColumns + productFrom + `
		JOIN cart_products cp ON cp.product_id = p.id
		WHERE cp.cart_id = $1 ORDER BY cp.added_at`

	linkCartProductSQL = `INSERT INTO cart_products (cart_id, product_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	unlinkCartProductSQL = `DELETE FROM cart_products WHERE cart_id = $1 AND product_id = $2`

	adjustCartTotalSQL = `UPDATE carts SET total_price = total_price + $2, updated_at = now()
		WHERE id = $1`

	deleteCartSQL = `DELETE FROM carts WHERE id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. Link
// changes and the running total are updated in one transaction so the
// total never drifts from the sum of discounted prices.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Create persists a new empty cart.
func (r *CartRepository) Create(ctx context.Context, c *cart.Cart) error {
	_, err := r.pool.Exec(ctx, createCartSQL, c.ID, c.OwnerID)
	if err != nil {
		return fmt.Errorf("creating cart %q: %w", c.ID, err)
	}
	return nil
}

// GetByID returns the cart with its products in insertion order.
func (r *CartRepository) GetByID(ctx context.Context, id string) (*cart.Cart, error) {
	rows, err := r.pool.Query(ctx, getCartByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting cart %q: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCart)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("getting cart %q: %w", id, err)
	}

	productRows, err := r.pool.Query(ctx, getCartProductsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting cart %q products: %w", id, err)
	}
	c.Products, err = pgx.CollectRows(productRows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("getting cart %q products: %w", id, err)
	}
	return &c, nil
}

// ListByOwner returns the user's carts, most recently touched first,
// without expanding their product lists.
func (r *CartRepository) ListByOwner(ctx context.Context, ownerID string) ([]cart.Cart, error) {
	rows, err := r.pool.Query(ctx, listCartsByOwnerSQL, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing carts of %q: %w", ownerID, err)
	}
	return pgx.CollectRows(rows, scanCart)
}

// AddProduct links the product and grows the total by its discounted price
// in one transaction. A concurrent duplicate add maps to
// cart.ErrDuplicateProduct.
func (r *CartRepository) AddProduct(ctx context.Context, cartID string, p *product.Product) error {
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, linkCartProductSQL, cartID, p.ID)
		if err != nil {
			return errors.Wrap(err, "link product")
		}
		if tag.RowsAffected() == 0 {
			return cart.ErrDuplicateProduct
		}

		if _, err := tx.Exec(ctx, adjustCartTotalSQL, cartID, p.DiscountedPrice()); err != nil {
			return errors.Wrap(err, "grow cart total")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, cart.ErrDuplicateProduct) {
			return cart.ErrDuplicateProduct
		}
		return fmt.Errorf("adding product %q to cart %q: %w", p.ID, cartID, err)
	}
	return nil
}

// RemoveProduct unlinks the product and shrinks the total by its
// discounted price in one transaction. A missing link maps to
// cart.ErrNotInCart so the total is never decremented for a product that
// was not there.
func (r *CartRepository) RemoveProduct(ctx context.Context, cartID string, p *product.Product) error {
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, unlinkCartProductSQL, cartID, p.ID)
		if err != nil {
			return errors.Wrap(err, "unlink product")
		}
		if tag.RowsAffected() == 0 {
			return cart.ErrNotInCart
		}

		if _, err := tx.Exec(ctx, adjustCartTotalSQL, cartID, -p.DiscountedPrice()); err != nil {
			return errors.Wrap(err, "shrink cart total")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, cart.ErrNotInCart) {
			return cart.ErrNotInCart
		}
		return fmt.Errorf("removing product %q from cart %q: %w", p.ID, cartID, err)
	}
	return nil
}

// Delete removes a cart and its product links.
func (r *CartRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteCartSQL, id)
	if err != nil {
		return fmt.Errorf("deleting cart %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrNotFound
	}
	return nil
}

func scanCart(row pgx.CollectableRow) (cart.Cart, error) {
	var c cart.Cart
	err := row.Scan(&c.ID, &c.OwnerID, &c.TotalPrice, &c.CheckedOutAt, &c.UpdatedAt)
	return c, err
}
