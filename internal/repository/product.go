package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/craft-market/internal/domain/product"
)

const (
	productColumns = `p.id, p.shop_id, s.owner_id, p.name, p.description, p.manufacturer, p.images,
		p.price, p.discount, p.available, p.featured, p.product_type, p.created_at`

	productFrom = ` FROM products p JOIN shops s ON s.id = p.shop_id`

	createProductSQL = `INSERT INTO products (id, shop_id, name, description, manufacturer, images, price, discount, available, featured, product_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	getProductByIDSQL = `SELECT ` + productColumns + productFrom + ` WHERE p.id = $1`

	listProductsSQL = `SELECT ` + productColumns + productFrom + `
		WHERE ($2 = '' OR p.name ILIKE '%' || $2 || '%')
		ORDER BY p.created_at
		LIMIT CASE WHEN $1 > 0 THEN $1 END`

	listProductsByOwnerSQL = `SELECT ` + productColumns + productFrom + `
		WHERE s.owner_id = $1 ORDER BY p.created_at`

	listFeaturedSQL = `SELECT ` + productColumns + `, s.name AS shop_name` + productFrom + `
		WHERE p.featured
		ORDER BY s.created_at, p.created_at
		LIMIT CASE WHEN $1 > 0 THEN $1 END`

	lockProductPricingSQL = `SELECT price, discount FROM products WHERE id = $1 FOR UPDATE`

	updateProductSQL = `UPDATE products SET
			name         = COALESCE($2, name),
			description  = COALESCE($3, description),
			manufacturer = COALESCE($4, manufacturer),
			images       = COALESCE($5, images),
			price        = COALESCE($6, price),
			discount     = COALESCE($7, discount),
			available    = COALESCE($8, available),
			featured     = COALESCE($9, featured),
			product_type = COALESCE($10, product_type)
		WHERE id = $1
		RETURNING price, discount`

	repriceCartsSQL = `UPDATE carts c SET total_price = c.total_price + $2, updated_at = now()
		FROM cart_products cp
		WHERE cp.cart_id = c.id AND cp.product_id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	addFavouriteSQL = `INSERT INTO favourites (user_id, product_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	removeFavouriteSQL = `DELETE FROM favourites WHERE user_id = $1 AND product_id = $2`

	listFavouritesSQL = `SELECT ` + productColumns + productFrom + `
		JOIN favourites f ON f.product_id = p.id
		WHERE f.user_id = $1 ORDER BY p.created_at`

	listPurchasedSQL = `SELECT DISTINCT ON (p.id) ` + productColumns + productFrom + `
		JOIN purchases pu ON pu.product_id = p.id
		WHERE pu.user_id = $1 ORDER BY p.id`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
// Every read joins the owning shop so authorization checks get the shop
// owner without a second query.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create persists a new product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx, createProductSQL,
		p.ID, p.ShopID, p.Name, p.Description, p.Manufacturer, p.Images,
		p.Price, p.Discount, p.Available, p.Featured, p.Type,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// GetByID returns a single product by identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// List returns catalog products, optionally limited and filtered by a
// case-insensitive name substring.
func (r *ProductRepository) List(ctx context.Context, filter product.ListFilter) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL, filter.Limit, filter.Search)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// ListByOwner returns every product across all shops owned by the user.
func (r *ProductRepository) ListByOwner(ctx context.Context, ownerID string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsByOwnerSQL, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing products of %q: %w", ownerID, err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// ListFeatured returns featured products grouped per shop, preserving shop
// creation order.
func (r *ProductRepository) ListFeatured(ctx context.Context, limit int) ([]product.ShopFeatured, error) {
	rows, err := r.pool.Query(ctx, listFeaturedSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("listing featured products: %w", err)
	}
	defer rows.Close()

	var (
		groups []product.ShopFeatured
		index  = make(map[string]int)
	)
	for rows.Next() {
		var (
			p        product.Product
			shopName string
		)
		if err := rows.Scan(
			&p.ID, &p.ShopID, &p.ShopOwnerID, &p.Name, &p.Description, &p.Manufacturer, &p.Images,
			&p.Price, &p.Discount, &p.Available, &p.Featured, &p.Type, &p.CreatedAt,
			&shopName,
		); err != nil {
			return nil, fmt.Errorf("scanning featured product: %w", err)
		}

		i, ok := index[p.ShopID]
		if !ok {
			i = len(groups)
			index[p.ShopID] = i
			groups = append(groups, product.ShopFeatured{ShopID: p.ShopID, ShopName: shopName})
		}
		groups[i].Products = append(groups[i].Products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing featured products: %w", err)
	}
	return groups, nil
}

// Update applies a partial update: nil params keep the stored value. When
// the discounted price changes, every open cart holding the product is
// repriced in the same transaction so stored totals keep matching the sum
// of current discounted prices.
func (r *ProductRepository) Update(ctx context.Context, id string, params product.UpdateParams) (*product.Product, error) {
	var images any
	if params.Images != nil {
		images = *params.Images
	}

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var (
			price    int64
			discount int
		)
		if err := tx.QueryRow(ctx, lockProductPricingSQL, id).Scan(&price, &discount); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return product.ErrNotFound
			}
			return errors.Wrap(err, "lock product")
		}
		before := product.Discounted(price, discount)

		if err := tx.QueryRow(ctx, updateProductSQL,
			id, params.Name, params.Description, params.Manufacturer, images,
			params.Price, params.Discount, params.Available, params.Featured, params.Type,
		).Scan(&price, &discount); err != nil {
			return errors.Wrap(err, "update product")
		}

		if delta := product.Discounted(price, discount) - before; delta != 0 {
			if _, err := tx.Exec(ctx, repriceCartsSQL, id, delta); err != nil {
				return errors.Wrap(err, "reprice carts")
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("updating product %q: %w", id, err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes a product. Open carts holding it shrink by its discounted
// price before the cascading delete drops their links.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var (
			price    int64
			discount int
		)
		if err := tx.QueryRow(ctx, lockProductPricingSQL, id).Scan(&price, &discount); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return product.ErrNotFound
			}
			return errors.Wrap(err, "lock product")
		}

		if _, err := tx.Exec(ctx, repriceCartsSQL, id, -product.Discounted(price, discount)); err != nil {
			return errors.Wrap(err, "shrink carts")
		}
		if _, err := tx.Exec(ctx, deleteProductSQL, id); err != nil {
			return errors.Wrap(err, "delete product")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return product.ErrNotFound
		}
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	return nil
}

// AddFavourite links the product into the user's favourites. Favouriting
// twice maps to product.ErrAlreadyFavourite.
func (r *ProductRepository) AddFavourite(ctx context.Context, userID, productID string) error {
	tag, err := r.pool.Exec(ctx, addFavouriteSQL, userID, productID)
	if err != nil {
		return fmt.Errorf("favouriting product %q: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrAlreadyFavourite
	}
	return nil
}

// RemoveFavourite unlinks the product from the user's favourites.
func (r *ProductRepository) RemoveFavourite(ctx context.Context, userID, productID string) error {
	tag, err := r.pool.Exec(ctx, removeFavouriteSQL, userID, productID)
	if err != nil {
		return fmt.Errorf("unfavouriting product %q: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFavourite
	}
	return nil
}

// ListFavourites returns the user's favourite products.
func (r *ProductRepository) ListFavourites(ctx context.Context, userID string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listFavouritesSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing favourites of %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// ListPurchased returns the distinct products the user has bought.
func (r *ProductRepository) ListPurchased(ctx context.Context, userID string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listPurchasedSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing purchases of %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.ShopID, &p.ShopOwnerID, &p.Name, &p.Description, &p.Manufacturer, &p.Images,
		&p.Price, &p.Discount, &p.Available, &p.Featured, &p.Type, &p.CreatedAt,
	)
	return p, err
}
