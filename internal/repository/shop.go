package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/craft-market/internal/domain/shop"
)

const (
	shopColumns = `id, name, description, location, website, owner_id, created_at`

	createShopSQL = `INSERT INTO shops (id, name, description, location, website, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)`

	getShopByIDSQL = `SELECT ` + shopColumns + ` FROM shops WHERE id = $1`

	listShopsSQL = `SELECT ` + shopColumns + ` FROM shops ORDER BY created_at
		LIMIT CASE WHEN $1 > 0 THEN $1 END`

	listShopsByOwnerSQL = `SELECT ` + shopColumns + ` FROM shops WHERE owner_id = $1 ORDER BY created_at`

	searchShopsSQL = `SELECT ` + shopColumns + ` FROM shops WHERE name ILIKE '%' || $1 || '%' ORDER BY name`

	updateShopSQL = `UPDATE shops SET
			name        = COALESCE($2, name),
			description = COALESCE($3, description),
			location    = COALESCE($4, location),
			website     = COALESCE($5, website)
		WHERE id = $1
		RETURNING ` + shopColumns

	deleteShopSQL = `DELETE FROM shops WHERE id = $1`
)

var _ shop.Repository = (*ShopRepository)(nil)

// ShopRepository implements shop.Repository backed by PostgreSQL.
type ShopRepository struct {
	pool *pgxpool.Pool
}

// NewShopRepository returns a ShopRepository that uses the given pool.
func NewShopRepository(pool *pgxpool.Pool) *ShopRepository {
	return &ShopRepository{pool: pool}
}

// Create persists a new shop.
func (r *ShopRepository) Create(ctx context.Context, s *shop.Shop) error {
	_, err := r.pool.Exec(ctx, createShopSQL,
		s.ID, s.Name, s.Description, s.Location, s.Website, s.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("creating shop %q: %w", s.ID, err)
	}
	return nil
}

// GetByID returns a single shop by identifier.
func (r *ShopRepository) GetByID(ctx context.Context, id string) (*shop.Shop, error) {
	rows, err := r.pool.Query(ctx, getShopByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting shop %q: %w", id, err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanShop)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shop.ErrNotFound
		}
		return nil, fmt.Errorf("getting shop %q: %w", id, err)
	}
	return &s, nil
}

// List returns shops ordered by creation time. A non-positive limit
// returns everything.
func (r *ShopRepository) List(ctx context.Context, limit int) ([]shop.Shop, error) {
	rows, err := r.pool.Query(ctx, listShopsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("listing shops: %w", err)
	}
	return pgx.CollectRows(rows, scanShop)
}

// ListByOwner returns every shop owned by the given user.
func (r *ShopRepository) ListByOwner(ctx context.Context, ownerID string) ([]shop.Shop, error) {
	rows, err := r.pool.Query(ctx, listShopsByOwnerSQL, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing shops of %q: %w", ownerID, err)
	}
	return pgx.CollectRows(rows, scanShop)
}

// SearchByName returns shops whose name contains the term, case-insensitive.
func (r *ShopRepository) SearchByName(ctx context.Context, term string) ([]shop.Shop, error) {
	rows, err := r.pool.Query(ctx, searchShopsSQL, term)
	if err != nil {
		return nil, fmt.Errorf("searching shops %q: %w", term, err)
	}
	return pgx.CollectRows(rows, scanShop)
}

// Update applies a partial update: nil params keep the stored value.
func (r *ShopRepository) Update(ctx context.Context, id string, params shop.UpdateParams) (*shop.Shop, error) {
	rows, err := r.pool.Query(ctx, updateShopSQL,
		id, params.Name, params.Description, params.Location, params.Website,
	)
	if err != nil {
		return nil, fmt.Errorf("updating shop %q: %w", id, err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanShop)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shop.ErrNotFound
		}
		return nil, fmt.Errorf("updating shop %q: %w", id, err)
	}
	return &s, nil
}

// Delete removes a shop and cascades to its products.
func (r *ShopRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteShopSQL, id)
	if err != nil {
		return fmt.Errorf("deleting shop %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return shop.ErrNotFound
	}
	return nil
}

func scanShop(row pgx.CollectableRow) (shop.Shop, error) {
	var s shop.Shop
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Location, &s.Website, &s.OwnerID, &s.CreatedAt)
	return s, err
}
