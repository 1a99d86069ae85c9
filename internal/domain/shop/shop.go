package shop

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested shop does not exist.
var ErrNotFound = errors.New("shop not found")

// Shop is a seller's storefront. Every product belongs to exactly one shop
// and every shop to exactly one user.
type Shop struct {
	ID          string
	Name        string
	Description string
	Location    string
	Website     string
	OwnerID     string
	CreatedAt   time.Time
}

// UpdateParams carries a partial update. Nil fields are left untouched, so
// explicitly supplied zero values (empty strings) overwrite correctly.
type UpdateParams struct {
	Name        *string
	Description *string
	Location    *string
	Website     *string
}

// Repository defines persistence operations for shops.
type Repository interface {
	Create(ctx context.Context, s *Shop) error
	GetByID(ctx context.Context, id string) (*Shop, error)
	List(ctx context.Context, limit int) ([]Shop, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Shop, error)
	SearchByName(ctx context.Context, term string) ([]Shop, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Shop, error)
	Delete(ctx context.Context, id string) error
}
