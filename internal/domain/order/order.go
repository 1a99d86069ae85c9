package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/craft-market/internal/domain/cart"
)

// Sentinel errors for order placement and lookup.
var (
	ErrNotFound  = errors.New("order not found")
	ErrEmptyCart = errors.New("cannot check out an empty cart")
)

// Order records a completed checkout: the consumed cart, the buyer, and
// the settled total. Orders are immutable once created.
type Order struct {
	ID        string
	CartID    string
	BuyerID   string
	Total     int64
	CreatedAt time.Time
}

// Repository defines persistence operations for orders.
//
// CreateFromCart performs the whole settlement in a single transaction:
// the buyer's balance is debited per line item, each product's shop owner
// is credited the same amount, purchase history rows are written, exactly
// one order row is inserted, and the cart is marked consumed with its
// links cleared. If any step fails nothing is applied.
type Repository interface {
	CreateFromCart(ctx context.Context, c *cart.Cart, buyerID string) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]Order, error)
	List(ctx context.Context) ([]Order, error)
}
