package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/craft-market/internal/domain/product"
)

// Sentinel errors for cart operations.
var (
	ErrNotFound            = errors.New("cart not found")
	ErrDuplicateProduct    = errors.New("product is already in the cart")
	ErrNotInCart           = errors.New("product is not in the cart")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadyCheckedOut   = errors.New("cart has already been checked out")
)

// Cart is a user's shopping cart. TotalPrice always equals the sum of the
// discounted prices of the linked products; add and remove maintain it in
// the same transaction as the link change. A cart that has been checked out
// keeps its row (orders reference it) but accepts no further mutation.
type Cart struct {
	ID           string
	OwnerID      string
	Products     []product.Product
	TotalPrice   int64
	CheckedOutAt *time.Time
	UpdatedAt    time.Time
}

// Consumed reports whether the cart has already been converted to an order.
func (c *Cart) Consumed() bool {
	return c.CheckedOutAt != nil
}

// Contains reports whether the product is linked into the cart.
func (c *Cart) Contains(productID string) bool {
	for i := range c.Products {
		if c.Products[i].ID == productID {
			return true
		}
	}
	return false
}

// Repository defines persistence operations for carts. AddProduct and
// RemoveProduct adjust the link table and the running total atomically.
type Repository interface {
	Create(ctx context.Context, c *Cart) error
	GetByID(ctx context.Context, id string) (*Cart, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Cart, error)
	AddProduct(ctx context.Context, cartID string, p *product.Product) error
	RemoveProduct(ctx context.Context, cartID string, p *product.Product) error
	Delete(ctx context.Context, id string) error
}
