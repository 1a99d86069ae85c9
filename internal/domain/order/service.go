package order

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/craft-market/internal/domain/auth"
	"github.com/xenking/craft-market/internal/domain/cart"
	"github.com/xenking/craft-market/internal/domain/user"
)

// Service encapsulates checkout: converting a cart's contents into an
// order with the associated balance transfers.
type Service struct {
	carts  cart.Repository
	orders Repository
	users  user.Repository
}

// NewService creates an order Service.
func NewService(carts cart.Repository, orders Repository, users user.Repository) *Service {
	return &Service{carts: carts, orders: orders, users: users}
}

// PlaceOrder checks out the cart. Validation happens up front against the
// loaded cart; the repository re-verifies the balance under a row lock so
// concurrent checkouts cannot overdraw. The settlement is all-or-nothing:
// either every debit, credit, purchase row, and the order itself are
// applied, or none are.
func (s *Service) PlaceOrder(ctx context.Context, actor *user.User, cartID string) (*Order, error) {
	if !auth.CanShop(actor) {
		return nil, auth.ErrRole("CUSTOMER")
	}

	c, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !auth.CanModify(actor, c.OwnerID) {
		return nil, auth.ErrRole("OWNER")
	}
	if c.Consumed() {
		return nil, cart.ErrAlreadyCheckedOut
	}
	if len(c.Products) == 0 {
		return nil, ErrEmptyCart
	}

	// The cart owner pays, even when an admin checks out on their behalf.
	owner := actor
	if actor.ID != c.OwnerID {
		if owner, err = s.users.GetByID(ctx, c.OwnerID); err != nil {
			return nil, errors.Wrap(err, "load cart owner")
		}
	}
	if c.TotalPrice > owner.Balance {
		return nil, cart.ErrInsufficientBalance
	}

	o, err := s.orders.CreateFromCart(ctx, c, c.OwnerID)
	if err != nil {
		return nil, errors.Wrap(err, "settle cart")
	}
	return o, nil
}

// Get loads an order. Only the buyer or an admin may read it.
func (s *Service) Get(ctx context.Context, actor *user.User, id string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanModify(actor, o.BuyerID) {
		return nil, auth.ErrRole("OWNER")
	}
	return o, nil
}

// ListFor returns the actor's orders, or every order for admins.
func (s *Service) ListFor(ctx context.Context, actor *user.User) ([]Order, error) {
	if actor.IsAdmin {
		return s.orders.List(ctx)
	}
	return s.orders.ListByBuyer(ctx, actor.ID)
}
