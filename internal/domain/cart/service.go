package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/craft-market/internal/domain/auth"
	"github.com/xenking/craft-market/internal/domain/product"
	"github.com/xenking/craft-market/internal/domain/user"
)

// Service encapsulates the cart state machine: carts start empty, products
// are linked and unlinked by the owner, and a checkout consumes the
// contents (see the order service).
type Service struct {
	carts    Repository
	products product.Repository
	users    user.Repository
}

// NewService creates a cart Service.
func NewService(carts Repository, products product.Repository, users user.Repository) *Service {
	return &Service{carts: carts, products: products, users: users}
}

// Create opens an empty cart owned by the actor.
func (s *Service) Create(ctx context.Context, actor *user.User) (*Cart, error) {
	c := &Cart{
		ID:      uuid.New().String(),
		OwnerID: actor.ID,
	}
	if err := s.carts.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create cart")
	}
	return c, nil
}

// Get loads a cart. Only the owner or an admin may read it.
func (s *Service) Get(ctx context.Context, actor *user.User, id string) (*Cart, error) {
	c, err := s.carts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanModify(actor, c.OwnerID) {
		return nil, auth.ErrRole("OWNER")
	}
	return c, nil
}

// AddProduct links a product into the cart and grows the running total by
// its discounted price. Sellers cannot shop; the product must exist, be
// available, fit within the owner's balance, and not already be present.
func (s *Service) AddProduct(ctx context.Context, actor *user.User, cartID, productID string) (*Cart, error) {
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
		return nil, ErrAlreadyCheckedOut
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	// Affordability is judged against the cart owner's balance, not the
	// acting admin's.
	owner := actor
	if actor.ID != c.OwnerID {
		if owner, err = s.users.GetByID(ctx, c.OwnerID); err != nil {
			return nil, err
		}
	}
	if p.DiscountedPrice()+c.TotalPrice > owner.Balance {
		return nil, ErrInsufficientBalance
	}
	if !p.Available {
		return nil, product.ErrUnavailable
	}
	if c.Contains(p.ID) {
		return nil, ErrDuplicateProduct
	}

	if err := s.carts.AddProduct(ctx, c.ID, p); err != nil {
		return nil, err
	}
	return s.carts.GetByID(ctx, c.ID)
}

// RemoveProduct unlinks a product and shrinks the total by its discounted
// price. Removing a product that is not in the cart fails with ErrNotInCart
// rather than silently pushing the total negative.
func (s *Service) RemoveProduct(ctx context.Context, actor *user.User, cartID, productID string) (*Cart, error) {
	c, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !auth.CanModify(actor, c.OwnerID) {
		return nil, auth.ErrRole("OWNER")
	}
	if c.Consumed() {
		return nil, ErrAlreadyCheckedOut
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !c.Contains(p.ID) {
		return nil, ErrNotInCart
	}

	if err := s.carts.RemoveProduct(ctx, c.ID, p); err != nil {
		return nil, err
	}
	return s.carts.GetByID(ctx, c.ID)
}

// Delete removes a cart. Only the owner or an admin may delete it.
func (s *Service) Delete(ctx context.Context, actor *user.User, id string) error {
	c, err := s.carts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanModify(actor, c.OwnerID) {
		return auth.ErrRole("OWNER")
	}
	return s.carts.Delete(ctx, id)
}
