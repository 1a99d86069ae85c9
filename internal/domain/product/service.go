package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/craft-market/internal/domain/auth"
	"github.com/xenking/craft-market/internal/domain/shop"
	"github.com/xenking/craft-market/internal/domain/user"
)

// CreateRequest holds the input for listing a new product.
type CreateRequest struct {
	ShopID       string
	Name         string
	Description  string
	Manufacturer string
	Images       []string
	Price        int64
	Discount     int
	Type         Type
}

// Service applies the authorization rules around catalog mutations.
type Service struct {
	products Repository
	shops    shop.Repository
}

// NewService creates a product Service.
func NewService(products Repository, shops shop.Repository) *Service {
	return &Service{products: products, shops: shops}
}

// Create lists a product in one of the actor's shops. Requires the seller
// role, and the target shop must belong to the actor (admin override).
func (s *Service) Create(ctx context.Context, actor *user.User, req CreateRequest) (*Product, error) {
	if !auth.CanSell(actor) {
		return nil, auth.ErrRole("SELLER")
	}

	sh, err := s.shops.GetByID(ctx, req.ShopID)
	if err != nil {
		return nil, err
	}
	if !auth.CanModify(actor, sh.OwnerID) {
		return nil, auth.ErrRole("OWNER")
	}

	p := &Product{
		ID:           uuid.New().String(),
		ShopID:       sh.ID,
		ShopOwnerID:  sh.OwnerID,
		Name:         req.Name,
		Description:  req.Description,
		Manufacturer: req.Manufacturer,
		Images:       req.Images,
		Price:        req.Price,
		Discount:     req.Discount,
		Available:    true,
		Type:         req.Type,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	return p, nil
}

// Update applies a partial update to a product the actor owns.
func (s *Service) Update(ctx context.Context, actor *user.User, id string, params UpdateParams) (*Product, error) {
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanModify(actor, existing.ShopOwnerID) {
		return nil, auth.ErrRole("OWNER")
	}
	return s.products.Update(ctx, id, params)
}

// SetFeatured flips the featured flag on a product the actor owns.
func (s *Service) SetFeatured(ctx context.Context, actor *user.User, id string, featured bool) (*Product, error) {
	return s.Update(ctx, actor, id, UpdateParams{Featured: &featured})
}

// Delete removes a product the actor owns.
func (s *Service) Delete(ctx context.Context, actor *user.User, id string) error {
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanModify(actor, existing.ShopOwnerID) {
		return auth.ErrRole("OWNER")
	}
	return s.products.Delete(ctx, id)
}

// Favourite marks a product as a favourite of the actor. Favouriting the
// same product twice fails with ErrAlreadyFavourite.
func (s *Service) Favourite(ctx context.Context, actor *user.User, id string) (*Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.products.AddFavourite(ctx, actor.ID, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// Unfavourite removes a product from the actor's favourites.
func (s *Service) Unfavourite(ctx context.Context, actor *user.User, id string) error {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.products.RemoveFavourite(ctx, actor.ID, p.ID)
}
