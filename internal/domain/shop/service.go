package shop

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/craft-market/internal/domain/auth"
	"github.com/xenking/craft-market/internal/domain/user"
)

// CreateRequest holds the input for opening a new shop.
type CreateRequest struct {
	Name        string
	Description string
	Location    string
	Website     string
	// OwnerID defaults to the acting user. Only admins may open a shop on
	// behalf of somebody else.
	OwnerID string
}

// Service applies the authorization rules around shop mutations.
type Service struct {
	shops Repository
}

// NewService creates a shop Service.
func NewService(shops Repository) *Service {
	return &Service{shops: shops}
}

// Create opens a shop for the acting user. Requires the seller role.
func (s *Service) Create(ctx context.Context, actor *user.User, req CreateRequest) (*Shop, error) {
	if !auth.CanSell(actor) {
		return nil, auth.ErrRole("SELLER")
	}

	ownerID := req.OwnerID
	if ownerID == "" {
		ownerID = actor.ID
	}
	if ownerID != actor.ID && !actor.IsAdmin {
		return nil, auth.ErrRole("OWNER")
	}

	sh := &Shop{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Website:     req.Website,
		OwnerID:     ownerID,
	}
	if err := s.shops.Create(ctx, sh); err != nil {
		return nil, errors.Wrap(err, "create shop")
	}
	return sh, nil
}

// Update applies a partial update to a shop owned by the actor.
func (s *Service) Update(ctx context.Context, actor *user.User, id string, params UpdateParams) (*Shop, error) {
	existing, err := s.shops.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanModify(actor, existing.OwnerID) {
		return nil, auth.ErrRole("OWNER")
	}
	return s.shops.Update(ctx, id, params)
}

// Delete removes a shop owned by the actor.
func (s *Service) Delete(ctx context.Context, actor *user.User, id string) error {
	existing, err := s.shops.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanModify(actor, existing.OwnerID) {
		return auth.ErrRole("OWNER")
	}
	return s.shops.Delete(ctx, id)
}
