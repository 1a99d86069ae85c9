package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for catalog operations.
var (
	ErrNotFound         = errors.New("product not found")
	ErrUnavailable      = errors.New("product is not available")
	ErrAlreadyFavourite = errors.New("product is already added to favourites")
	ErrNotFavourite     = errors.New("product is not in favourites")
)

// Type categorizes a catalog item.
type Type string

const (
	TypeArtwork   Type = "ARTWORK"
	TypeSculpture Type = "SCULPTURE"
	TypeOther     Type = "OTHER"
)

// Valid reports whether t is one of the known product types.
func (t Type) Valid() bool {
	return t == TypeArtwork || t == TypeSculpture || t == TypeOther
}

// Product is a catalog item listed by a shop. Price is in integer minor
// units; Discount is a whole percentage in [0, 100].
type Product struct {
	ID           string
	ShopID       string
	ShopOwnerID  string
	Name         string
	Description  string
	Manufacturer string
	Images       []string
	Price        int64
	Discount     int
	Available    bool
	Featured     bool
	Type         Type
	CreatedAt    time.Time
}

// Discounted applies a percentage discount to a minor-unit price,
// truncating toward zero. Cart totals and checkout transfers both use this
// value.
func Discounted(price int64, discount int) int64 {
	return price - price*int64(discount)/100
}

// DiscountedPrice is the unit price after applying the discount.
func (p *Product) DiscountedPrice() int64 {
	return Discounted(p.Price, p.Discount)
}

// UpdateParams carries a partial update. Nil fields are left untouched, so
// explicitly supplied zero values (0, "", false) overwrite correctly.
type UpdateParams struct {
	Name         *string
	Description  *string
	Manufacturer *string
	Images       *[]string
	Price        *int64
	Discount     *int
	Available    *bool
	Featured     *bool
	Type         *Type
}

// ShopFeatured groups a shop's featured products for the storefront listing.
type ShopFeatured struct {
	ShopID   string
	ShopName string
	Products []Product
}

// ListFilter narrows catalog listings. Zero values mean "no constraint".
type ListFilter struct {
	Limit  int
	Search string
}

// Repository defines persistence operations for the product catalog and
// the user-product favourite relation.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Product, error)
	ListFeatured(ctx context.Context, limit int) ([]ShopFeatured, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Product, error)
	Delete(ctx context.Context, id string) error

	AddFavourite(ctx context.Context, userID, productID string) error
	RemoveFavourite(ctx context.Context, userID, productID string) error
	ListFavourites(ctx context.Context, userID string) ([]Product, error)
	ListPurchased(ctx context.Context, userID string) ([]Product, error)
}
