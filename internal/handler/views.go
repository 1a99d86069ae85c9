package handler

import (
	"time"

	"github.com/xenking/craft-market/internal/domain/cart"
	"github.com/xenking/craft-market/internal/domain/order"
	"github.com/xenking/craft-market/internal/domain/product"
	"github.com/xenking/craft-market/internal/domain/shop"
	"github.com/xenking/craft-market/internal/domain/user"
)

// Response views. Credentials never leave the service; prices are integer
// minor units and the discounted price is precomputed so clients display
// exactly what checkout will transfer.

type userView struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Bio          string    `json:"bio,omitempty"`
	Image        string    `json:"image,omitempty"`
	Address      string    `json:"address,omitempty"`
	PhoneNumbers []string  `json:"phone_numbers,omitempty"`
	Balance      int64     `json:"balance"`
	Role         user.Role `json:"role"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

func toUserView(u *user.User) userView {
	return userView{
		ID:           u.ID,
		FullName:     u.FullName,
		Email:        u.Email,
		Bio:          u.Bio,
		Image:        u.Image,
		Address:      u.Address,
		PhoneNumbers: u.PhoneNumbers,
		Balance:      u.Balance,
		Role:         u.Role,
		IsAdmin:      u.IsAdmin,
		CreatedAt:    u.CreatedAt,
	}
}

func toUserViews(users []user.User) []userView {
	out := make([]userView, len(users))
	for i := range users {
		out[i] = toUserView(&users[i])
	}
	return out
}

type shopView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Website     string    `json:"website,omitempty"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func toShopView(s *shop.Shop) shopView {
	return shopView{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Location:    s.Location,
		Website:     s.Website,
		OwnerID:     s.OwnerID,
		CreatedAt:   s.CreatedAt,
	}
}

func toShopViews(shops []shop.Shop) []shopView {
	out := make([]shopView, len(shops))
	for i := range shops {
		out[i] = toShopView(&shops[i])
	}
	return out
}

type productView struct {
	ID              string       `json:"id"`
	ShopID          string       `json:"shop_id"`
	Name            string       `json:"name"`
	Description     string       `json:"description,omitempty"`
	Manufacturer    string       `json:"manufacturer,omitempty"`
	Images          []string     `json:"images,omitempty"`
	Price           int64        `json:"price"`
	Discount        int          `json:"discount"`
	DiscountedPrice int64        `json:"discounted_price"`
	Available       bool         `json:"available"`
	Featured        bool         `json:"featured"`
	Type            product.Type `json:"product_type"`
	CreatedAt       time.Time    `json:"created_at"`
}

func toProductView(p *product.Product) productView {
	return productView{
		ID:              p.ID,
		ShopID:          p.ShopID,
		Name:            p.Name,
		Description:     p.Description,
		Manufacturer:    p.Manufacturer,
		Images:          p.Images,
		Price:           p.Price,
		Discount:        p.Discount,
		DiscountedPrice: p.DiscountedPrice(),
		Available:       p.Available,
		Featured:        p.Featured,
		Type:            p.Type,
		CreatedAt:       p.CreatedAt,
	}
}

func toProductViews(products []product.Product) []productView {
	out := make([]productView, len(products))
	for i := range products {
		out[i] = toProductView(&products[i])
	}
	return out
}

type shopFeaturedView struct {
	ShopID   string        `json:"id"`
	ShopName string        `json:"name"`
	Products []productView `json:"products"`
}

func toFeaturedViews(groups []product.ShopFeatured) []shopFeaturedView {
	out := make([]shopFeaturedView, len(groups))
	for i, g := range groups {
		out[i] = shopFeaturedView{
			ShopID:   g.ShopID,
			ShopName: g.ShopName,
			Products: toProductViews(g.Products),
		}
	}
	return out
}

type cartView struct {
	ID           string        `json:"id"`
	OwnerID      string        `json:"owner_id"`
	Products     []productView `json:"products"`
	TotalPrice   int64         `json:"total_price"`
	CheckedOutAt *time.Time    `json:"checked_out_at,omitempty"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func toCartView(c *cart.Cart) cartView {
	return cartView{
		ID:           c.ID,
		OwnerID:      c.OwnerID,
		Products:     toProductViews(c.Products),
		TotalPrice:   c.TotalPrice,
		CheckedOutAt: c.CheckedOutAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func toCartViews(carts []cart.Cart) []cartView {
	out := make([]cartView, len(carts))
	for i := range carts {
		out[i] = toCartView(&carts[i])
	}
	return out
}

type orderView struct {
	ID        string    `json:"id"`
	CartID    string    `json:"cart_id"`
	BuyerID   string    `json:"buyer_id"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

func toOrderView(o *order.Order) orderView {
	return orderView{
		ID:        o.ID,
		CartID:    o.CartID,
		BuyerID:   o.BuyerID,
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
	}
}

func toOrderViews(orders []order.Order) []orderView {
	out := make([]orderView, len(orders))
	for i := range orders {
		out[i] = toOrderView(&orders[i])
	}
	return out
}
