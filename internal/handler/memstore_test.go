package handler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/xenking/craft-market/internal/domain/cart"
	"github.com/xenking/craft-market/internal/domain/order"
	"github.com/xenking/craft-market/internal/domain/product"
	"github.com/xenking/craft-market/internal/domain/shop"
	"github.com/xenking/craft-market/internal/domain/user"

	"github.com/google/uuid"
)

// memStore is a single in-memory backing store shared by all the fake
// repositories so cross-entity operations (ownership, settlement) behave
// like the real database.
type memStore struct {
	mu        sync.Mutex
	users     map[string]*user.User
	shops     map[string]*shop.Shop
	products  map[string]*product.Product
	carts     map[string]*cart.Cart
	orders    map[string]*order.Order
	favs      map[string]bool
	purchases map[string][]string
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[string]*user.User),
		shops:     make(map[string]*shop.Shop),
		products:  make(map[string]*product.Product),
		carts:     make(map[string]*cart.Cart),
		orders:    make(map[string]*order.Order),
		favs:      make(map[string]bool),
		purchases: make(map[string][]string),
	}
}

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.ErrEmailTaken
		}
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *memUserRepo) List(_ context.Context) ([]user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]user.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memUserRepo) UpdateRole(_ context.Context, id string, role user.Role) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	u.Role = role
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

type memShopRepo struct{ s *memStore }

func (r *memShopRepo) Create(_ context.Context, sh *shop.Shop) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *sh
	cp.CreatedAt = time.Now()
	r.s.shops[sh.ID] = &cp
	return nil
}

func (r *memShopRepo) GetByID(_ context.Context, id string) (*shop.Shop, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shops[id]
	if !ok {
		return nil, shop.ErrNotFound
	}
	cp := *sh
	return &cp, nil
}

func (r *memShopRepo) List(_ context.Context, limit int) ([]shop.Shop, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]shop.Shop, 0, len(r.s.shops))
	for _, sh := range r.s.shops {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, *sh)
	}
	return out, nil
}

func (r *memShopRepo) ListByOwner(_ context.Context, ownerID string) ([]shop.Shop, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []shop.Shop
	for _, sh := range r.s.shops {
		if sh.OwnerID == ownerID {
			out = append(out, *sh)
		}
	}
	return out, nil
}

func (r *memShopRepo) SearchByName(_ context.Context, term string) ([]shop.Shop, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []shop.Shop
	for _, sh := range r.s.shops {
		if strings.Contains(strings.ToLower(sh.Name), strings.ToLower(term)) {
			out = append(out, *sh)
		}
	}
	return out, nil
}

func (r *memShopRepo) Update(_ context.Context, id string, params shop.UpdateParams) (*shop.Shop, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shops[id]
	if !ok {
		return nil, shop.ErrNotFound
	}
	if params.Name != nil {
		sh.Name = *params.Name
	}
	if params.Description != nil {
		sh.Description = *params.Description
	}
	if params.Location != nil {
		sh.Location = *params.Location
	}
	if params.Website != nil {
		sh.Website = *params.Website
	}
	cp := *sh
	return &cp, nil
}

func (r *memShopRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.shops[id]; !ok {
		return shop.ErrNotFound
	}
	delete(r.s.shops, id)
	return nil
}

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) Create(_ context.Context, p *product.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	cp.CreatedAt = time.Now()
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) List(_ context.Context, filter product.ListFilter) ([]product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []product.Product
	for _, p := range r.s.products {
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *memProductRepo) ListByOwner(_ context.Context, ownerID string) ([]product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []product.Product
	for _, p := range r.s.products {
		if p.ShopOwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) ListFeatured(_ context.Context, _ int) ([]product.ShopFeatured, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byShop := make(map[string][]product.Product)
	for _, p := range r.s.products {
		if p.Featured {
			byShop[p.ShopID] = append(byShop[p.ShopID], *p)
		}
	}
	out := make([]product.ShopFeatured, 0, len(byShop))
	for shopID, products := range byShop {
		out = append(out, product.ShopFeatured{
			ShopID:   shopID,
			ShopName: r.s.shops[shopID].Name,
			Products: products,
		})
	}
	return out, nil
}

func (r *memProductRepo) Update(_ context.Context, id string, params product.UpdateParams) (*product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	if params.Name != nil {
		p.Name = *params.Name
	}
	if params.Description != nil {
		p.Description = *params.Description
	}
	if params.Manufacturer != nil {
		p.Manufacturer = *params.Manufacturer
	}
	if params.Images != nil {
		p.Images = *params.Images
	}
	if params.Price != nil {
		p.Price = *params.Price
	}
	if params.Discount != nil {
		p.Discount = *params.Discount
	}
	if params.Available != nil {
		p.Available = *params.Available
	}
	if params.Featured != nil {
		p.Featured = *params.Featured
	}
	if params.Type != nil {
		p.Type = *params.Type
	}

	// Open carts holding the product follow the new pricing, like the
	// SQL repository's in-transaction repricing.
	for _, c := range r.s.carts {
		if c.CheckedOutAt != nil {
			continue
		}
		for i := range c.Products {
			if c.Products[i].ID == id {
				c.TotalPrice += p.DiscountedPrice() - c.Products[i].DiscountedPrice()
				c.Products[i] = *p
			}
		}
	}

	cp := *p
	return &cp, nil
}

func (r *memProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return product.ErrNotFound
	}
	for _, c := range r.s.carts {
		for i := range c.Products {
			if c.Products[i].ID == id {
				c.TotalPrice -= p.DiscountedPrice()
				c.Products = append(c.Products[:i], c.Products[i+1:]...)
				break
			}
		}
	}
	delete(r.s.products, id)
	return nil
}

func (r *memProductRepo) AddFavourite(_ context.Context, userID, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := userID + "/" + productID
	if r.s.favs[key] {
		return product.ErrAlreadyFavourite
	}
	r.s.favs[key] = true
	return nil
}

func (r *memProductRepo) RemoveFavourite(_ context.Context, userID, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := userID + "/" + productID
	if !r.s.favs[key] {
		return product.ErrNotFavourite
	}
	delete(r.s.favs, key)
	return nil
}

func (r *memProductRepo) ListFavourites(_ context.Context, userID string) ([]product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []product.Product
	for key := range r.s.favs {
		uid, pid, _ := strings.Cut(key, "/")
		if uid != userID {
			continue
		}
		if p, ok := r.s.products[pid]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) ListPurchased(_ context.Context, userID string) ([]product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := make(map[string]bool)
	var out []product.Product
	for _, pid := range r.s.purchases[userID] {
		if seen[pid] {
			continue
		}
		seen[pid] = true
		if p, ok := r.s.products[pid]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

type memCartRepo struct{ s *memStore }

func (r *memCartRepo) Create(_ context.Context, c *cart.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	cp.UpdatedAt = time.Now()
	r.s.carts[c.ID] = &cp
	return nil
}

func (r *memCartRepo) GetByID(_ context.Context, id string) (*cart.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.carts[id]
	if !ok {
		return nil, cart.ErrNotFound
	}
	cp := *c
	cp.Products = append([]product.Product(nil), c.Products...)
	return &cp, nil
}

func (r *memCartRepo) ListByOwner(_ context.Context, ownerID string) ([]cart.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []cart.Cart
	for _, c := range r.s.carts {
		if c.OwnerID == ownerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memCartRepo) AddProduct(_ context.Context, cartID string, p *product.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.carts[cartID]
	if !ok {
		return cart.ErrNotFound
	}
	for i := range c.Products {
		if c.Products[i].ID == p.ID {
			return cart.ErrDuplicateProduct
		}
	}
	c.Products = append(c.Products, *p)
	c.TotalPrice += p.DiscountedPrice()
	c.UpdatedAt = time.Now()
	return nil
}

func (r *memCartRepo) RemoveProduct(_ context.Context, cartID string, p *product.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.carts[cartID]
	if !ok {
		return cart.ErrNotFound
	}
	for i := range c.Products {
		if c.Products[i].ID == p.ID {
			c.Products = append(c.Products[:i], c.Products[i+1:]...)
			c.TotalPrice -= p.DiscountedPrice()
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return cart.ErrNotInCart
}

func (r *memCartRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.carts[id]; !ok {
		return cart.ErrNotFound
	}
	delete(r.s.carts, id)
	return nil
}

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) CreateFromCart(_ context.Context, c *cart.Cart, buyerID string) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.carts[c.ID]
	if !ok {
		return nil, cart.ErrNotFound
	}
	if stored.CheckedOutAt != nil {
		return nil, cart.ErrAlreadyCheckedOut
	}
	buyer, ok := r.s.users[buyerID]
	if !ok {
		return nil, user.ErrNotFound
	}
	if len(stored.Products) == 0 {
		return nil, order.ErrEmptyCart
	}

	// Settlement prices line items as the catalog stands now, like the
	// SQL repository's in-transaction line-item query.
	var total int64
	for i := range stored.Products {
		if p, ok := r.s.products[stored.Products[i].ID]; ok {
			total += p.DiscountedPrice()
		}
	}
	if total > buyer.Balance {
		return nil, cart.ErrInsufficientBalance
	}

	for i := range stored.Products {
		p, ok := r.s.products[stored.Products[i].ID]
		if !ok {
			continue
		}
		price := p.DiscountedPrice()
		buyer.Balance -= price
		sh := r.s.shops[p.ShopID]
		if seller, ok := r.s.users[sh.OwnerID]; ok {
			seller.Balance += price
		}
		r.s.purchases[buyerID] = append(r.s.purchases[buyerID], p.ID)
	}

	o := &order.Order{
		ID:        uuid.New().String(),
		CartID:    stored.ID,
		BuyerID:   buyerID,
		Total:     total,
		CreatedAt: time.Now(),
	}
	r.s.orders[o.ID] = o

	now := time.Now()
	stored.CheckedOutAt = &now
	stored.TotalPrice = 0
	stored.Products = nil

	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) ListByBuyer(_ context.Context, buyerID string) ([]order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []order.Order
	for _, o := range r.s.orders {
		if o.BuyerID == buyerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) List(_ context.Context) ([]order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]order.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		out = append(out, *o)
	}
	return out, nil
}
