package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/craft-market/internal/domain/auth"
	"github.com/xenking/craft-market/internal/domain/product"
	"github.com/xenking/craft-market/internal/domain/user"
)

type mockCartRepo struct {
	cart *Cart

	addedProduct   string
	removedProduct string
	deletedID      string
}

func (m *mockCartRepo) Create(_ context.Context, c *Cart) error {
	m.cart = c
	return nil
}

func (m *mockCartRepo) GetByID(_ context.Context, id string) (*Cart, error) {
	if m.cart == nil || m.cart.ID != id {
		return nil, ErrNotFound
	}
	return m.cart, nil
}

func (m *mockCartRepo) ListByOwner(_ context.Context, _ string) ([]Cart, error) {
	return nil, nil
}

func (m *mockCartRepo) AddProduct(_ context.Context, _ string, p *product.Product) error {
	m.addedProduct = p.ID
	m.cart.Products = append(m.cart.Products, *p)
	m.cart.TotalPrice += p.DiscountedPrice()
	return nil
}

func (m *mockCartRepo) RemoveProduct(_ context.Context, _ string, p *product.Product) error {
	m.removedProduct = p.ID
	for i := range m.cart.Products {
		if m.cart.Products[i].ID == p.ID {
			m.cart.Products = append(m.cart.Products[:i], m.cart.Products[i+1:]...)
			break
		}
	}
	m.cart.TotalPrice -= p.DiscountedPrice()
	return nil
}

func (m *mockCartRepo) Delete(_ context.Context, id string) error {
	m.deletedID = id
	return nil
}

type mockProductRepo struct {
	product *product.Product
}

func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	if m.product == nil || m.product.ID != id {
		return nil, product.ErrNotFound
	}
	return m.product, nil
}

func (m *mockProductRepo) List(_ context.Context, _ product.ListFilter) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) ListByOwner(_ context.Context, _ string) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) ListFeatured(_ context.Context, _ int) ([]product.ShopFeatured, error) {
	return nil, nil
}

func (m *mockProductRepo) Update(_ context.Context, _ string, _ product.UpdateParams) (*product.Product, error) {
	return nil, product.ErrNotFound
}

func (m *mockProductRepo) Delete(_ context.Context, _ string) error { return nil }

func (m *mockProductRepo) AddFavourite(_ context.Context, _, _ string) error    { return nil }
func (m *mockProductRepo) RemoveFavourite(_ context.Context, _, _ string) error { return nil }

func (m *mockProductRepo) ListFavourites(_ context.Context, _ string) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) ListPurchased(_ context.Context, _ string) ([]product.Product, error) {
	return nil, nil
}

type mockUserRepo struct {
	users map[string]*user.User
}

func usersWith(us ...*user.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]*user.User)}
	for _, u := range us {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Create(_ context.Context, _ *user.User) error { return nil }

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, _ string) (*user.User, error) {
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) List(_ context.Context) ([]user.User, error) { return nil, nil }

func (m *mockUserRepo) UpdateRole(_ context.Context, _ string, _ user.Role) (*user.User, error) {
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) Delete(_ context.Context, _ string) error { return nil }

func customer(balance int64) *user.User {
	return &user.User{ID: "buyer", Role: user.RoleCustomer, Balance: balance}
}

func availableProduct(price int64, discount int) *product.Product {
	return &product.Product{
		ID:        "p1",
		Price:     price,
		Discount:  discount,
		Available: true,
	}
}

func TestService_AddProduct(t *testing.T) {
	t.Run("adds and grows the total by the discounted price", func(t *testing.T) {
		carts := &mockCartRepo{cart: &Cart{ID: "c1", OwnerID: "buyer"}}
		products := &mockProductRepo{product: availableProduct(300, 10)}
		svc := NewService(carts, products, usersWith())

		c, err := svc.AddProduct(context.Background(), customer(1000), "c1", "p1")
		require.NoError(t, err)

		assert.Equal(t, "p1", carts.addedProduct)
		assert.Equal(t, int64(270), c.TotalPrice)
		assert.True(t, c.Contains("p1"))
	})

	t.Run("sellers cannot shop", func(t *testing.T) {
		carts := &mockCartRepo{cart: &Cart{ID: "c1", OwnerID: "seller"}}
		products := &mockProductRepo{product: availableProduct(100, 0)}
		svc := NewService(carts, products, usersWith())

		seller := &user.User{ID: "seller", Role: user.RoleSeller, Balance: 1000}
		_, err := svc.AddProduct(context.Background(), seller, "c1", "p1")

		var roleErr *auth.RoleError
		assert.ErrorAs(t, err, &roleErr)
		assert.Empty(t, carts.addedProduct)
	})

	t.Run("only the owner may add", func(t *testing.T) {
		carts := &mockCartRepo{cart: &Cart{ID: "c1", OwnerID: "someone-else"}}
		products := &mockProductRepo{product: availableProduct(100, 0)}
		svc := NewService(carts, products, usersWith())

		_, err := svc.AddProduct(context.Background(), customer(1000), "c1", "p1")

		var roleErr *auth.RoleError
		assert.ErrorAs(t, err, &roleErr)
	})

	t.Run("admin may add to any cart", func(t *testing.T) {
		carts := &mockCartRepo{cart: &Cart{ID: "c1", OwnerID: "someone-else"}}
		products := &mockProductRepo{product: availableProduct(100, 0)}
		owner := &user.User{ID: "someone-else", Role: user.RoleCustomer, Balance: 500}
		svc := NewService(carts, products, usersWith(owner))

		admin := &user.User{ID: "admin", Role: user.RoleCustomer, IsAdmin: true, Balance: 1000}
		_, err := svc.AddProduct(context.Background(), admin, "c1", "p1")
		require.NoError(t, err)
	})

	t.Run("admin add is limited by the owner's balance", func(t *testing.T) {
		carts := &mockCartRepo{cart: &Cart{ID: "c1", OwnerID: "someone-else"}}
		products := &mockProductRepo{product: availableProduct(100, 0)}
		owner := &user.User{ID: "someone-else", Role: user.RoleCustomer, Balance: 50}
		svc := NewService(carts, products, usersWith(owner))

		admin := &user.User{ID: "admin", Role: user.RoleCustomer, IsAdmin: true, Balance: 1000}
		_, err := svc.AddProduct(context.Background(), admin, "c1", "p1")
		assert.ErrorIs(t, err, ErrInsufficientBalance)
		assert.Empty(t, carts.addedProduct)
	})

	t.Run("consumed cart rejects mutation", func(t *testing.T) {
		now := time.Now()
		carts := &mockCartRepo{cart: &Cart{ID: "c1", OwnerID: "buyer", CheckedOutAt: &now}}
		products := &mockProductRepo{product: availableProduct(100, 0)}
		svc := NewService(carts, products, usersWith())

		_, err := svc.AddProduct(context.Background(), customer(1000), "c1", "p1")
		assert.ErrorIs(t, err, ErrAlreadyCheckedOut)
	})

	t.Run("total plus price above balance is rejected", func(t *testing.T) {
		carts := &mockCartRepo{cart: &Cart{ID: "c1", OwnerID: "buyer", TotalPrice: 800}}
		products := &mockProductRepo{product: availableProduct(300, 0)}
		svc := NewService(carts, products, usersWith())

		_, err := svc.AddProduct(context.Background(), customer(1000), "c1", "p1")
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("discount can make an item affordable", func(t *testing.T) {
		carts := &mockCartRepo{cart: &Cart{ID: "c1", OwnerID: "buyer", TotalPrice: 800}}
		products := &mockProductRepo{product: availableProduct(300, 50)}
		svc := NewService(carts, products, usersWith())

		c, err := svc.AddProduct(context.Background(), customer(1000), "c1", "p1")
		require.NoError(t, err)
		assert.Equal(t, int64(950), c.TotalPrice)
	})

	t.Run("unavailable product is rejected", func(t *testing.T) {
		p := availableProduct(100, 0)
		p.Available = false
		carts := &mockCartRepo{cart: &Cart{ID: "c1", OwnerID: "buyer"}}
		products := &mockProductRepo{product: p}
		svc := NewService(carts, products, usersWith())

		_, err := svc.AddProduct(context.Background(), customer(1000), "c1", "p1")
		assert.ErrorIs(t, err, product.ErrUnavailable)
	})

	t.Run("duplicate product is rejected", func(t *testing.T) {
		p := availableProduct(100, 0)
		carts := &mockCartRepo{cart: &Cart{
			ID:         "c1",
			OwnerID:    "buyer",
			Products:   []product.Product{*p},
			TotalPrice: 100,
		}}
		products := &mockProductRepo{product: p}
		svc := NewService(carts, products, usersWith())

		_, err := svc.AddProduct(context.Background(), customer(1000), "c1", "p1")
		assert.ErrorIs(t, err, ErrDuplicateProduct)
	})

	t.Run("unknown product", func(t *testing.T) {
		carts := &mockCartRepo{cart: &Cart{ID: "c1", OwnerID: "buyer"}}
		svc := NewService(carts, &mockProductRepo{}, usersWith())

		_, err := svc.AddProduct(context.Background(), customer(1000), "c1", "missing")
		assert.ErrorIs(t, err, product.ErrNotFound)
	})
}

func TestService_RemoveProduct(t *testing.T) {
	t.Run("removes and shrinks the total", func(t *testing.T) {
		p := availableProduct(300, 10)
		carts := &mockCartRepo{cart: &Cart{
			ID:         "c1",
			OwnerID:    "buyer",
			Products:   []product.Product{*p},
			TotalPrice: 270,
		}}
		products := &mockProductRepo{product: p}
		svc := NewService(carts, products, usersWith())

		c, err := svc.RemoveProduct(context.Background(), customer(1000), "c1", "p1")
		require.NoError(t, err)

		assert.Equal(t, "p1", carts.removedProduct)
		assert.Equal(t, int64(0), c.TotalPrice)
		assert.False(t, c.Contains("p1"))
	})

	t.Run("product not in cart", func(t *testing.T) {
		carts := &mockCartRepo{cart: &Cart{ID: "c1", OwnerID: "buyer"}}
		products := &mockProductRepo{product: availableProduct(300, 10)}
		svc := NewService(carts, products, usersWith())

		_, err := svc.RemoveProduct(context.Background(), customer(1000), "c1", "p1")
		assert.ErrorIs(t, err, ErrNotInCart)
		assert.Empty(t, carts.removedProduct)
	})

	t.Run("consumed cart rejects removal", func(t *testing.T) {
		now := time.Now()
		p := availableProduct(300, 10)
		carts := &mockCartRepo{cart: &Cart{
			ID:           "c1",
			OwnerID:      "buyer",
			Products:     []product.Product{*p},
			TotalPrice:   270,
			CheckedOutAt: &now,
		}}
		products := &mockProductRepo{product: p}
		svc := NewService(carts, products, usersWith())

		_, err := svc.RemoveProduct(context.Background(), customer(1000), "c1", "p1")
		assert.ErrorIs(t, err, ErrAlreadyCheckedOut)
	})
}

func TestService_CreateAndGet(t *testing.T) {
	carts := &mockCartRepo{}
	svc := NewService(carts, &mockProductRepo{}, usersWith())

	owner := customer(0)
	c, err := svc.Create(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, c.OwnerID)
	assert.NotEmpty(t, c.ID)

	got, err := svc.Get(context.Background(), owner, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	stranger := &user.User{ID: "stranger", Role: user.RoleCustomer}
	_, err = svc.Get(context.Background(), stranger, c.ID)
	var roleErr *auth.RoleError
	assert.ErrorAs(t, err, &roleErr)
}

func TestService_Delete(t *testing.T) {
	carts := &mockCartRepo{cart: &Cart{ID: "c1", OwnerID: "buyer"}}
	svc := NewService(carts, &mockProductRepo{}, usersWith())

	stranger := &user.User{ID: "stranger", Role: user.RoleCustomer}
	err := svc.Delete(context.Background(), stranger, "c1")
	var roleErr *auth.RoleError
	assert.ErrorAs(t, err, &roleErr)

	require.NoError(t, svc.Delete(context.Background(), customer(0), "c1"))
	assert.Equal(t, "c1", carts.deletedID)
}
