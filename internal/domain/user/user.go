package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for user lookups and registration.
var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Role determines which marketplace actions a user may perform.
type Role string

const (
	// RoleCustomer users shop: they build carts and place orders.
	RoleCustomer Role = "CUSTOMER"
	// RoleSeller users run shops and list products, but cannot shop.
	RoleSeller Role = "SELLER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleSeller
}

// Toggled returns the opposite account type.
func (r Role) Toggled() Role {
	if r == RoleCustomer {
		return RoleSeller
	}
	return RoleCustomer
}

// User is a registered marketplace account. Balance is held in integer
// minor units and is the single source of funds for checkout transfers.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Bio          string
	Image        string
	Address      string
	PhoneNumbers []string
	Balance      int64
	Role         Role
	IsAdmin      bool
	CreatedAt    time.Time
}

// Repository defines persistence operations for users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	UpdateRole(ctx context.Context, id string, role Role) (*User, error)
	Delete(ctx context.Context, id string) error
}
