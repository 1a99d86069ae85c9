// Package auth holds credential handling, bearer token issuance, and the
// role predicates that gate every mutating operation in the marketplace.
package auth

import (
	"fmt"

	"github.com/xenking/craft-market/internal/domain/user"
)

// RoleError indicates the acting user lacks the role or ownership required
// for an operation.
type RoleError struct {
	Required string
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("only %s can perform this action", e.Required)
}

// ErrRole constructs a RoleError for the given required role.
func ErrRole(required string) *RoleError {
	return &RoleError{Required: required}
}

// CanSell reports whether u may create shops and list products.
func CanSell(u *user.User) bool {
	return u.IsAdmin || u.Role == user.RoleSeller
}

// CanShop reports whether u may add products to carts and place orders.
// Sellers cannot shop; customers and admin accounts can.
func CanShop(u *user.User) bool {
	return u.Role != user.RoleSeller
}

// CanModify reports whether u may mutate a resource owned by ownerID.
// Covers shops, products (via the owning shop's owner), and carts.
func CanModify(u *user.User, ownerID string) bool {
	return u.IsAdmin || u.ID == ownerID
}

// CanDeleteUser reports whether requester may delete the target account.
func CanDeleteUser(requester *user.User, targetID string) bool {
	return requester.ID == targetID || requester.IsAdmin
}
