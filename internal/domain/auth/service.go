package auth

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/craft-market/internal/domain/user"
)

// ErrInvalidCredentials is returned by Login on an unknown email or a
// password mismatch. The message deliberately does not reveal which.
var ErrInvalidCredentials = errors.New("invalid login credentials provided")

// ErrInvalidRole is returned by Register when the requested account type is
// not one of the known roles.
var ErrInvalidRole = errors.New("unknown account type")

// PasswordPolicyError describes a rejected registration password.
type PasswordPolicyError struct {
	Reason string
}

func (e *PasswordPolicyError) Error() string {
	return e.Reason
}

const minPasswordLen = 5

// passwordSpecials are the characters of which at least one must appear in
// a registration password.
const passwordSpecials = "@#$&!"

// RegisterRequest holds the input for creating a new account.
type RegisterRequest struct {
	FullName     string
	Email        string
	Password     string
	Bio          string
	Image        string
	Address      string
	PhoneNumbers []string
	Role         user.Role
}

// Service implements registration, login, and token resolution on top of
// the user repository.
type Service struct {
	users       user.Repository
	tokens      *Tokens
	adminEmails map[string]struct{}
}

// NewService creates an auth Service. adminEmails is the configured
// allowlist of addresses that register with the admin flag set.
func NewService(users user.Repository, tokens *Tokens, adminEmails []string) *Service {
	allow := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		allow[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &Service{
		users:       users,
		tokens:      tokens,
		adminEmails: allow,
	}
}

// Register validates the password policy, hashes the credential, and
// creates the account. The admin flag is derived solely from the configured
// allowlist, never from the request.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*user.User, error) {
	if err := checkPasswordPolicy(req.Password); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = user.RoleCustomer
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	_, isAdmin := s.adminEmails[strings.ToLower(req.Email)]

	u := &user.User{
		ID:           uuid.New().String(),
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Bio:          req.Bio,
		Image:        req.Image,
		Address:      req.Address,
		PhoneNumbers: req.PhoneNumbers,
		Role:         role,
		IsAdmin:      isAdmin,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies the credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", errors.Wrap(err, "lookup user")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(u.Email, time.Now())
}

// ResolveToken verifies a bearer token and loads the user it refers to.
func (s *Service) ResolveToken(ctx context.Context, raw string) (*user.User, error) {
	email, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, errors.Wrap(err, "resolve token subject")
	}
	return u, nil
}

// SwitchRole toggles the account type of the authenticated user between
// customer and seller.
func (s *Service) SwitchRole(ctx context.Context, u *user.User) (*user.User, error) {
	return s.users.UpdateRole(ctx, u.ID, u.Role.Toggled())
}

// DeleteUser removes the target account. Only the account owner or an
// admin may delete it.
func (s *Service) DeleteUser(ctx context.Context, requester *user.User, targetID string) error {
	if !CanDeleteUser(requester, targetID) {
		return ErrRole("OWNER")
	}
	return s.users.Delete(ctx, targetID)
}

func checkPasswordPolicy(password string) error {
	if len(password) < minPasswordLen {
		return &PasswordPolicyError{Reason: "your password should at least be 5 characters long"}
	}
	if !strings.ContainsAny(password, passwordSpecials) {
		return &PasswordPolicyError{Reason: "your password should contain at least one of the special characters: [@, #, $, &, !]"}
	}
	return nil
}
