package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/craft-market/internal/domain/user"
)

type mockUserRepo struct {
	created   *user.User
	createErr error

	byEmail    *user.User
	byEmailErr error

	updatedRole user.Role
	deletedID   string
}

func (m *mockUserRepo) Create(_ context.Context, u *user.User) error {
	m.created = u
	return m.createErr
}

func (m *mockUserRepo) GetByID(_ context.Context, _ string) (*user.User, error) {
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, _ string) (*user.User, error) {
	return m.byEmail, m.byEmailErr
}

func (m *mockUserRepo) List(_ context.Context) ([]user.User, error) {
	return nil, nil
}

func (m *mockUserRepo) UpdateRole(_ context.Context, id string, role user.Role) (*user.User, error) {
	m.updatedRole = role
	return &user.User{ID: id, Role: role}, nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	m.deletedID = id
	return nil
}

func TestService_Register_PasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "too short", password: "a@1", wantErr: true},
		{name: "no special character", password: "longenough", wantErr: true},
		{name: "valid with at sign", password: "pass@word", wantErr: false},
		{name: "valid with hash", password: "pa#ss", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockUserRepo{}
			svc := NewService(repo, NewTokens([]byte("s"), time.Hour), nil)

			_, err := svc.Register(context.Background(), RegisterRequest{
				FullName: "Alice",
				Email:    "alice@example.com",
				Password: tt.password,
			})
			if tt.wantErr {
				var policyErr *PasswordPolicyError
				assert.ErrorAs(t, err, &policyErr)
				assert.Nil(t, repo.created)
			} else {
				require.NoError(t, err)
				require.NotNil(t, repo.created)
			}
		})
	}
}

func TestService_Register_UnknownRole(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewService(repo, NewTokens([]byte("s"), time.Hour), nil)

	_, err := svc.Register(context.Background(), RegisterRequest{
		FullName: "Alice",
		Email:    "alice@example.com",
		Password: "pass@word",
		Role:     user.Role("WIZARD"),
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.Nil(t, repo.created)
}

func TestService_Register_Defaults(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewService(repo, NewTokens([]byte("s"), time.Hour), nil)

	u, err := svc.Register(context.Background(), RegisterRequest{
		FullName: "Alice",
		Email:    "alice@example.com",
		Password: "pass@word",
	})
	require.NoError(t, err)

	assert.Equal(t, user.RoleCustomer, u.Role)
	assert.False(t, u.IsAdmin)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "pass@word", u.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pass@word")))
}

func TestService_Register_AdminAllowlist(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewService(repo, NewTokens([]byte("s"), time.Hour), []string{"Root@Example.com"})

	u, err := svc.Register(context.Background(), RegisterRequest{
		FullName: "Root",
		Email:    "root@example.com",
		Password: "pass@word",
	})
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)

	other, err := svc.Register(context.Background(), RegisterRequest{
		FullName: "Bob",
		Email:    "bob@example.com",
		Password: "pass@word",
	})
	require.NoError(t, err)
	assert.False(t, other.IsAdmin)
}

func TestService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pass@word"), bcrypt.MinCost)
	require.NoError(t, err)

	tokens := NewTokens([]byte("s"), time.Hour)

	t.Run("valid credentials issue a token", func(t *testing.T) {
		repo := &mockUserRepo{byEmail: &user.User{
			Email:        "alice@example.com",
			PasswordHash: string(hash),
		}}
		svc := NewService(repo, tokens, nil)

		raw, err := svc.Login(context.Background(), "alice@example.com", "pass@word")
		require.NoError(t, err)

		email, err := tokens.Verify(raw)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", email)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := &mockUserRepo{byEmail: &user.User{
			Email:        "alice@example.com",
			PasswordHash: string(hash),
		}}
		svc := NewService(repo, tokens, nil)

		_, err := svc.Login(context.Background(), "alice@example.com", "wrong@pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := &mockUserRepo{byEmailErr: user.ErrNotFound}
		svc := NewService(repo, tokens, nil)

		_, err := svc.Login(context.Background(), "ghost@example.com", "pass@word")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_ResolveToken(t *testing.T) {
	tokens := NewTokens([]byte("s"), time.Hour)
	raw, err := tokens.Issue("alice@example.com", time.Now())
	require.NoError(t, err)

	t.Run("resolves the subject", func(t *testing.T) {
		repo := &mockUserRepo{byEmail: &user.User{ID: "u1", Email: "alice@example.com"}}
		svc := NewService(repo, tokens, nil)

		u, err := svc.ResolveToken(context.Background(), raw)
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
	})

	t.Run("subject no longer exists", func(t *testing.T) {
		repo := &mockUserRepo{byEmailErr: user.ErrNotFound}
		svc := NewService(repo, tokens, nil)

		_, err := svc.ResolveToken(context.Background(), raw)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestService_SwitchRole(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewService(repo, NewTokens([]byte("s"), time.Hour), nil)

	u, err := svc.SwitchRole(context.Background(), &user.User{ID: "u1", Role: user.RoleCustomer})
	require.NoError(t, err)
	assert.Equal(t, user.RoleSeller, u.Role)

	u, err = svc.SwitchRole(context.Background(), &user.User{ID: "u1", Role: user.RoleSeller})
	require.NoError(t, err)
	assert.Equal(t, user.RoleCustomer, u.Role)
}

func TestService_DeleteUser(t *testing.T) {
	t.Run("owner deletes own account", func(t *testing.T) {
		repo := &mockUserRepo{}
		svc := NewService(repo, NewTokens([]byte("s"), time.Hour), nil)

		err := svc.DeleteUser(context.Background(), &user.User{ID: "u1"}, "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1", repo.deletedID)
	})

	t.Run("admin deletes any account", func(t *testing.T) {
		repo := &mockUserRepo{}
		svc := NewService(repo, NewTokens([]byte("s"), time.Hour), nil)

		err := svc.DeleteUser(context.Background(), &user.User{ID: "admin", IsAdmin: true}, "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1", repo.deletedID)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		repo := &mockUserRepo{}
		svc := NewService(repo, NewTokens([]byte("s"), time.Hour), nil)

		err := svc.DeleteUser(context.Background(), &user.User{ID: "u2"}, "u1")
		var roleErr *RoleError
		assert.ErrorAs(t, err, &roleErr)
		assert.Empty(t, repo.deletedID)
	})
}
