package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/craft-market/internal/domain/user"
)

const (
	userColumns = `id, full_name, email, password_hash, bio, image, address, phone_numbers,
		balance, role, is_admin, created_at`

	createUserSQL = `INSERT INTO users (id, full_name, email, password_hash, bio, image, address, phone_numbers, role, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	getUserByIDSQL    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	getUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	listUsersSQL      = `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	updateUserRoleSQL = `UPDATE users SET role = $2 WHERE id = $1 RETURNING ` + userColumns

	deleteUserSQL = `DELETE FROM users WHERE id = $1`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create persists a new user. A duplicate email maps to user.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.pool.Exec(ctx, createUserSQL,
		u.ID, u.FullName, u.Email, u.PasswordHash, u.Bio, u.Image, u.Address, u.PhoneNumbers,
		u.Role, u.IsAdmin,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrEmailTaken
		}
		return fmt.Errorf("creating user %q: %w", u.Email, err)
	}
	return nil
}

// GetByID returns a single user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.getUser(ctx, getUserByIDSQL, id)
}

// GetByEmail returns a single user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getUser(ctx, getUserByEmailSQL, email)
}

func (r *UserRepository) getUser(ctx context.Context, query, arg string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &u, nil
}

// List returns all users ordered by registration time.
func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.pool.Query(ctx, listUsersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return pgx.CollectRows(rows, scanUser)
}

// UpdateRole sets the account type and returns the updated user.
func (r *UserRepository) UpdateRole(ctx context.Context, id string, role user.Role) (*user.User, error) {
	rows, err := r.pool.Query(ctx, updateUserRoleSQL, id, role)
	if err != nil {
		return nil, fmt.Errorf("updating user %q role: %w", id, err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("updating user %q role: %w", id, err)
	}
	return &u, nil
}

// Delete removes a user. Owned shops, carts, and favourites cascade.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteUserSQL, id)
	if err != nil {
		return fmt.Errorf("deleting user %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Bio, &u.Image, &u.Address, &u.PhoneNumbers,
		&u.Balance, &u.Role, &u.IsAdmin, &u.CreatedAt,
	)
	return u, err
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
