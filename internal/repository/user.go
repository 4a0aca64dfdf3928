package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/songbook/songbook/internal/model"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

const userColumns = `id, email, name, password_hash, created_at`

// CreateUser stores user with a lower-cased email and fills in ID and CreatedAt.
// A second account for the same address yields ErrEmailExists.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at`,
		normalizeEmail(user.Email), user.Name, user.PasswordHash,
	)
	switch err := row.Scan(&user.ID, &user.CreatedAt); {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return ErrEmailExists
	default:
		return storeError("create user", err)
	}
}

// GetUserByID loads a user by primary key.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return r.findUser(ctx, "get user by id", `id = $1`, id)
}

// GetUserByEmail loads a user by email, ignoring case and surrounding spaces.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findUser(ctx, "get user by email", `LOWER(email) = $1`, normalizeEmail(email))
}

func (r *Repository) findUser(ctx context.Context, op, where string, arg any) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var u model.User
	err := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, storeError(op, err)
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
