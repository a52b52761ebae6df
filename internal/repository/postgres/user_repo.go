// internal/repository/postgres/user_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"realm-gateway/internal/domain/account"
	xerrors "realm-gateway/internal/pkg/errors"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user with the given display name.
func (r *UserRepository) Create(ctx context.Context, displayname string) (*account.User, error) {
	query := `
		INSERT INTO users (displayname, created_at)
		VALUES ($1, $2)
		RETURNING id, displayname, created_at
	`

	var user account.User
	err := r.db.QueryRow(ctx, query, displayname, time.Now()).
		Scan(&user.ID, &user.Displayname, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, xerrors.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// FindByID retrieves a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*account.User, error) {
	query := `
		SELECT id, displayname, created_at
		FROM users
		WHERE id = $1
	`

	var user account.User
	err := r.db.QueryRow(ctx, query, id).
		Scan(&user.ID, &user.Displayname, &user.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}
