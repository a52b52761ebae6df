// internal/repository/postgres/identity_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"realm-gateway/internal/domain/account"
	xerrors "realm-gateway/internal/pkg/errors"
)

const identityColumns = `id, user_id, discord_id, username, discriminator, email, avatar_url, created_at`

type IdentityRepository struct {
	db *pgxpool.Pool
}

func NewIdentityRepository(db *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// FindByDiscordID retrieves an identity by the provider-assigned id.
func (r *IdentityRepository) FindByDiscordID(ctx context.Context, discordID string) (*account.DiscordIdentity, error) {
	query := `
		SELECT ` + identityColumns + `
		FROM users_authentication_methods
		WHERE discord_id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, discordID))
}

// FindByUserID retrieves the identity linked to a user.
func (r *IdentityRepository) FindByUserID(ctx context.Context, userID int64) (*account.DiscordIdentity, error) {
	query := `
		SELECT ` + identityColumns + `
		FROM users_authentication_methods
		WHERE user_id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, userID))
}

// CreateWithNewUser creates the user and its identity inside one
// transaction. When another request won the race on discord_id, the whole
// transaction rolls back (no orphaned user) and ErrDuplicateEntry is
// returned so the caller can retry as an update.
func (r *IdentityRepository) CreateWithNewUser(ctx context.Context, displayname string, identity *account.DiscordIdentity) (*account.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()

	var user account.User
	err = tx.QueryRow(ctx, `
		INSERT INTO users (displayname, created_at)
		VALUES ($1, $2)
		RETURNING id, displayname, created_at
	`, displayname, now).Scan(&user.ID, &user.Displayname, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, xerrors.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO users_authentication_methods
			(user_id, discord_id, username, discriminator, email, avatar_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, user.ID, identity.DiscordID, identity.Username, identity.Discriminator,
		identity.Email, identity.AvatarHash, now).
		Scan(&identity.ID, &identity.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, xerrors.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}
	identity.UserID = user.ID

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return &user, nil
}

// Update refreshes the mutable profile fields of an identity.
func (r *IdentityRepository) Update(ctx context.Context, identity *account.DiscordIdentity) error {
	query := `
		UPDATE users_authentication_methods
		SET username = $1, discriminator = $2, email = $3, avatar_url = $4
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query,
		identity.Username, identity.Discriminator, identity.Email, identity.AvatarHash, identity.ID)
	if err != nil {
		return fmt.Errorf("failed to update identity: %w", err)
	}
	return nil
}

func (r *IdentityRepository) scanOne(row pgx.Row) (*account.DiscordIdentity, error) {
	var ident account.DiscordIdentity
	err := row.Scan(
		&ident.ID, &ident.UserID, &ident.DiscordID, &ident.Username,
		&ident.Discriminator, &ident.Email, &ident.AvatarHash, &ident.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}
	return &ident, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
