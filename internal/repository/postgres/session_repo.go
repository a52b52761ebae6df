// internal/repository/postgres/session_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"realm-gateway/internal/domain/account"
	xerrors "realm-gateway/internal/pkg/errors"
)

const sessionColumns = `id, user_id, authentication_method, authentication_method_id, last_active_at, created_at, expires_at`

type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// Upsert inserts a session or refreshes the existing row for the same
// (user, authentication method). The unique constraint on that pair keeps
// at most one active session per method; the returned row carries the
// canonical session id.
func (r *SessionRepository) Upsert(ctx context.Context, session *account.Session) (*account.Session, error) {
	query := `
		INSERT INTO users_sessions
			(id, user_id, authentication_method, authentication_method_id,
			 last_active_at, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $5, $6)
		ON CONFLICT (user_id, authentication_method)
		DO UPDATE SET
			last_active_at = EXCLUDED.last_active_at,
			expires_at     = EXCLUDED.expires_at
		RETURNING ` + sessionColumns + `
	`

	var out account.Session
	err := r.db.QueryRow(ctx, query,
		session.ID, session.UserID, session.Method, session.MethodRef,
		session.LastActiveAt, session.ExpiresAt,
	).Scan(
		&out.ID, &out.UserID, &out.Method, &out.MethodRef,
		&out.LastActiveAt, &out.CreatedAt, &out.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert session: %w", err)
	}

	return &out, nil
}

// FindByID retrieves a session by its id.
func (r *SessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM users_sessions
		WHERE id = $1
	`

	var out account.Session
	err := r.db.QueryRow(ctx, query, id).Scan(
		&out.ID, &out.UserID, &out.Method, &out.MethodRef,
		&out.LastActiveAt, &out.CreatedAt, &out.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return &out, nil
}
