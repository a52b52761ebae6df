package account

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists User rows.
type UserRepository interface {
	Create(ctx context.Context, displayname string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
}

// IdentityRepository persists Discord identity rows.
//
// CreateWithNewUser creates a brand-new User together with its identity in
// one atomic step so that two concurrent first logins for the same Discord
// account cannot both create a user. It returns xerrors.ErrDuplicateEntry
// when the discord id already exists, in which case the caller retries the
// update path against the winning row.
type IdentityRepository interface {
	FindByDiscordID(ctx context.Context, discordID string) (*DiscordIdentity, error)
	FindByUserID(ctx context.Context, userID int64) (*DiscordIdentity, error)
	CreateWithNewUser(ctx context.Context, displayname string, identity *DiscordIdentity) (*User, error)
	Update(ctx context.Context, identity *DiscordIdentity) error
}

// SessionRepository persists login sessions.
//
// Upsert inserts the given session or, when a row already exists for the
// same (user, authentication method), refreshes its last-active and expiry
// timestamps. The canonical row is returned either way, so a repeat login
// keeps the original session id.
type SessionRepository interface {
	Upsert(ctx context.Context, session *Session) (*Session, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)
}
