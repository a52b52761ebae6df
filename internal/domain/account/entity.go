package account

import (
	"time"

	"github.com/google/uuid"
)

// User is the game-account holder. A user is created on first successful
// login from any identity provider and is the parent of the linked
// authentication methods.
type User struct {
	ID          int64     `json:"id" db:"id"`
	Displayname string    `json:"displayname" db:"displayname"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// DiscordIdentity binds a Discord account to exactly one User. The
// provider-assigned DiscordID is globally unique; the mutable profile
// fields are refreshed on every login.
type DiscordIdentity struct {
	ID            int64     `json:"id" db:"id"`
	UserID        int64     `json:"user_id" db:"user_id"`
	DiscordID     string    `json:"discord_id" db:"discord_id"`
	Username      string    `json:"username" db:"username"`
	Discriminator string    `json:"discriminator" db:"discriminator"`
	Email         string    `json:"email" db:"email"`
	AvatarHash    string    `json:"avatar_url" db:"avatar_url"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Session is one authenticated login session. At most one session exists
// per (user, authentication method); a repeat login refreshes the existing
// row instead of creating a new one. Expiry is enforced at the token
// layer, the row itself is bookkeeping.
type Session struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	Method       string    `json:"authentication_method" db:"authentication_method"`
	MethodRef    int64     `json:"authentication_method_id" db:"authentication_method_id"`
	LastActiveAt time.Time `json:"last_active_at" db:"last_active_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at"`
}
