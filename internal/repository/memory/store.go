// Package memory holds mutex-guarded in-memory implementations of the
// account repositories. They emulate the unique constraints the Postgres
// schema enforces (discord_id, (user, method)) so service-level tests
// exercise the same conflict behavior without a database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"realm-gateway/internal/domain/account"
	xerrors "realm-gateway/internal/pkg/errors"
)

// Store is the shared backing state. The repository views returned by
// Users, Identities and Sessions all lock the same mutex, so cross-entity
// operations (user+identity creation) stay atomic.
type Store struct {
	mu sync.Mutex

	nextUserID     int64
	nextIdentityID int64

	users      map[int64]account.User
	identities map[int64]account.DiscordIdentity
	sessions   map[uuid.UUID]account.Session
}

func NewStore() *Store {
	return &Store{
		nextUserID:     1,
		nextIdentityID: 1,
		users:          make(map[int64]account.User),
		identities:     make(map[int64]account.DiscordIdentity),
		sessions:       make(map[uuid.UUID]account.Session),
	}
}

func (s *Store) Users() account.UserRepository { return &userRepo{s} }

func (s *Store) Identities() account.IdentityRepository { return &identityRepo{s} }

func (s *Store) Sessions() account.SessionRepository { return &sessionRepo{s} }

func (s *Store) createUserLocked(displayname string) *account.User {
	user := account.User{
		ID:          s.nextUserID,
		Displayname: displayname,
		CreatedAt:   time.Now(),
	}
	s.nextUserID++
	s.users[user.ID] = user
	return &user
}

// ---------- UserRepository ----------

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, displayname string) (*account.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.createUserLocked(displayname), nil
}

func (r *userRepo) FindByID(ctx context.Context, id int64) (*account.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return &user, nil
}

// ---------- IdentityRepository ----------

type identityRepo struct{ s *Store }

func (r *identityRepo) FindByDiscordID(ctx context.Context, discordID string) (*account.DiscordIdentity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, ident := range r.s.identities {
		if ident.DiscordID == discordID {
			out := ident
			return &out, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *identityRepo) FindByUserID(ctx context.Context, userID int64) (*account.DiscordIdentity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, ident := range r.s.identities {
		if ident.UserID == userID {
			out := ident
			return &out, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *identityRepo) CreateWithNewUser(ctx context.Context, displayname string, identity *account.DiscordIdentity) (*account.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, ident := range r.s.identities {
		if ident.DiscordID == identity.DiscordID {
			return nil, xerrors.ErrDuplicateEntry
		}
	}

	user := r.s.createUserLocked(displayname)

	identity.ID = r.s.nextIdentityID
	r.s.nextIdentityID++
	identity.UserID = user.ID
	identity.CreatedAt = time.Now()
	r.s.identities[identity.ID] = *identity

	return user, nil
}

func (r *identityRepo) Update(ctx context.Context, identity *account.DiscordIdentity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.identities[identity.ID]; !ok {
		return xerrors.ErrNotFound
	}
	r.s.identities[identity.ID] = *identity
	return nil
}

// ---------- SessionRepository ----------

type sessionRepo struct{ s *Store }

func (r *sessionRepo) Upsert(ctx context.Context, session *account.Session) (*account.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, existing := range r.s.sessions {
		if existing.UserID == session.UserID && existing.Method == session.Method {
			existing.LastActiveAt = session.LastActiveAt
			existing.ExpiresAt = session.ExpiresAt
			r.s.sessions[id] = existing
			out := existing
			return &out, nil
		}
	}

	stored := *session
	stored.CreatedAt = session.LastActiveAt
	r.s.sessions[stored.ID] = stored
	out := stored
	return &out, nil
}

func (r *sessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*account.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session, ok := r.s.sessions[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return &session, nil
}

// ---------- Test helpers ----------

// CountUsers reports the number of user rows.
func (s *Store) CountUsers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// CountIdentities reports the number of identity rows.
func (s *Store) CountIdentities() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.identities)
}

// CountSessions reports the number of session rows.
func (s *Store) CountSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// DeleteUser removes a user row, leaving any identity pointing at it
// orphaned. Used to reproduce the recovery path in tests.
func (s *Store) DeleteUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}
