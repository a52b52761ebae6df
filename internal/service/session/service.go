// internal/service/session/service.go
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"realm-gateway/internal/domain/account"
	xerrors "realm-gateway/internal/pkg/errors"
	"realm-gateway/internal/pkg/token"
)

// MethodDiscord is the authentication method name for Discord logins.
const MethodDiscord = "discord"

// Service owns session rows and their signed tokens. One session exists
// per (user, method); a repeat login refreshes it and mints a fresh
// token.
type Service struct {
	sessions account.SessionRepository
	tokens   *token.Service
	cache    *Cache
	logger   *zap.Logger
}

func NewService(sessions account.SessionRepository, tokens *token.Service, cache *Cache, logger *zap.Logger) *Service {
	return &Service{
		sessions: sessions,
		tokens:   tokens,
		cache:    cache,
		logger:   logger,
	}
}

// Begin creates or refreshes the user's session for the given method and
// returns the signed token alongside the canonical session row.
func (s *Service) Begin(ctx context.Context, userID int64, method string) (string, *account.Session, error) {
	now := time.Now()
	session, err := s.sessions.Upsert(ctx, &account.Session{
		ID:           uuid.New(),
		UserID:       userID,
		Method:       method,
		LastActiveAt: now,
		CreatedAt:    now,
		ExpiresAt:    now.Add(token.SessionTTL),
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to begin session: %w", err)
	}

	signed, err := s.tokens.Issue(session.UserID, session.ID.String())
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	s.cache.Put(ctx, session)

	return signed, session, nil
}

// Resolve loads the session behind a verified token's sid claim,
// cache-first with repository fallback.
func (s *Service) Resolve(ctx context.Context, sessionID string) (*account.Session, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad session id", xerrors.ErrTokenInvalid)
	}

	if cached := s.cache.Get(ctx, id); cached != nil {
		return cached, nil
	}

	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Put(ctx, session)

	return session, nil
}
