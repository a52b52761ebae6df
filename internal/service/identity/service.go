// internal/service/identity/service.go
package identity

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"realm-gateway/internal/domain/account"
	xerrors "realm-gateway/internal/pkg/errors"
	"realm-gateway/internal/service/discord"
)

// Outcome tags how Upsert produced its user, so callers and tests can
// tell normal creation apart from anomaly recovery.
type Outcome int

const (
	// OutcomeFound: the identity existed and its owning user was loaded.
	OutcomeFound Outcome = iota
	// OutcomeCreated: first login, user and identity were created.
	OutcomeCreated
	// OutcomeRecovered: the identity existed but its owning user row was
	// missing; a replacement user was created to unblock the login.
	OutcomeRecovered
)

type Result struct {
	User    *account.User
	Outcome Outcome
}

// Service implements find-or-create with update-on-conflict semantics for
// provider identities.
type Service struct {
	users      account.UserRepository
	identities account.IdentityRepository
	logger     *zap.Logger
}

func NewService(users account.UserRepository, identities account.IdentityRepository, logger *zap.Logger) *Service {
	return &Service{
		users:      users,
		identities: identities,
		logger:     logger,
	}
}

// Upsert finds or creates the local user for a Discord profile and keeps
// the linked identity's mutable fields in sync. Safe under concurrent
// invocation for the same discord id: creation conflicts roll back and
// retry as an update against the winning row.
func (s *Service) Upsert(ctx context.Context, profile *discord.Profile) (*Result, error) {
	ident, err := s.identities.FindByDiscordID(ctx, profile.ID)
	if errors.Is(err, xerrors.ErrNotFound) {
		user, createErr := s.identities.CreateWithNewUser(ctx, profile.Username, &account.DiscordIdentity{
			DiscordID:     profile.ID,
			Username:      profile.Username,
			Discriminator: profile.Discriminator,
			Email:         profile.Email,
			AvatarHash:    profile.Avatar,
		})
		if createErr == nil {
			return &Result{User: user, Outcome: OutcomeCreated}, nil
		}
		if !errors.Is(createErr, xerrors.ErrDuplicateEntry) {
			return nil, createErr
		}
		// Lost the race against a concurrent first login; the winning
		// row exists now, fall through to the update path.
		ident, err = s.identities.FindByDiscordID(ctx, profile.ID)
	}
	if err != nil {
		return nil, err
	}

	ident.Username = profile.Username
	ident.Discriminator = profile.Discriminator
	ident.Email = profile.Email
	ident.AvatarHash = profile.Avatar
	if err := s.identities.Update(ctx, ident); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, ident.UserID)
	if errors.Is(err, xerrors.ErrNotFound) {
		// Orphaned identity: the owning user row is gone. Create a
		// replacement rather than locking the player out, but this is a
		// consistency anomaly worth surfacing.
		s.logger.Warn("linked identity without owning user, creating replacement",
			zap.String("discord_id", ident.DiscordID),
			zap.Int64("missing_user_id", ident.UserID),
		)
		user, err = s.users.Create(ctx, profile.Username)
		if err != nil {
			return nil, err
		}
		return &Result{User: user, Outcome: OutcomeRecovered}, nil
	}
	if err != nil {
		return nil, err
	}

	return &Result{User: user, Outcome: OutcomeFound}, nil
}
