// internal/pkg/token/token.go
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	xerrors "realm-gateway/internal/pkg/errors"
)

// SessionTTL is the fixed lifetime of a signed session token.
const SessionTTL = 1 * time.Hour

// Claims carried by a session token. The subject is the user id, sid the
// session row the token was minted for.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into a user id.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad sub claim", xerrors.ErrTokenInvalid)
	}
	return id, nil
}

// Service signs and verifies session tokens. It exclusively owns the
// signing secret; nothing else reads it after startup.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(secret []byte) *Service {
	return &Service{
		secret: secret,
		ttl:    SessionTTL,
		now:    time.Now,
	}
}

// Issue mints a signed HS256 token for the given user and session.
func (s *Service) Issue(userID int64, sessionID string) (string, error) {
	now := s.now()
	claims := &Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        ulid.Make().String(),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify parses and validates a signed token. The signing algorithm is
// pinned to the HMAC family; tokens signed with anything else are
// rejected outright regardless of their claims. An expired but otherwise
// well-formed token yields ErrTokenExpired, every other failure
// ErrTokenInvalid.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, xerrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", xerrors.ErrTokenInvalid, err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("%w: bad claims", xerrors.ErrTokenInvalid)
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("%w: missing sid claim", xerrors.ErrTokenInvalid)
	}
	return claims, nil
}
