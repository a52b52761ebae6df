package token

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	xerrors "realm-gateway/internal/pkg/errors"
)

const testSecret = "test-signing-secret"

func testClaims(expiresAt time.Time) *Claims {
	return &Claims{
		SessionID: "4f5c2b1a-0000-0000-0000-000000000000",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := NewService([]byte(testSecret))

	signed, err := svc.Issue(42, "session-abc")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := svc.Verify(signed)
	require.NoError(t, err)

	userID, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
	require.Equal(t, "session-abc", claims.SessionID)
	require.NotEmpty(t, claims.ID)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := NewService([]byte(testSecret))
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	signed, err := svc.Issue(42, "session-abc")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(signed)
	require.ErrorIs(t, err, xerrors.ErrTokenExpired)
	require.NotErrorIs(t, err, xerrors.ErrTokenInvalid)
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	svc := NewService([]byte(testSecret))

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, testClaims(time.Now().Add(time.Hour)))
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	require.ErrorIs(t, err, xerrors.ErrTokenInvalid)
	require.NotErrorIs(t, err, xerrors.ErrTokenExpired)
}

func TestVerifyRejectsRSASignedToken(t *testing.T) {
	svc := NewService([]byte(testSecret))

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, testClaims(time.Now().Add(time.Hour)))
	signed, err := tok.SignedString(key)
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	require.ErrorIs(t, err, xerrors.ErrTokenInvalid)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	svc := NewService([]byte(testSecret))
	other := NewService([]byte("a-different-secret"))

	signed, err := svc.Issue(42, "session-abc")
	require.NoError(t, err)

	_, err = other.Verify(signed)
	require.ErrorIs(t, err, xerrors.ErrTokenInvalid)
}

func TestVerifyRequiresExpClaim(t *testing.T) {
	svc := NewService([]byte(testSecret))

	claims := testClaims(time.Time{})
	claims.ExpiresAt = nil
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	require.ErrorIs(t, err, xerrors.ErrTokenInvalid)
}

func TestVerifyRequiresSidClaim(t *testing.T) {
	svc := NewService([]byte(testSecret))

	claims := testClaims(time.Now().Add(time.Hour))
	claims.SessionID = ""
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	require.ErrorIs(t, err, xerrors.ErrTokenInvalid)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewService([]byte(testSecret))

	_, err := svc.Verify("not-a-token")
	require.ErrorIs(t, err, xerrors.ErrTokenInvalid)
}
