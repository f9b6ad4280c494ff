package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcram/recall-api/internal/config"
)

const testSecret = "test-secret-key-that-is-at-least-32-chars"

func newTestVerifier(t *testing.T) TokenVerifier {
	t.Helper()
	verifier, err := NewTokenVerifier(config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)
	return verifier
}

// signToken mimics the external identity service: it mints a token the
// verifier should accept.
func signToken(t *testing.T, secret string, method jwt.SigningMethod, userID uuid.UUID, expiresAt time.Time) string {
	t.Helper()
	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestNewTokenVerifierRejectsShortSecret(t *testing.T) {
	t.Parallel()
	_, err := NewTokenVerifier(config.AuthConfig{JWTSecret: "too-short"})
	assert.Error(t, err)
}

func TestVerifyTokenSuccess(t *testing.T) {
	t.Parallel()
	verifier := newTestVerifier(t)
	userID := uuid.New()
	token := signToken(t, testSecret, jwt.SigningMethodHS256, userID, time.Now().Add(time.Hour))

	claims, err := verifier.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestVerifyTokenExpired(t *testing.T) {
	t.Parallel()
	verifier := newTestVerifier(t)
	// Expired well past the allowed clock skew.
	token := signToken(t, testSecret, jwt.SigningMethodHS256, uuid.New(), time.Now().Add(-time.Hour))

	_, err := verifier.VerifyToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	t.Parallel()
	verifier := newTestVerifier(t)
	token := signToken(t, "another-secret-also-32-characters-long!", jwt.SigningMethodHS256, uuid.New(), time.Now().Add(time.Hour))

	_, err := verifier.VerifyToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenWrongSigningMethod(t *testing.T) {
	t.Parallel()
	verifier := newTestVerifier(t)
	token := signToken(t, testSecret, jwt.SigningMethodHS384, uuid.New(), time.Now().Add(time.Hour))

	_, err := verifier.VerifyToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenMalformed(t *testing.T) {
	t.Parallel()
	verifier := newTestVerifier(t)

	_, err := verifier.VerifyToken(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenMissing(t *testing.T) {
	t.Parallel()
	verifier := newTestVerifier(t)

	_, err := verifier.VerifyToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestVerifyTokenMissingUserID(t *testing.T) {
	t.Parallel()
	verifier := newTestVerifier(t)

	claims := jwt.RegisteredClaims{
		Subject:   "anonymous",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = verifier.VerifyToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
