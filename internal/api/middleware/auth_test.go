package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcram/recall-api/internal/config"
	"github.com/lexcram/recall-api/internal/service/auth"
)

const testSecret = "middleware-test-secret-32-chars-min!"

func signTestToken(t *testing.T, userID uuid.UUID, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"uid": userID.String(),
		"sub": userID.String(),
		"exp": jwt.NewNumericDate(expiresAt),
		"iat": jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newAuthChain(t *testing.T) (http.Handler, *uuid.UUID) {
	t.Helper()
	verifier, err := auth.NewTokenVerifier(config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)

	var captured uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r)
		require.True(t, ok)
		captured = userID
		w.WriteHeader(http.StatusOK)
	})
	return NewAuthMiddleware(verifier).Authenticate(next), &captured
}

func TestAuthenticateValidToken(t *testing.T) {
	t.Parallel()
	handler, captured := newAuthChain(t)
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/review/due", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, userID, time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, *captured)
}

func TestAuthenticateRejections(t *testing.T) {
	t.Parallel()
	handler, _ := newAuthChain(t)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc123"},
		{name: "malformed token", header: "Bearer not.a.jwt"},
		{
			name:   "expired token",
			header: "Bearer " + signTestToken(t, uuid.New(), time.Now().Add(-time.Hour)),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/review/due", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
