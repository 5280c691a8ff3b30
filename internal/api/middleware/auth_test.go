package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyflow/intelligence-api/internal/api/middleware"
	"github.com/studyflow/intelligence-api/internal/config"
	"github.com/studyflow/intelligence-api/internal/service/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestJWTService(t *testing.T) auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)
	return svc
}

// signToken hand-signs claims so expiry and token type can be controlled
// without going through GenerateToken.
func signToken(t *testing.T, userID uuid.UUID, tokenType string, expiresAt time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{
		"uid":  userID.String(),
		"type": tokenType,
		"sub":  userID.String(),
		"iat":  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
		"exp":  jwt.NewNumericDate(expiresAt),
		"jti":  uuid.New().String(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func runAuthenticated(t *testing.T, authHeader string) (*httptest.ResponseRecorder, uuid.UUID, bool) {
	t.Helper()

	m := middleware.NewAuthMiddleware(newTestJWTService(t))

	var (
		gotUserID uuid.UUID
		gotOK     bool
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, gotOK = middleware.GetUserID(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	m.Authenticate(next).ServeHTTP(rec, req)
	return rec, gotUserID, gotOK
}

func TestAuthenticateValidToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	token, err := newTestJWTService(t).GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	rec, gotUserID, ok := runAuthenticated(t, "Bearer "+token)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
	assert.Equal(t, userID, gotUserID)
}

func TestAuthenticateMissingHeader(t *testing.T) {
	t.Parallel()

	rec, _, ok := runAuthenticated(t, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, ok)
	assert.Contains(t, rec.Body.String(), "Authorization header required")
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
	}{
		{"no scheme", "abc.def.ghi"},
		{"wrong scheme", "Basic abc.def.ghi"},
		{"too many parts", "Bearer abc def"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec, _, ok := runAuthenticated(t, tc.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, ok)
			assert.Contains(t, rec.Body.String(), "Invalid authorization format")
		})
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	t.Parallel()

	token := signToken(t, uuid.New(), "access", time.Now().Add(-time.Hour))

	rec, _, ok := runAuthenticated(t, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, ok)
	assert.Contains(t, rec.Body.String(), "Token expired")
}

func TestAuthenticateWrongTokenType(t *testing.T) {
	t.Parallel()

	token := signToken(t, uuid.New(), "refresh", time.Now().Add(time.Hour))

	rec, _, ok := runAuthenticated(t, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, ok)
	assert.Contains(t, rec.Body.String(), "Invalid token")
}

func TestAuthenticateGarbageToken(t *testing.T) {
	t.Parallel()

	rec, _, ok := runAuthenticated(t, "Bearer not-a-jwt")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, ok)
	assert.Contains(t, rec.Body.String(), "Invalid token")
}
