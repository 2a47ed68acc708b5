package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
)

func TestJWTService_RoundTrip(t *testing.T) {
	s, err := NewJWTService("secret", time.Hour)
	require.NoError(t, err)

	token, expiresAt, err := s.GenerateAdminToken("editor")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := s.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "editor", claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestJWTService_Expired(t *testing.T) {
	s, err := NewJWTService("secret", time.Minute)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := s.GenerateAdminToken("editor")
	require.NoError(t, err)

	_, err = s.ParseToken(token)
	assert.True(t, errors.Is(err, apperrors.ErrExpiredToken))
}

func TestJWTService_Rejects(t *testing.T) {
	s, err := NewJWTService("secret", time.Hour)
	require.NoError(t, err)
	other, err := NewJWTService("other-secret", time.Hour)
	require.NoError(t, err)

	foreign, _, err := other.GenerateAdminToken("editor")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &AdminClaims{Username: "x", Role: RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	wrongRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &AdminClaims{
		Username: "x",
		Role:     "viewer",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"garbage", "not.a.token", apperrors.ErrUnauthorized},
		{"foreign signature", foreign, apperrors.ErrUnauthorized},
		{"alg none", noneToken, apperrors.ErrUnauthorized},
		{"wrong role", wrongRole, apperrors.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ParseToken(tt.token)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestNewJWTService_Invalid(t *testing.T) {
	_, err := NewJWTService("", time.Hour)
	assert.Error(t, err)
	_, err = NewJWTService("s", 0)
	assert.Error(t, err)
}

func TestCheckCredentials(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.True(t, CheckCredentials("admin", "s3cret", "admin", hash))
	assert.False(t, CheckCredentials("admin", "wrong", "admin", hash))
	assert.False(t, CheckCredentials("root", "s3cret", "admin", hash))
	assert.False(t, CheckCredentials("admin", "s3cret", "admin", "not-a-hash"))
}
