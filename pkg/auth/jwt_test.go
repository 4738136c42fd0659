package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *JWTValidator {
	t.Helper()
	v, err := NewJWTValidator(JWTConfig{SecretKey: "test-secret", Issuer: "hangouts-backend"})
	require.NoError(t, err)
	return v
}

func TestJWTValidator_RoundTrip(t *testing.T) {
	v := newTestValidator(t)

	token, err := v.GenerateToken("user-123", "avatar.jpg", time.Hour)
	require.NoError(t, err)

	claims, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "avatar.jpg", claims.ImagePath)

	// The "Bearer " prefix is accepted too.
	claims, err = v.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
}

func TestJWTValidator_ExpiredToken(t *testing.T) {
	v := newTestValidator(t)

	token, err := v.GenerateToken("user-123", "", -time.Minute)
	require.NoError(t, err)

	_, err = v.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTValidator_WrongSecret(t *testing.T) {
	v := newTestValidator(t)
	other, err := NewJWTValidator(JWTConfig{SecretKey: "other-secret", Issuer: "hangouts-backend"})
	require.NoError(t, err)

	token, err := other.GenerateToken("user-123", "", time.Hour)
	require.NoError(t, err)

	_, err = v.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTValidator_WrongIssuer(t *testing.T) {
	v := newTestValidator(t)
	other, err := NewJWTValidator(JWTConfig{SecretKey: "test-secret", Issuer: "someone-else"})
	require.NoError(t, err)

	token, err := other.GenerateToken("user-123", "", time.Hour)
	require.NoError(t, err)

	_, err = v.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestJWTValidator_MissingToken(t *testing.T) {
	v := newTestValidator(t)

	_, err := v.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = v.ValidateToken("Bearer ")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNewJWTValidator_RequiresSecret(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{})
	assert.Error(t, err)
}

func TestUserContext_RoundTrip(t *testing.T) {
	ctx := context.Background()

	_, err := GetUserFromContext(ctx)
	assert.Error(t, err)

	ctx = SetUserInContext(ctx, &UserContext{UserID: "user-123", ImagePath: "avatar.jpg"})
	user, err := GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-123", user.UserID)
}
