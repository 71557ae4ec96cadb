package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret",
		Expiry:        expiry,
		RefreshExpiry: 2 * time.Hour,
		Issuer:        "career-guidance-api",
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	m := newTestManager(time.Hour)

	token, jti, err := m.GenerateAccessToken(42, "student@example.com", "student", 3)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, jti, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.Expiry(), 5*time.Second)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := newTestManager(time.Hour).GenerateAccessToken(1, "a@b.c", "admin", 0)
	require.NoError(t, err)

	other := NewJWTManager(JWTConfig{Secret: "another-secret", Expiry: time.Hour})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsOtherIssuer(t *testing.T) {
	token, _, err := NewJWTManager(JWTConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "someone-else"}).
		GenerateAccessToken(1, "a@b.c", "student", 0)
	require.NoError(t, err)

	_, err = newTestManager(time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	token, _, err := newTestManager(-time.Minute).GenerateAccessToken(1, "a@b.c", "student", 0)
	require.NoError(t, err)

	_, err = newTestManager(time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenPairTypes(t *testing.T) {
	m := newTestManager(time.Hour)

	pair, err := m.GenerateTokenPair(7, "inst@example.com", "institute", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), pair.ExpiresIn)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := m.ValidateTokenOfType(pair.RefreshToken, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)

	_, err = m.ValidateTokenOfType(pair.AccessToken, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
	_, err = m.ValidateTokenOfType(pair.RefreshToken, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}
