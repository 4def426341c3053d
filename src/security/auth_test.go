package security

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/username/fintrack/backend/src/config"
)

func newTestAuthService() *AuthService {
	config.Cfg = &config.AppConfig{AccessTokenExpiry: time.Hour}
	return NewAuthService("test-secret-key-that-is-long-enough!")
}

func TestTokenRoundTrip(t *testing.T) {
	auth := newTestAuthService()

	token, err := auth.GenerateToken("42")
	assert.NoError(t, err)

	sub, err := auth.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "42", sub)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	auth := newTestAuthService()
	token, err := auth.GenerateToken("42")
	assert.NoError(t, err)

	other := NewAuthService("a-completely-different-secret-key!!!")
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	auth := newTestAuthService()
	_, err := auth.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	auth := newTestAuthService()

	hash, err := auth.HashPassword("hunter2!")
	assert.NoError(t, err)
	assert.NotEqual(t, "hunter2!", hash)

	assert.NoError(t, auth.CompareHashAndPassword(hash, "hunter2!"))
	assert.Error(t, auth.CompareHashAndPassword(hash, "wrong"))
}

func TestGenerateRefreshTokenUnique(t *testing.T) {
	auth := newTestAuthService()

	first, err := auth.GenerateRefreshToken()
	assert.NoError(t, err)
	second, err := auth.GenerateRefreshToken()
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
}
