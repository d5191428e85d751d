package security

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestJWTManager_AccessTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret-key-32-characters!!!", 15*time.Minute, 7*24*time.Hour)

	userID := uuid.New()
	tenantID := uuid.New()

	token, err := manager.GenerateAccessToken(userID, tenantID, "owner@example.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := manager.ValidateAccessToken(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, tenantID, claims.TenantID)
	assert.Equal(t, "owner@example.com", claims.Email)
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret-key-32-characters!!!", -1*time.Minute, 7*24*time.Hour)

	token, err := manager.GenerateAccessToken(uuid.New(), uuid.New(), "owner@example.com")
	assert.NoError(t, err)

	_, err = manager.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	manager := NewJWTManager("test-secret-key-32-characters!!!", 15*time.Minute, 7*24*time.Hour)
	other := NewJWTManager("a-completely-different-secret!!!", 15*time.Minute, 7*24*time.Hour)

	token, err := manager.GenerateAccessToken(uuid.New(), uuid.New(), "owner@example.com")
	assert.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTManager_RefreshTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret-key-32-characters!!!", 15*time.Minute, 7*24*time.Hour)

	userID := uuid.New()
	token, err := manager.GenerateRefreshToken(userID)
	assert.NoError(t, err)

	got, err := manager.ValidateRefreshToken(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, got)
}
