package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftboard-backend/internal/domain"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", 60)

	token, err := manager.GenerateAccessToken(42, "admin@example.com", domain.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int32(42), claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.True(t, claims.IsAdmin())
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	manager := NewTokenManager("test-secret", 60)
	other := NewTokenManager("other-secret", 60)

	token, err := manager.GenerateAccessToken(1, "staff@example.com", domain.RoleStaff)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	manager := &tokenManager{secret: []byte("test-secret"), expiry: -time.Minute}

	token, err := manager.GenerateAccessToken(1, "staff@example.com", domain.RoleStaff)
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	manager := NewTokenManager("test-secret", 60)
	_, err := manager.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
