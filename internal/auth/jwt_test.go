package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renteazy/renteazy-server/internal/config"
	"github.com/renteazy/renteazy-server/internal/models"
)

func testManager() *JWTManager {
	return NewJWTManager(&config.JWTConfig{
		Secret:          "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
}

func testUser() *models.User {
	user := &models.User{
		Email: "asha@example.com",
	}
	user.ID = uuid.New()
	return user
}

func TestTokenPairRoundTrip(t *testing.T) {
	m := testManager()
	user := testUser()

	access, refresh, err := m.GenerateTokenPair(user, models.RoleOwner)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := m.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, models.RoleOwner, claims.Role)

	userID, err := m.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	m := testManager()
	access, _, err := m.GenerateTokenPair(testUser(), models.RoleTenant)
	require.NoError(t, err)

	other := NewJWTManager(&config.JWTConfig{
		Secret:          "different-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})

	_, err = other.ValidateToken(access)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	m := NewJWTManager(&config.JWTConfig{
		Secret:          "test-secret",
		AccessTokenTTL:  -time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})

	access, _, err := m.GenerateTokenPair(testUser(), models.RoleTenant)
	require.NoError(t, err)

	_, err = m.ValidateToken(access)
	assert.Error(t, err)
}

func TestParseRefreshTokenRejectsAccessTokenGarbage(t *testing.T) {
	m := testManager()

	_, err := m.ParseRefreshToken("not-a-token")
	assert.Error(t, err)
}
