package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, time.Hour)
	userID, profileID := uuid.New(), uuid.New()

	token, err := m.GenerateAccessToken(userID, profileID, RoleStudent, "ama@example.com")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, profileID, claims.ProfileID)
	assert.Equal(t, RoleStudent, claims.Role)
	assert.Equal(t, "ama@example.com", claims.Email)
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", time.Minute, time.Hour)
	verifier := NewJWTManager("secret-b", time.Minute, time.Hour)

	token, err := issuer.GenerateAccessToken(uuid.New(), uuid.New(), RoleProvider, "")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	m := NewJWTManager("secret", -time.Minute, time.Hour)

	token, err := m.GenerateAccessToken(uuid.New(), uuid.New(), RoleStudent, "")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTManager_RejectsEmpty(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, time.Hour)
	_, err := m.ValidateToken("")
	assert.Error(t, err)
}
