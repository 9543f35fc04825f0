package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", "worldbest-ai-api")

	token, err := m.GenerateToken("t-1", "u-1", "writer", "access", time.Hour)
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "t-1", claims.TenantID)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "writer", claims.Role)
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, "worldbest-ai-api", claims.Issuer)
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", "worldbest-ai-api")

	token, err := m.GenerateToken("t-1", "u-1", "writer", "access", -time.Minute)
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	m := NewJWTManager("test-secret", "worldbest-ai-api")
	other := NewJWTManager("other-secret", "worldbest-ai-api")

	token, err := m.GenerateToken("t-1", "u-1", "writer", "access", time.Hour)
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_GarbageToken(t *testing.T) {
	m := NewJWTManager("test-secret", "worldbest-ai-api")
	_, err := m.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
