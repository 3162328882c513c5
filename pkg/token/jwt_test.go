package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", 1, 7)

	tokenString, err := manager.GenerateToken(42, "maria", "USER")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := manager.VerifyToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "maria", claims.Username)
	assert.Equal(t, "USER", claims.Role)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	manager := NewJWTManager("test-secret", 1, 7)
	other := NewJWTManager("another-secret", 1, 7)

	tokenString, err := manager.GenerateToken(1, "maria", "USER")
	require.NoError(t, err)

	_, err = other.VerifyToken(tokenString)
	assert.Error(t, err)
}

func TestVerifyToken_Garbage(t *testing.T) {
	manager := NewJWTManager("test-secret", 1, 7)

	_, err := manager.VerifyToken("not-a-jwt")
	assert.Error(t, err)
}

func TestGenerateRandomString(t *testing.T) {
	a := GenerateRandomString(16)
	b := GenerateRandomString(16)

	assert.Len(t, a, 32, "hex encoding doubles the byte length")
	assert.NotEqual(t, a, b)
}
