package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAccessToken(t *testing.T) {
	token, err := GenerateAccessToken(7, "officer1", "officer", testSecret, 15)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "officer1", claims.Username)
	assert.Equal(t, "officer", claims.Role)
	assert.Equal(t, "sogecredit", claims.Issuer)
}

func TestAccessToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(7, "officer1", "officer", testSecret, 15)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "autre-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAccessToken_Expired(t *testing.T) {
	token, err := GenerateAccessToken(7, "officer1", "officer", testSecret, -1)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestAccessToken_Garbage(t *testing.T) {
	_, err := ValidateAccessToken("pas-un-jeton", testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshToken(t *testing.T) {
	token, err := GenerateRefreshToken(7, "token-id-1", testSecret, 7)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "token-id-1", claims.TokenID)
}

func TestRefreshToken_NotAnAccessToken(t *testing.T) {
	// An access token does not validate as a refresh token with a different
	// secret.
	token, err := GenerateAccessToken(7, "officer1", "officer", testSecret, 15)
	require.NoError(t, err)

	_, err = ValidateRefreshToken(token, "refresh-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
