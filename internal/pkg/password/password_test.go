package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("motdepasse123")
	require.NoError(t, err)
	assert.NotEqual(t, "motdepasse123", hash)

	assert.True(t, Verify("motdepasse123", hash))
	assert.False(t, Verify("faux", hash))
	assert.False(t, Verify("motdepasse123", "pas-un-hash"))
}

func TestHashToken(t *testing.T) {
	first := HashToken("jeton")
	second := HashToken("jeton")

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.NotEqual(t, first, HashToken("autre-jeton"))
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("12345678"))
	assert.False(t, ValidatePassword("1234567"))
	assert.False(t, ValidatePassword(""))
}
