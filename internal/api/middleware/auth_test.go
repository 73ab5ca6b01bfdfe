package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken()
	require.NoError(t, err)
	require.Len(t, token, 64)

	hash := HashToken(token)
	assert.True(t, VerifyToken(token, hash))
	assert.False(t, VerifyToken("not-the-token", hash))
}

func TestGenerateTokenIsUnique(t *testing.T) {
	first, err := GenerateToken()
	require.NoError(t, err)
	second, err := GenerateToken()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestHashTokenLookupIsDeterministic(t *testing.T) {
	token, err := GenerateToken()
	require.NoError(t, err)

	assert.Equal(t, HashTokenLookup(token), HashTokenLookup(token))
	assert.NotEqual(t, HashTokenLookup(token), HashTokenLookup(token+"x"))
}
