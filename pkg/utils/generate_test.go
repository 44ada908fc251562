package utils

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSessionToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateSessionToken()
		require.NoError(t, err)
		assert.Len(t, token, 43)
		assert.False(t, seen[token], "duplicate token")
		seen[token] = true
	}
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestTokenPrefix(t *testing.T) {
	assert.Equal(t, "abcdef...", TokenPrefix("abcdefghijkl"))
	assert.Equal(t, "***", TokenPrefix("abc"))
}
