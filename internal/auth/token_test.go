package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken_CarriesRequestedEntropy(t *testing.T) {
	t.Parallel()

	for _, byteLength := range []int{verificationTokenBytes, resetTokenBytes} {
		token, err := GenerateToken(byteLength)
		require.NoError(t, err)

		decoded, err := base64.RawURLEncoding.DecodeString(token)
		require.NoError(t, err, "token must be URL-safe base64: %q", token)
		assert.Len(t, decoded, byteLength)
	}
}

func TestGenerateToken_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateToken(verificationTokenBytes)
		require.NoError(t, err)
		assert.False(t, seen[token], "token collision: %q", token)
		seen[token] = true
	}
}
