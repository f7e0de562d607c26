package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher_HashNeverEqualsPlaintext(t *testing.T) {
	t.Parallel()

	h := NewHasher()

	hash, err := h.Hash("Secret123")
	require.NoError(t, err)

	assert.NotEqual(t, "Secret123", hash)
	assert.True(t, strings.HasPrefix(hash, "$2"), "expected a bcrypt hash, got %q", hash)
}

func TestHasher_VerifyRoundTrip(t *testing.T) {
	t.Parallel()

	h := NewHasher()

	hash, err := h.Hash("Secret123")
	require.NoError(t, err)

	assert.True(t, h.Verify("Secret123", hash))
	assert.False(t, h.Verify("NotTheSecret", hash))
	assert.False(t, h.Verify("Secret123", "not-a-hash"))
}

func TestHasher_SaltedHashesDiffer(t *testing.T) {
	t.Parallel()

	h := NewHasher()

	first, err := h.Hash("Secret123")
	require.NoError(t, err)
	second, err := h.Hash("Secret123")
	require.NoError(t, err)

	// The salt is random, so re-hashing one plaintext yields a new hash.
	// This is also why the same-password guard in the service cannot fire.
	assert.NotEqual(t, first, second)
}
