package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Opaque token entropy per flow. Reset tokens get more entropy than
// verification tokens because a reset link grants a password change outright.
const (
	verificationTokenBytes = 32
	resetTokenBytes        = 64
)

// GenerateToken returns a cryptographically random, URL-safe string carrying
// byteLength bytes of entropy. Tokens are compared by equality only; they are
// never parsed or derived from account data.
func GenerateToken(byteLength int) (string, error) {
	b := make([]byte, byteLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
