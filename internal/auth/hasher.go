package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the fixed work factor for password hashing. Raising it makes
// every login proportionally slower, so treat changes as a capacity decision.
const bcryptCost = 13

// Hasher performs one-way password hashing with bcrypt. The salt is embedded
// in the encoded hash and the comparison is constant-time.
type Hasher struct {
	cost int
}

func NewHasher() *Hasher {
	return &Hasher{cost: bcryptCost}
}

// Hash returns the salted bcrypt hash of plaintext. A failure here is an
// internal error, never attributable to caller input.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches the stored hash
func (h *Hasher) Verify(plaintext, hashedSecret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedSecret), []byte(plaintext)) == nil
}
