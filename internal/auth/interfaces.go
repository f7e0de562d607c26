package auth

import (
	"time"

	"github.com/google/uuid"
)

// TokenService issues and verifies session tokens.
// Implementations include JWTService (HS256) and PasetoService (PASETO v4.local).
type TokenService interface {
	CreateToken(accountID uuid.UUID, email string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// TokenClaims are the claims carried by a session token
type TokenClaims struct {
	AccountID string    `json:"id"` // UUID stored as string in the token
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}
