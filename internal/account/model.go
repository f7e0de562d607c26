package account

import (
	"time"

	"github.com/google/uuid"
)

// Account is the persisted record of a registrant's identity and credential
// state. Verified flips to true exactly once; no code path resets it.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never exposed in JSON
	Verified     bool      `json:"verified"`
	// VerificationToken is present while Verified is false and cleared on
	// successful verification.
	VerificationToken string `json:"-"`
	// PasswordResetToken is set when a reset is requested. It is not
	// cleared after redemption, so treat comparisons as single-use-intent.
	PasswordResetToken string    `json:"-"`
	Role               string    `json:"role"`
	CreatedAt          time.Time `json:"date"`
}

// Profile is registrant profile data owned by another service, read only for
// the post-verification mailing-list subscription.
type Profile struct {
	AccountID uuid.UUID
	FirstName string
	LastName  string
	Email     string
}
