package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Store is the durable record of accounts, their hashed secrets and pending
// tokens. Save is a plain read-modify-write with no row locking: concurrent
// writes to the same account are last-write-wins.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByVerificationToken(ctx context.Context, token string) (*Account, error)
	FindByResetToken(ctx context.Context, token string) (*Account, error)
	// Save inserts the account if it has no ID yet, otherwise updates it.
	Save(ctx context.Context, a *Account) error
}

// ProfileStore resolves profile data for an account. Owned by the profile
// service; consumed here only by the verification side effect.
type ProfileStore interface {
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*Profile, error)
}
