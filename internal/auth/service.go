package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hackreg/registration-api/internal/account"
	"github.com/hackreg/registration-api/internal/logging"
)

var (
	ErrBadCredential   = errors.New("password incorrect")
	ErrAlreadyVerified = errors.New("user already verified")
	ErrSamePassword    = errors.New("the password needs to be different than your current")
	ErrNotifierFailure = errors.New("failed to send notification email")
)

// Notifier delivers account mail. Implemented by email.Composer; both sends
// are synchronous from the caller's point of view.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, toEmail, token string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, token string) error
}

// ListSubscriber adds a verified registrant to the event mailing list.
// Best-effort: failures never affect the verification itself.
type ListSubscriber interface {
	Subscribe(ctx context.Context, name, address string) error
}

// Service owns every state transition over account credentials and
// verification/reset tokens. Each operation is a read-modify-persist against
// a single account with no locking; concurrent writes to the same account are
// last-write-wins. Hashing is expensive but only blocks the goroutine of the
// request that triggered it.
type Service struct {
	store         account.Store
	profiles      account.ProfileStore
	hasher        *Hasher
	tokens        TokenService
	notifier      Notifier
	list          ListSubscriber
	logger        *logging.Logger
	tokenDuration time.Duration
}

func NewService(
	store account.Store,
	profiles account.ProfileStore,
	hasher *Hasher,
	tokens TokenService,
	notifier Notifier,
	list ListSubscriber,
	logger *logging.Logger,
	tokenDuration time.Duration,
) *Service {
	return &Service{
		store:         store,
		profiles:      profiles,
		hasher:        hasher,
		tokens:        tokens,
		notifier:      notifier,
		list:          list,
		logger:        logger,
		tokenDuration: tokenDuration,
	}
}

// Register creates an unverified account and returns it together with a
// session token. The account row is durably created before the token is
// issued. The verification email is sent before responding; a send failure
// surfaces as ErrNotifierFailure but does NOT roll the account back, so a
// client retrying on that error will hit ErrDuplicateEmail.
func (s *Service) Register(ctx context.Context, email, password string) (*account.Account, string, error) {
	_, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return nil, "", account.ErrDuplicateEmail
	}
	if !errors.Is(err, account.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}

	// Hashing failure aborts before anything is persisted.
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	verificationToken, err := GenerateToken(verificationTokenBytes)
	if err != nil {
		return nil, "", err
	}

	acct := &account.Account{
		Email:             email,
		PasswordHash:      passwordHash,
		Verified:          false,
		VerificationToken: verificationToken,
	}
	if err := s.store.Save(ctx, acct); err != nil {
		if errors.Is(err, account.ErrDuplicateEmail) {
			return nil, "", account.ErrDuplicateEmail
		}
		return nil, "", fmt.Errorf("failed to create account: %w", err)
	}

	if err := s.notifier.SendVerificationEmail(ctx, acct.Email, verificationToken); err != nil {
		s.logger.Error("failed to send verification email", "email", acct.Email, "error", err)
		return acct, "", ErrNotifierFailure
	}

	// Claims always come from the persisted row, never from the request.
	token, err := s.tokens.CreateToken(acct.ID, acct.Email, s.tokenDuration)
	if err != nil {
		return acct, "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return acct, token, nil
}

// Login verifies the credential and issues a session token. An unverified
// account may still log in. The unknown-email and wrong-password cases return
// distinct errors; callers surface them distinctly, which leaks account
// existence.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	acct, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return "", account.ErrNotFound
		}
		return "", fmt.Errorf("failed to get account: %w", err)
	}

	if !s.hasher.Verify(password, acct.PasswordHash) {
		return "", ErrBadCredential
	}

	token, err := s.tokens.CreateToken(acct.ID, acct.Email, s.tokenDuration)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return token, nil
}

// Reverify resends the verification email for an authenticated, still
// unverified account. The stored token is resent unchanged, not rotated, so
// a link from the first email keeps working. Unlike Register, the send is
// reported to the caller: success means the notifier accepted the mail.
func (s *Service) Reverify(ctx context.Context, accountID uuid.UUID) error {
	acct, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.ErrNotFound
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	if acct.Verified {
		return ErrAlreadyVerified
	}

	if err := s.notifier.SendVerificationEmail(ctx, acct.Email, acct.VerificationToken); err != nil {
		s.logger.Error("failed to resend verification email", "email", acct.Email, "error", err)
		return ErrNotifierFailure
	}

	return nil
}

// Verify flips the account to verified and clears the verification token, so
// the same token can never verify twice. After the transition has committed,
// the registrant is subscribed to the event mailing list in the background;
// that side effect can fail without unwinding the verification.
func (s *Service) Verify(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}

	acct, err := s.store.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to look up verification token: %w", err)
	}

	acct.Verified = true
	acct.VerificationToken = ""
	if err := s.store.Save(ctx, acct); err != nil {
		return fmt.Errorf("failed to persist verification: %w", err)
	}

	go s.subscribeToList(acct.ID)

	return nil
}

// subscribeToList runs detached from the request that triggered it
func (s *Service) subscribeToList(accountID uuid.UUID) {
	ctx := context.Background()

	profile, err := s.profiles.FindByAccountID(ctx, accountID)
	if err != nil {
		s.logger.Warn("mailing list subscription skipped: profile lookup failed",
			"account_id", accountID, "error", err)
		return
	}

	if err := s.list.Subscribe(ctx, profile.FirstName, profile.Email); err != nil {
		s.logger.Warn("mailing list subscription failed",
			"account_id", accountID, "error", err)
	}
}

// ChangePassword replaces the credential for an authenticated account.
// The same-password guard compares the fresh hash against the stored hash;
// under salted bcrypt two hashes of one plaintext differ, so the guard
// practically never fires.
func (s *Service) ChangePassword(ctx context.Context, accountID uuid.UUID, newPassword string) (*account.Account, error) {
	acct, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, account.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}

	if newHash == acct.PasswordHash {
		return nil, ErrSamePassword
	}

	acct.PasswordHash = newHash
	if err := s.store.Save(ctx, acct); err != nil {
		return nil, fmt.Errorf("failed to persist password change: %w", err)
	}

	return acct, nil
}

// RequestPasswordReset stores a fresh reset token and mails a reset link.
// When no account matches the email it reports success without side effects,
// so the response never reveals whether an address is registered.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	acct, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			// Smile and nod.
			s.logger.Info("password reset requested for unknown email", "email", email)
			return nil
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	token, err := GenerateToken(resetTokenBytes)
	if err != nil {
		return err
	}

	acct.PasswordResetToken = token
	if err := s.store.Save(ctx, acct); err != nil {
		return fmt.Errorf("failed to persist reset token: %w", err)
	}

	if err := s.notifier.SendPasswordResetEmail(ctx, acct.Email, token); err != nil {
		s.logger.Error("failed to send password reset email", "email", acct.Email, "error", err)
		return ErrNotifierFailure
	}

	return nil
}

// RedeemPasswordReset replaces the credential of the account holding the
// submitted reset token. The token is NOT cleared after redemption, so it
// stays redeemable until the next reset request overwrites it.
func (s *Service) RedeemPasswordReset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidToken
	}

	acct, err := s.store.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	// Same hash-to-hash guard as ChangePassword, with the same caveat.
	if newHash == acct.PasswordHash {
		return ErrSamePassword
	}

	acct.PasswordHash = newHash
	if err := s.store.Save(ctx, acct); err != nil {
		return fmt.Errorf("failed to persist password reset: %w", err)
	}

	return nil
}

// CurrentAccount resolves the authenticated subject to its persisted account
func (s *Service) CurrentAccount(ctx context.Context, accountID uuid.UUID) (*account.Account, error) {
	acct, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, account.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acct, nil
}
