package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/hackreg/registration-api/internal/database"
)

// PostgresStore persists accounts in Postgres via bun
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return s.findOne(ctx, "email = ?", email)
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.findOne(ctx, "id = ?", id)
}

func (s *PostgresStore) FindByVerificationToken(ctx context.Context, token string) (*Account, error) {
	return s.findOne(ctx, "verification_token = ?", token)
}

func (s *PostgresStore) FindByResetToken(ctx context.Context, token string) (*Account, error) {
	return s.findOne(ctx, "password_reset_token = ?", token)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*Account, error) {
	row := new(database.Account)
	err := s.db.NewSelect().
		Model(row).
		Where(where, arg).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return mapRowToAccount(row), nil
}

// Save inserts the account when it has no ID yet, otherwise overwrites the
// mutable columns. There is no version check: a later Save silently wins over
// a concurrent earlier one.
func (s *PostgresStore) Save(ctx context.Context, a *Account) error {
	if a.ID == uuid.Nil {
		row := &database.Account{
			Email:              a.Email,
			PasswordHash:       a.PasswordHash,
			Verified:           a.Verified,
			VerificationToken:  a.VerificationToken,
			PasswordResetToken: a.PasswordResetToken,
			Role:               a.Role,
		}

		_, err := s.db.NewInsert().
			Model(row).
			Returning("*").
			Exec(ctx)
		if err != nil {
			if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("failed to create account: %w", err)
		}

		*a = *mapRowToAccount(row)
		return nil
	}

	result, err := s.db.NewUpdate().
		Model((*database.Account)(nil)).
		Set("password_hash = ?", a.PasswordHash).
		Set("verified = ?", a.Verified).
		Set("verification_token = ?", a.VerificationToken).
		Set("password_reset_token = ?", a.PasswordResetToken).
		Set("updated_at = NOW()").
		Where("id = ?", a.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func mapRowToAccount(row *database.Account) *Account {
	return &Account{
		ID:                 row.ID,
		Email:              row.Email,
		PasswordHash:       row.PasswordHash,
		Verified:           row.Verified,
		VerificationToken:  row.VerificationToken,
		PasswordResetToken: row.PasswordResetToken,
		Role:               row.Role,
		CreatedAt:          row.CreatedAt,
	}
}

// PostgresProfileStore reads registrant profiles
type PostgresProfileStore struct {
	db *bun.DB
}

func NewPostgresProfileStore(db *bun.DB) *PostgresProfileStore {
	return &PostgresProfileStore{db: db}
}

func (s *PostgresProfileStore) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*Profile, error) {
	row := new(database.Profile)
	err := s.db.NewSelect().
		Model(row).
		Where("account_id = ?", accountID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &Profile{
		AccountID: row.AccountID,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Email:     row.Email,
	}, nil
}
