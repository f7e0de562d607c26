package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const accountCacheTTL = 5 * time.Minute

// CachedStore decorates a Store with a Redis read-through cache on FindByID.
// Every request through the auth middleware resolves the token subject back
// to an account, so that lookup is the hot path. Any Save drops the cached
// entry; token lookups always go to the underlying store.
type CachedStore struct {
	inner  Store
	client *redis.Client
}

func NewCachedStore(inner Store, client *redis.Client) *CachedStore {
	return &CachedStore{inner: inner, client: client}
}

func accountKey(id uuid.UUID) string {
	return fmt.Sprintf("account:%s", id.String())
}

func (s *CachedStore) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	key := accountKey(id)

	data, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		cached := new(cachedAccount)
		if unmarshalErr := json.Unmarshal(data, cached); unmarshalErr == nil {
			return cached.account(), nil
		}
		// Unreadable entry, fall through to the store and rewrite it.
	} else if !errors.Is(err, redis.Nil) {
		// Redis being down must not take account resolution with it.
		return s.inner.FindByID(ctx, id)
	}

	a, err := s.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(cacheEntry(a)); err == nil {
		s.client.Set(ctx, key, data, accountCacheTTL)
	}

	return a, nil
}

func (s *CachedStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return s.inner.FindByEmail(ctx, email)
}

func (s *CachedStore) FindByVerificationToken(ctx context.Context, token string) (*Account, error) {
	return s.inner.FindByVerificationToken(ctx, token)
}

func (s *CachedStore) FindByResetToken(ctx context.Context, token string) (*Account, error) {
	return s.inner.FindByResetToken(ctx, token)
}

// Save writes through to the store and invalidates the cached entry so the
// next FindByID observes the new credential state.
func (s *CachedStore) Save(ctx context.Context, a *Account) error {
	if err := s.inner.Save(ctx, a); err != nil {
		return err
	}

	if a.ID != uuid.Nil {
		s.client.Del(ctx, accountKey(a.ID))
	}

	return nil
}

// cachedAccount mirrors Account with every field serializable, so the
// json:"-" credential fields still land in the cache payload.
type cachedAccount struct {
	ID                 uuid.UUID `json:"id"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"password_hash"`
	Verified           bool      `json:"verified"`
	VerificationToken  string    `json:"verification_token"`
	PasswordResetToken string    `json:"password_reset_token"`
	Role               string    `json:"role"`
	CreatedAt          time.Time `json:"created_at"`
}

func (c *cachedAccount) account() *Account {
	return &Account{
		ID:                 c.ID,
		Email:              c.Email,
		PasswordHash:       c.PasswordHash,
		Verified:           c.Verified,
		VerificationToken:  c.VerificationToken,
		PasswordResetToken: c.PasswordResetToken,
		Role:               c.Role,
		CreatedAt:          c.CreatedAt,
	}
}

func cacheEntry(a *Account) *cachedAccount {
	return &cachedAccount{
		ID:                 a.ID,
		Email:              a.Email,
		PasswordHash:       a.PasswordHash,
		Verified:           a.Verified,
		VerificationToken:  a.VerificationToken,
		PasswordResetToken: a.PasswordResetToken,
		Role:               a.Role,
		CreatedAt:          a.CreatedAt,
	}
}
