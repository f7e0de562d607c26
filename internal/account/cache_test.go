package account

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore records how often each account is read from the backing store
type countingStore struct {
	accounts map[uuid.UUID]*Account
	idReads  int
}

func (s *countingStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	for _, a := range s.accounts {
		if a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *countingStore) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	s.idReads++
	if a, ok := s.accounts[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (s *countingStore) FindByVerificationToken(ctx context.Context, token string) (*Account, error) {
	return nil, ErrNotFound
}

func (s *countingStore) FindByResetToken(ctx context.Context, token string) (*Account, error) {
	return nil, ErrNotFound
}

func (s *countingStore) Save(ctx context.Context, a *Account) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	copied := *a
	s.accounts[a.ID] = &copied
	return nil
}

func newCacheFixture(t *testing.T) (*CachedStore, *countingStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	inner := &countingStore{accounts: make(map[uuid.UUID]*Account)}
	return NewCachedStore(inner, client), inner
}

func TestCachedStore_ReadThrough(t *testing.T) {
	cached, inner := newCacheFixture(t)
	ctx := context.Background()

	acct := &Account{
		Email:             "a@x.com",
		PasswordHash:      "$2a$13$hash",
		VerificationToken: "tok",
		Role:              "hacker",
		CreatedAt:         time.Now().Truncate(time.Second),
	}
	require.NoError(t, cached.Save(ctx, acct))

	first, err := cached.FindByID(ctx, acct.ID)
	require.NoError(t, err)
	second, err := cached.FindByID(ctx, acct.ID)
	require.NoError(t, err)

	// One miss, one hit.
	assert.Equal(t, 1, inner.idReads)
	assert.Equal(t, first.Email, second.Email)

	// The credential fields survive the cache round trip even though the
	// Account JSON tags hide them.
	assert.Equal(t, "$2a$13$hash", second.PasswordHash)
	assert.Equal(t, "tok", second.VerificationToken)
}

func TestCachedStore_SaveInvalidates(t *testing.T) {
	cached, inner := newCacheFixture(t)
	ctx := context.Background()

	acct := &Account{Email: "a@x.com", PasswordHash: "old"}
	require.NoError(t, cached.Save(ctx, acct))

	_, err := cached.FindByID(ctx, acct.ID)
	require.NoError(t, err)

	acct.PasswordHash = "new"
	require.NoError(t, cached.Save(ctx, acct))

	got, err := cached.FindByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)
	assert.Equal(t, 2, inner.idReads)
}

func TestCachedStore_NotFoundIsNotCached(t *testing.T) {
	cached, inner := newCacheFixture(t)
	ctx := context.Background()

	missing := uuid.New()
	_, err := cached.FindByID(ctx, missing)
	assert.ErrorIs(t, err, ErrNotFound)

	// A later Save under that ID becomes visible.
	acct := &Account{Email: "late@x.com"}
	require.NoError(t, inner.Save(ctx, acct))

	_, err = cached.FindByID(ctx, acct.ID)
	assert.NoError(t, err)
}

func TestCachedStore_TokenLookupsBypassCache(t *testing.T) {
	cached, inner := newCacheFixture(t)
	ctx := context.Background()

	_, err := cached.FindByVerificationToken(ctx, "tok")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = cached.FindByResetToken(ctx, "tok")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, inner.idReads)
}
