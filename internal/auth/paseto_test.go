package auth

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pasetoTestKey() []byte {
	return bytes.Repeat([]byte("k"), 32)
}

func TestPasetoService_CreateAndVerify(t *testing.T) {
	t.Parallel()

	svc, err := NewPasetoService(pasetoTestKey())
	require.NoError(t, err)

	accountID := uuid.New()
	token, err := svc.CreateToken(accountID, "a@x.com", time.Hour)
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, accountID.String(), claims.AccountID)
	assert.Equal(t, "a@x.com", claims.Email)
}

func TestPasetoService_Expired(t *testing.T) {
	t.Parallel()

	svc, err := NewPasetoService(pasetoTestKey())
	require.NoError(t, err)

	token, err := svc.CreateToken(uuid.New(), "a@x.com", -time.Second)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.Error(t, err)
}

func TestPasetoService_Tampered(t *testing.T) {
	t.Parallel()

	svc, err := NewPasetoService(pasetoTestKey())
	require.NoError(t, err)

	token, err := svc.CreateToken(uuid.New(), "a@x.com", time.Hour)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewPasetoService_KeyLength(t *testing.T) {
	t.Parallel()

	_, err := NewPasetoService([]byte("short"))
	assert.Error(t, err)
}
