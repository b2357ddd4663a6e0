package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, pw := range []string{"secret1", "p@ssw0rd with spaces", "пароль-юникод"} {
		hashed, err := h.HashPassword(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, hashed)
		assert.True(t, h.CheckPassword(pw, hashed))
		assert.False(t, h.CheckPassword(pw+"x", hashed))
	}
}

func TestHasher_SaltedHashesDiffer(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	a, err := h.HashPassword("same-password")
	require.NoError(t, err)
	b, err := h.HashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHasher_Empty(t *testing.T) {
	_, err := NewHasher(bcrypt.MinCost).HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestNewHasher_CostBounds(t *testing.T) {
	assert.Equal(t, DefaultCost, NewHasher(0).Cost)
	assert.Equal(t, bcrypt.MinCost, NewHasher(1).Cost)
	assert.Equal(t, bcrypt.MaxCost, NewHasher(99).Cost)
}

func TestHasher_CostIsEncoded(t *testing.T) {
	hashed, err := NewHasher(5).HashPassword("abcdef")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, 5, cost)
}

func TestCheckPassword_GarbageHash(t *testing.T) {
	assert.False(t, CheckPassword("abc", "not-a-bcrypt-hash"))
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
