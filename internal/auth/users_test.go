package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, VerifyPassword("s3cret", hash))
	assert.False(t, VerifyPassword("S3cret", hash))
	assert.False(t, VerifyPassword("s3cret", "not-a-hash"))

	_, err = HashPassword("", bcrypt.MinCost)
	assert.Error(t, err)
}

func TestHashPassword_DefaultCost(t *testing.T) {
	hash, err := HashPassword("pw", 0)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, cost)
}

func TestMemoryUserStore(t *testing.T) {
	hash, err := HashPassword("pw", bcrypt.MinCost)
	require.NoError(t, err)

	store := NewMemoryUserStore()
	admin, err := store.Add("Admin", hash)
	require.NoError(t, err)
	assert.Equal(t, int64(1), admin.ID)

	analyst, err := store.Add("analyst", hash)
	require.NoError(t, err)
	assert.Equal(t, int64(2), analyst.ID)

	got, ok, err := store.ByUsername(context.Background(), " admin ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Admin", got.Username)

	_, ok, err = store.ByUsername(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Add("ADMIN", hash)
	assert.ErrorContains(t, err, "already exists")

	_, err = store.Add("eve", "plaintext")
	assert.ErrorContains(t, err, "not a bcrypt hash")

	_, err = store.Add("  ", hash)
	assert.Error(t, err)

	assert.Equal(t, 2, store.Len())
}
