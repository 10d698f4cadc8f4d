package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Secret123!")
	require.NoError(t, err)
	require.NotEqual(t, "Secret123!", hash)

	require.True(t, VerifyPassword("Secret123!", hash))
	require.False(t, VerifyPassword("secret123!", hash))
	require.False(t, VerifyPassword("", hash))
}

func TestHashPasswordProducesDistinctHashes(t *testing.T) {
	first, err := HashPassword("Secret123!")
	require.NoError(t, err)
	second, err := HashPassword("Secret123!")
	require.NoError(t, err)

	// Each hash carries its own salt.
	require.NotEqual(t, first, second)
	require.True(t, VerifyPassword("Secret123!", first))
	require.True(t, VerifyPassword("Secret123!", second))
}

func TestHashPasswordRejectsOverlongInput(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73))
	require.ErrorIs(t, err, ErrPasswordTooLong)

	// 72 bytes is still accepted.
	hash, err := HashPassword(strings.Repeat("a", 72))
	require.NoError(t, err)
	require.True(t, VerifyPassword(strings.Repeat("a", 72), hash))
}

func TestVerifyPasswordWithGarbageHash(t *testing.T) {
	require.False(t, VerifyPassword("Secret123!", "not-a-bcrypt-hash"))
}
