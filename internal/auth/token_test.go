package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-signing-key", 30*time.Minute)

	token, err := issuer.Issue("admin-1", "admin@acme.com", "org-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "admin-1", claims.AdminID)
	require.Equal(t, "admin@acme.com", claims.Email)
	require.Equal(t, "org-1", claims.OrganizationID)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	issuer := NewTokenIssuer("test-signing-key", 30*time.Minute).
		WithClock(func() time.Time { return past })

	token, err := issuer.Issue("admin-1", "admin@acme.com", "org-1")
	require.NoError(t, err)

	verifier := NewTokenIssuer("test-signing-key", 30*time.Minute)
	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenSignedWithDifferentKeyIsRejected(t *testing.T) {
	issuer := NewTokenIssuer("test-signing-key", 30*time.Minute)
	other := NewTokenIssuer("other-signing-key", 30*time.Minute)

	token, err := other.Issue("admin-1", "admin@acme.com", "org-1")
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTamperedTokenIsRejected(t *testing.T) {
	issuer := NewTokenIssuer("test-signing-key", 30*time.Minute)

	token, err := issuer.Issue("admin-1", "admin@acme.com", "org-1")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = issuer.Verify(tampered)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenIsRejected(t *testing.T) {
	issuer := NewTokenIssuer("test-signing-key", 30*time.Minute)

	for _, bad := range []string{"", "not-a-token", "a.b.c", "eyJhbGciOiJub25lIn0..", "   "} {
		_, err := issuer.Verify(bad)
		require.ErrorIs(t, err, ErrInvalidToken, "token %q", bad)
	}
}
