package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidOrgName(t *testing.T) {
	valid := []string{"abc", "acme_corp", "ACME", "org123", strings.Repeat("a", 50)}
	for _, name := range valid {
		require.True(t, validOrgName(name), "name %q", name)
	}

	invalid := []string{"", "ab", "acme corp", "acme-corp", "acme.corp", strings.Repeat("a", 51)}
	for _, name := range invalid {
		require.False(t, validOrgName(name), "name %q", name)
	}
}

func TestValidEmail(t *testing.T) {
	require.True(t, validEmail("admin@acme.com"))
	require.True(t, validEmail("a@b"))

	require.False(t, validEmail(""))
	require.False(t, validEmail("admin"))
	require.False(t, validEmail("@acme.com"))
	require.False(t, validEmail("admin@"))
	require.False(t, validEmail("a@"+strings.Repeat("b", 260)))
}

func TestValidPassword(t *testing.T) {
	require.True(t, validPassword("12345678"))
	require.False(t, validPassword("1234567"))
	require.False(t, validPassword(""))
}
