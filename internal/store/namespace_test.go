package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeCollectionName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"org_acme", "org_acme"},
		{"ACME", "acme"},
		{"Acme Corp", "acme_corp"},
		{"acme-corp.io", "acme_corp_io"},
		{"org_123", "org_123"},
		{"123corp", "_123corp"},
		{"_private", "_private"},
		{"héllo wörld", "h_llo_w_rld"},
		{"a!@#$%b", "a_____b"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, SanitizeCollectionName(tc.in), "input %q", tc.in)
	}
}

func TestSanitizeCollectionNameIsIdempotent(t *testing.T) {
	for _, in := range []string{"Acme Corp", "123corp", "héllo", "org_acme", strings.Repeat("x", 100)} {
		once := SanitizeCollectionName(in)
		require.Equal(t, once, SanitizeCollectionName(once), "input %q", in)
	}
}

func TestSanitizeCollectionNameTruncates(t *testing.T) {
	got := SanitizeCollectionName(strings.Repeat("a", 100))
	require.Len(t, got, 63)
	require.Equal(t, strings.Repeat("a", 63), got)
}

func TestSanitizeCollectionNameEmitsOnlySafeCharacters(t *testing.T) {
	for _, in := range []string{"Robert'); DROP TABLE orgs;--", `a"b`, "a;b", "a b\tc\n"} {
		got := SanitizeCollectionName(in)
		for _, r := range got {
			safe := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
			require.True(t, safe, "input %q produced %q", in, got)
		}
	}
}

func TestCollectionName(t *testing.T) {
	require.Equal(t, "org_acme", CollectionName("acme"))
	require.Equal(t, "org_acme", CollectionName("ACME"))
	require.Equal(t, "org_acme_corp", CollectionName("Acme Corp"))

	// Derivation is deterministic: same org name always maps to the same
	// collection.
	require.Equal(t, CollectionName("Globex"), CollectionName("globex"))
}
