package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	require.Equal(t, Conflict, KindOf(Conflictf("taken")))
	require.Equal(t, NotFound, KindOf(NotFoundf("missing")))
	require.Equal(t, Unauthorized, KindOf(Unauthorizedf("denied")))
	require.Equal(t, Internal, KindOf(Internalf("boom")))

	// Anything outside the taxonomy is treated as internal.
	require.Equal(t, Internal, KindOf(errors.New("raw")))
	require.Equal(t, Internal, KindOf(nil))
}

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", NotFoundf("organization 'acme' not found"))
	require.Equal(t, NotFound, KindOf(wrapped))
}

func TestErrorMessageFormatting(t *testing.T) {
	err := Conflictf("organization '%s' already exists", "acme")
	require.EqualError(t, err, "organization 'acme' already exists")
	require.Equal(t, "conflict", KindOf(err).String())
}
