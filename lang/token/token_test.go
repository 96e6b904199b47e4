package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	for k := ILLEGAL; k < maxKind; k++ {
		require.NotEmpty(t, k.String(), "kind %d missing a string representation", k)
	}
	require.Equal(t, "<invalid token>", Kind(127).String())
}

func TestLookupIdent(t *testing.T) {
	for lit, kw := range keywords {
		require.Equal(t, kw, LookupIdent(lit))
	}
	require.Equal(t, IDENT, LookupIdent("notAKeyword"))
	require.Equal(t, IDENT, LookupIdent("classy"))
}
