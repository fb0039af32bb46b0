package testutil

import (
	"encoding/hex"
	"math"
	"strings"
	"testing"

	"github.com/chaisql/sats/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// ValueComparer makes cmp compare types.Value with canonical equality,
// so NaNs are equal to each other and map entry order doesn't matter.
var ValueComparer = cmp.Comparer(func(a, b types.Value) bool {
	return types.Equal(a, b)
})

// FloatComparer makes cmp treat every NaN as equal.
var FloatComparer = cmp.Comparer(func(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return a == b
})

// RequireValueEqual fails the test if want and got are not canonically equal.
func RequireValueEqual(t testing.TB, want, got types.Value) {
	t.Helper()

	if types.Equal(want, got) {
		return
	}

	diff := cmp.Diff(render(want), render(got))
	require.Failf(t, "mismatched values, (-want, +got)", "%s", diff)
}

// RequireTypeEqual fails the test if want and got are not structurally equal.
func RequireTypeEqual(t testing.TB, want, got types.AlgebraicType) {
	t.Helper()

	if types.TypesEqual(want, got) {
		return
	}

	diff := cmp.Diff(want.String(), got.String())
	require.Failf(t, "mismatched types, (-want, +got)", "%s", diff)
}

// MustHex decodes a hex string, ignoring spaces.
func MustHex(t testing.TB, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	require.NoError(t, err)
	return b
}

func render(v types.Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}
