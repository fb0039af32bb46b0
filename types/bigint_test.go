package types_test

import (
	"math/big"
	"testing"

	"github.com/chaisql/sats/types"
	"github.com/stretchr/testify/require"
)

func bigInt(t *testing.T, s string) *big.Int {
	t.Helper()

	b, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return b
}

func TestWideIntegerRange(t *testing.T) {
	tests := []struct {
		s    string
		kind types.Kind
		fits bool
	}{
		{"0", types.KindU128, true},
		{"-1", types.KindU128, false},
		{"340282366920938463463374607431768211455", types.KindU128, true},
		{"340282366920938463463374607431768211456", types.KindU128, false},
		{"170141183460469231731687303715884105727", types.KindI128, true},
		{"170141183460469231731687303715884105728", types.KindI128, false},
		{"-170141183460469231731687303715884105728", types.KindI128, true},
		{"-170141183460469231731687303715884105729", types.KindI128, false},
		{"-57896044618658097711785492504343953926634992332820282019728792003956564819968", types.KindI256, true},
		{"115792089237316195423570985008687907853269984665640564039457584007913129639935", types.KindU256, true},
		{"255", types.KindU8, true},
		{"256", types.KindU8, false},
		{"-128", types.KindI8, true},
		{"1", types.KindString, false},
	}

	for _, test := range tests {
		t.Run(test.kind.String()+" "+test.s, func(t *testing.T) {
			require.Equal(t, test.fits, types.FitsKind(bigInt(t, test.s), test.kind))
		})
	}
}

func TestWideIntegerConversions(t *testing.T) {
	t.Run("I128", func(t *testing.T) {
		for _, s := range []string{"0", "1", "-1", "-170141183460469231731687303715884105728", "18446744073709551616"} {
			v, err := types.I128FromBig(bigInt(t, s))
			require.NoError(t, err)
			require.Equal(t, s, v.String())
			require.Equal(t, v, types.I128FromLE(v.AppendLE(nil)))
		}

		_, err := types.I128FromBig(bigInt(t, "170141183460469231731687303715884105728"))
		require.Error(t, err)
	})

	t.Run("U256", func(t *testing.T) {
		s := "115792089237316195423570985008687907853269984665640564039457584007913129639935"
		v, err := types.U256FromBig(bigInt(t, s))
		require.NoError(t, err)
		require.Equal(t, types.U256{^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)}, v)
		require.Equal(t, s, v.String())
		require.Len(t, v.AppendLE(nil), 32)
	})

	t.Run("I256", func(t *testing.T) {
		require.Equal(t, types.I256FromInt64(-7), mustI256(t, "-7"))
		require.Equal(t, "-7", types.I256FromInt64(-7).String())
	})

	t.Run("U128", func(t *testing.T) {
		v, err := types.U128FromBig(bigInt(t, "18446744073709551616"))
		require.NoError(t, err)
		require.Equal(t, types.U128{0, 1}, v)
		require.Equal(t, v, types.U128FromLE(v.AppendLE(nil)))
	})
}

func mustI256(t *testing.T, s string) types.I256 {
	t.Helper()

	v, err := types.I256FromBig(bigInt(t, s))
	require.NoError(t, err)
	return v
}

func TestWideIntegerCmp(t *testing.T) {
	require.Equal(t, -1, types.I128FromInt64(-2).Cmp(types.I128FromInt64(-1)))
	require.Equal(t, -1, types.I128FromInt64(-1).Cmp(types.I128FromInt64(0)))
	require.Equal(t, 1, types.U128{0, 1}.Cmp(types.U128{^uint64(0), 0}))
	require.Equal(t, 0, types.U256FromUint64(3).Cmp(types.U256FromUint64(3)))
	require.Equal(t, 1, types.I256FromInt64(5).Cmp(types.I256FromInt64(-5)))
}

func TestParseBigInt(t *testing.T) {
	b, err := types.ParseBigInt("-12", types.KindI64)
	require.NoError(t, err)
	require.Equal(t, int64(-12), b.Int64())

	_, err = types.ParseBigInt("1.5", types.KindI64)
	require.Error(t, err)

	_, err = types.ParseBigInt("-1", types.KindU64)
	require.Error(t, err)
}
