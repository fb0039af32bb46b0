package types_test

import (
	"testing"

	"github.com/chaisql/sats/errors"
	"github.com/chaisql/sats/internal/testutil"
	"github.com/chaisql/sats/types"
	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  types.AlgebraicType
		want string
	}{
		{types.BoolType, "Bool"},
		{types.I32Type, "I32"},
		{types.Ref(3), "&3"},
		{testutil.Point, "(x: I32, y: I32)"},
		{testutil.Either, "(Left: String | Right: Bool)"},
		{types.Array(types.U8Type), "Array<U8>"},
		{types.Map(types.StringType, types.U8Type), "Map<String, U8>"},
		{types.UnitType(), "()"},
		{types.NeverType(), "(|)"},
		{types.ProductType{Elements: []types.ProductTypeElement{{Type: types.I8Type}}}, "(I8)"},
	}

	for _, test := range tests {
		t.Run(test.want, func(t *testing.T) {
			require.Equal(t, test.want, test.typ.String())
		})
	}
}

func TestNewProductType(t *testing.T) {
	_, err := types.NewProductType(types.Field("x", types.I32Type), types.Field("x", types.StringType))
	require.True(t, errors.IsSchemaError(err))

	_, err = types.NewProductType(types.Field("x", nil))
	require.True(t, errors.IsSchemaError(err))

	_, err = types.NewProductType(types.Field("x", types.PrimitiveType(types.KindArray)))
	require.True(t, errors.IsSchemaError(err))

	// unnamed fields may repeat
	p, err := types.NewProductType(types.Field("", types.I32Type), types.Field("", types.I32Type))
	require.NoError(t, err)
	require.Len(t, p.Elements, 2)
	require.Equal(t, "1", p.ElementName(1))

	// a named field cannot take the position of an unnamed one
	_, err = types.NewProductType(types.Field("1", types.I32Type), types.Field("", types.I32Type))
	require.True(t, errors.IsSchemaError(err))

	_, err = types.NewProductType(types.Field("", types.I32Type), types.Field("0", types.I32Type))
	require.NoError(t, err)

	require.Panics(t, func() {
		types.Product(types.Field("a", types.BoolType), types.Field("a", types.BoolType))
	})
}

func TestNewSumType(t *testing.T) {
	_, err := types.NewSumType(types.Variant("A", types.UnitType()), types.Variant("A", types.BoolType))
	require.True(t, errors.IsSchemaError(err))

	s, err := types.NewSumType(types.Variant("A", types.UnitType()), types.Variant("B", types.BoolType))
	require.NoError(t, err)
	require.Equal(t, 1, s.IndexOf("B"))
	require.Equal(t, -1, s.IndexOf("C"))
	require.Equal(t, "A", s.VariantName(0))
}

func TestTypesEqual(t *testing.T) {
	require.True(t, types.TypesEqual(testutil.Point, types.Product(types.Field("x", types.I32Type), types.Field("y", types.I32Type))))
	require.False(t, types.TypesEqual(testutil.Point, types.Product(types.Field("y", types.I32Type), types.Field("x", types.I32Type))))
	require.False(t, types.TypesEqual(types.Ref(0), types.Ref(1)))
	require.False(t, types.TypesEqual(types.I32Type, types.U32Type))
	require.True(t, types.TypesEqual(types.Map(types.StringType, types.Ref(2)), types.Map(types.StringType, types.Ref(2))))
	require.False(t, types.TypesEqual(types.Array(types.I8Type), nil))
	require.False(t, types.TypesEqual(types.PrimitiveType(types.KindSum), types.NeverType()))
	require.False(t, types.TypesEqual(types.NeverType(), types.PrimitiveType(types.KindSum)))
}

func TestSpecialTypes(t *testing.T) {
	inner, ok := types.IsOption(types.OptionType(types.StringType))
	require.True(t, ok)
	require.Equal(t, types.StringType, inner)

	_, ok = types.IsOption(testutil.Either)
	require.False(t, ok)

	require.True(t, types.IsIdentity(types.IdentityType()))
	require.True(t, types.IsConnectionID(types.ConnectionIDType()))
	require.True(t, types.IsTimestamp(types.TimestampType()))
	require.True(t, types.IsTimeDuration(types.TimeDurationType()))
	require.False(t, types.IsTimestamp(types.TimeDurationType()))
	require.False(t, types.IsSpecial(testutil.Point))
	require.True(t, types.IsUnit(types.UnitType()))
	require.True(t, types.IsNever(types.NeverType()))
}

func TestKind(t *testing.T) {
	k, ok := types.KindFromName("U128")
	require.True(t, ok)
	require.Equal(t, types.KindU128, k)
	require.Equal(t, 128, k.BitSize())
	require.False(t, k.IsSigned())
	require.True(t, types.KindI8.IsSigned())
	require.False(t, types.KindMap.IsPrimitive())
	require.Equal(t, "Kind(200)", types.Kind(200).String())

	_, ok = types.KindFromName("Nope")
	require.False(t, ok)
}
