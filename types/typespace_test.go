package types_test

import (
	"testing"

	"github.com/chaisql/sats/errors"
	"github.com/chaisql/sats/internal/testutil"
	"github.com/chaisql/sats/types"
	cerrors "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestTypespaceReserveDefine(t *testing.T) {
	ts := types.NewTypespace()
	r := ts.Reserve()
	require.Equal(t, types.Ref(0), r)

	// using a slot before it is defined
	_, err := ts.Get(r)
	require.True(t, errors.IsSchemaError(err))
	require.True(t, errors.IsSchemaError(ts.Validate()))

	require.NoError(t, ts.Define(r, types.Product(types.Field("next", types.OptionType(r)))))
	require.NoError(t, ts.Validate())

	err = ts.Define(r, types.BoolType)
	require.True(t, errors.IsSchemaError(err))

	err = ts.Define(types.Ref(9), types.BoolType)
	require.True(t, errors.IsUnresolvedRef(err))
}

func TestTypespaceResolve(t *testing.T) {
	ts := types.NewTypespace(types.Ref(1), types.Ref(2), types.BoolType)

	got, err := ts.Resolve(types.Ref(0))
	require.NoError(t, err)
	require.Equal(t, types.BoolType, got)

	got, err = ts.Resolve(types.I8Type)
	require.NoError(t, err)
	require.Equal(t, types.I8Type, got)

	_, err = ts.Resolve(types.Ref(3))
	require.True(t, errors.IsUnresolvedRef(err))

	var nilts *types.Typespace
	_, err = nilts.Resolve(types.Ref(0))
	require.True(t, errors.IsUnresolvedRef(err))

	// a primitive type must carry a primitive kind
	for _, k := range []types.Kind{types.KindRef, types.KindProduct, types.KindSum, types.KindArray, types.KindMap} {
		_, err = types.NewTypespace(types.PrimitiveType(k)).Resolve(types.Ref(0))
		require.True(t, errors.IsSchemaError(err), k.String())
	}
}

func TestTypespaceRefCycle(t *testing.T) {
	ts := types.NewTypespace(types.Ref(1), types.Ref(0))

	_, err := ts.Resolve(types.Ref(0))
	require.True(t, errors.IsSchemaError(err))
	require.True(t, errors.IsSchemaError(ts.Validate()))

	self := types.NewTypespace(types.Ref(0))
	require.True(t, errors.IsSchemaError(self.Validate()))
}

func TestTypespaceValidate(t *testing.T) {
	tests := []struct {
		name    string
		ts      *types.Typespace
		wantErr func(error) bool
	}{
		{"valid recursive", testutil.ListTypespace(), nil},
		{"dangling ref", types.NewTypespace(types.Array(types.Ref(4))), errors.IsUnresolvedRef},
		{"duplicate names", types.NewTypespace(types.ProductType{Elements: []types.ProductTypeElement{
			{Name: "a", Type: types.BoolType}, {Name: "a", Type: types.I8Type},
		}}), errors.IsSchemaError},
		{"nil member", types.NewTypespace(types.Map(types.StringType, nil)), errors.IsSchemaError},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.ts.Validate()
			if test.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, test.wantErr(err), err.Error())
		})
	}
}

func TestTypespaceEqualClone(t *testing.T) {
	ts := testutil.ListTypespace()
	cp := ts.Clone()
	require.True(t, ts.Equal(cp))

	cp.Add(types.BoolType)
	require.False(t, ts.Equal(cp))
	require.Equal(t, 2, ts.Len())
}

func TestCompatible(t *testing.T) {
	list := testutil.ListTypespace()

	// the same list laid out differently, with an extra indirection and the cell inlined
	other := types.NewTypespace(types.BoolType)
	head := other.Reserve()
	alias := other.Add(head)
	require.NoError(t, other.Define(head, types.Sum(
		types.Variant("nil", types.UnitType()),
		types.Variant("cons", types.Product(types.Field("head", types.I32Type), types.Field("tail", alias))),
	)))

	t.Run("recursive schemas terminate", func(t *testing.T) {
		require.NoError(t, types.Compatible(list, types.Ref(0), other, alias))
		require.NoError(t, types.Compatible(other, head, list, types.Ref(0)))
		require.NoError(t, types.Compatible(list, types.Ref(0), list, types.Ref(0)))
	})

	t.Run("different element type", func(t *testing.T) {
		ints := types.NewTypespace()
		l := ints.Reserve()
		require.NoError(t, ints.Define(l, types.Sum(
			types.Variant("nil", types.UnitType()),
			types.Variant("cons", types.Product(types.Field("head", types.I64Type), types.Field("tail", l))),
		)))

		err := types.Compatible(list, types.Ref(0), ints, l)
		require.True(t, cerrors.Is(err, types.ErrIncompatible))
		require.Contains(t, err.Error(), ".cons.head")
	})

	t.Run("renamed field", func(t *testing.T) {
		err := types.Compatible(nil, testutil.Point, nil, types.Product(types.Field("x", types.I32Type), types.Field("z", types.I32Type)))
		require.True(t, cerrors.Is(err, types.ErrIncompatible))
	})

	t.Run("dangling ref", func(t *testing.T) {
		err := types.Compatible(nil, types.Ref(0), list, types.Ref(0))
		require.True(t, errors.IsUnresolvedRef(err))
	})

	t.Run("malformed primitive", func(t *testing.T) {
		err := types.Compatible(nil, types.PrimitiveType(types.KindSum), nil, testutil.Either)
		require.True(t, cerrors.Is(err, types.ErrIncompatible))

		err = types.Compatible(nil, testutil.Point, nil, types.PrimitiveType(types.KindProduct))
		require.True(t, cerrors.Is(err, types.ErrIncompatible))
	})

	t.Run("maps", func(t *testing.T) {
		require.NoError(t, types.Compatible(nil, types.Map(types.StringType, types.I8Type), nil, types.Map(types.StringType, types.I8Type)))
		err := types.Compatible(nil, types.Map(types.StringType, types.I8Type), nil, types.Map(types.I8Type, types.I8Type))
		require.True(t, cerrors.Is(err, types.ErrIncompatible))
	})
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		ts       *types.Typespace
		typ      types.AlgebraicType
		value    types.Value
		wantPath string
	}{
		{"kind", nil, types.I32Type, types.StringValue("x"), ""},
		{"field", nil, testutil.Point, types.NewProductValue(types.I32Value(1), types.I64Value(2)), ".y"},
		{"arity", nil, testutil.Point, types.NewProductValue(types.I32Value(1)), ""},
		{"tag", nil, testutil.Either, types.NewSumValue(2, types.BoolValue(true)), ""},
		{"payload", nil, testutil.Either, types.NewSumValue(0, types.BoolValue(true)), "(Left)"},
		{"array", nil, types.Array(types.U8Type), types.NewArrayValue(types.U8Value(1), types.I8Value(1)), "[1]"},
		{"utf8", nil, types.StringType, types.StringValue("\xff"), ""},
		{"nil", nil, types.BoolType, nil, ""},
		{"recursive", testutil.ListTypespace(), types.Ref(0), types.NewSumValue(1, types.NewProductValue(types.I32Value(1), types.BoolValue(true))), "(cons).tail"},
		{"map key", nil, types.Map(types.StringType, types.U8Type), types.MapValue{{Key: types.I8Value(1), Value: types.U8Value(1)}}, "{1}"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := types.Check(test.ts, test.typ, test.value)
			require.True(t, errors.IsTypeMismatch(err), "%v", err)

			var tm *errors.TypeMismatchError
			require.True(t, cerrors.As(err, &tm))
			require.Equal(t, test.wantPath, tm.Path)
		})
	}

	t.Run("duplicate keys", func(t *testing.T) {
		err := types.Check(nil, types.Map(types.StringType, types.U8Type), types.MapValue{
			{Key: types.StringValue("a"), Value: types.U8Value(1)},
			{Key: types.StringValue("a"), Value: types.U8Value(2)},
		})
		require.True(t, errors.IsTypeMismatch(err))
		require.True(t, cerrors.Is(err, errors.ErrDuplicateKey))
	})

	t.Run("corpus", func(t *testing.T) {
		for _, c := range testutil.Corpus() {
			require.NoError(t, types.Check(c.Typespace, c.Type, c.Value), c.Name)
		}
	})

	t.Run("unresolved", func(t *testing.T) {
		err := types.Check(nil, types.Ref(0), types.BoolValue(true))
		require.True(t, errors.IsUnresolvedRef(err))
	})
}

func TestMetaRoundTrip(t *testing.T) {
	tys := []types.AlgebraicType{
		types.BoolType,
		types.Ref(7),
		testutil.Point,
		testutil.Either,
		types.NeverType(),
		types.Map(types.StringType, types.Array(types.OptionType(types.BytesType))),
		types.ProductType{Elements: []types.ProductTypeElement{{Type: types.I256Type}}},
	}

	meta := types.NewMetaTypespace()
	require.NoError(t, meta.Validate())

	for _, ty := range tys {
		t.Run(ty.String(), func(t *testing.T) {
			v, err := types.TypeToValue(ty)
			require.NoError(t, err)
			require.NoError(t, types.Check(meta, types.MetaAlgebraicType, v))

			got, err := types.TypeFromValue(v)
			require.NoError(t, err)
			testutil.RequireTypeEqual(t, ty, got)
		})
	}

	t.Run("typespace", func(t *testing.T) {
		ts := testutil.ListTypespace()
		v, err := types.TypespaceToValue(ts)
		require.NoError(t, err)
		require.NoError(t, types.Check(meta, types.MetaTypespace, v))

		got, err := types.TypespaceFromValue(v)
		require.NoError(t, err)
		require.True(t, ts.Equal(got))
	})

	t.Run("meta describes itself", func(t *testing.T) {
		v, err := types.TypespaceToValue(meta)
		require.NoError(t, err)
		require.NoError(t, types.Check(meta, types.MetaTypespace, v))
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := types.TypeFromValue(types.NewSumValue(99, types.UnitValue()))
		require.True(t, errors.IsSchemaError(err))

		_, err = types.TypeFromValue(types.NewSumValue(uint32(types.KindRef), types.StringValue("x")))
		require.True(t, errors.IsSchemaError(err))
	})
}
