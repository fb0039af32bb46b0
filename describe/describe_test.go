package describe_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/chaisql/sats/describe"
	"github.com/chaisql/sats/encoding/bsatn"
	"github.com/chaisql/sats/errors"
	"github.com/chaisql/sats/internal/testutil"
	"github.com/chaisql/sats/types"
	cerrors "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

type point struct {
	X int32
	Y int32
}

type user struct {
	Name     string
	Email    *string `sats:"mail"`
	Tags     []string
	Avatar   []byte
	Scores   map[string]float64
	Location point
	Created  time.Time
	Timeout  time.Duration
	Balance  types.U256
	Password string `sats:"-"`
	internal int
}

type tree struct {
	Value    int32
	Children []tree
}

type list struct {
	Head int32
	Tail *list
}

// color is described by hand as a sum of unit variants.
type color uint8

func (color) AlgebraicType(*describe.Builder) (types.AlgebraicType, error) {
	return types.Sum(
		types.Variant("red", types.UnitType()),
		types.Variant("green", types.UnitType()),
		types.Variant("blue", types.UnitType()),
	), nil
}

func (c color) SATSValue() (types.Value, error) {
	return types.NewSumValue(uint32(c), types.UnitValue()), nil
}

func (c *color) AssignSATSValue(v types.Value) error {
	s, ok := v.(types.SumValue)
	if !ok {
		return cerrors.New("not a color")
	}
	*c = color(s.Tag)
	return nil
}

type pixel struct {
	Color color
	Pos   point
}

func TestTypeOf(t *testing.T) {
	t.Run("primitives", func(t *testing.T) {
		tests := []struct {
			x    any
			want types.AlgebraicType
		}{
			{true, types.BoolType},
			{int8(0), types.I8Type},
			{0, types.I64Type},
			{uint(0), types.U64Type},
			{uint16(0), types.U16Type},
			{float32(0), types.F32Type},
			{"", types.StringType},
			{[]byte(nil), types.BytesType},
			{[4]byte{}, types.BytesType},
			{types.I128{}, types.I128Type},
			{time.Time{}, types.TimestampType()},
			{time.Second, types.TimeDurationType()},
			{(*int32)(nil), types.OptionType(types.I32Type)},
			{[]int16(nil), types.Array(types.I16Type)},
			{map[string]bool(nil), types.Map(types.StringType, types.BoolType)},
		}

		for _, test := range tests {
			t.Run(reflect.TypeOf(test.x).String(), func(t *testing.T) {
				_, got, err := describe.TypeOf(test.x)
				require.NoError(t, err)
				testutil.RequireTypeEqual(t, test.want, got)
			})
		}
	})

	t.Run("struct", func(t *testing.T) {
		ts, got, err := describe.TypeOf(user{})
		require.NoError(t, err)
		require.Equal(t, types.Ref(0), got)

		def, err := ts.Get(0)
		require.NoError(t, err)
		testutil.RequireTypeEqual(t, types.Product(
			types.Field("name", types.StringType),
			types.Field("mail", types.OptionType(types.StringType)),
			types.Field("tags", types.Array(types.StringType)),
			types.Field("avatar", types.BytesType),
			types.Field("scores", types.Map(types.StringType, types.F64Type)),
			types.Field("location", types.Ref(1)),
			types.Field("created", types.TimestampType()),
			types.Field("timeout", types.TimeDurationType()),
			types.Field("balance", types.U256Type),
		), def)

		loc, err := ts.Get(1)
		require.NoError(t, err)
		testutil.RequireTypeEqual(t, types.Product(types.Field("x", types.I32Type), types.Field("y", types.I32Type)), loc)
		require.NoError(t, ts.Validate())
	})

	t.Run("recursive", func(t *testing.T) {
		b := describe.NewBuilder()
		tt, err := b.Describe(tree{})
		require.NoError(t, err)
		lt, err := b.Describe(list{})
		require.NoError(t, err)

		// the same Go type is only described once
		again, err := b.Describe(tree{})
		require.NoError(t, err)
		require.Equal(t, tt, again)

		ts := b.Typespace()
		require.Equal(t, 2, ts.Len())
		require.NoError(t, ts.Validate())

		def, err := ts.Get(tt.(types.Ref))
		require.NoError(t, err)
		testutil.RequireTypeEqual(t, types.Product(
			types.Field("value", types.I32Type),
			types.Field("children", types.Array(tt)),
		), def)

		def, err = ts.Get(lt.(types.Ref))
		require.NoError(t, err)
		testutil.RequireTypeEqual(t, types.Product(
			types.Field("head", types.I32Type),
			types.Field("tail", types.OptionType(lt)),
		), def)
	})

	t.Run("describer", func(t *testing.T) {
		ts, got, err := describe.TypeOf(pixel{})
		require.NoError(t, err)
		require.NoError(t, ts.Validate())

		def, err := ts.Get(got.(types.Ref))
		require.NoError(t, err)
		ct, err := ts.Resolve(def.(types.ProductType).Elements[0].Type)
		require.NoError(t, err)
		require.Equal(t, 2, ct.(types.SumType).IndexOf("blue"))
	})

	t.Run("unsupported", func(t *testing.T) {
		_, _, err := describe.TypeOf(make(chan int))
		require.Error(t, err)

		_, _, err = describe.TypeOf(struct{ F func() }{})
		require.Error(t, err)
	})
}

func TestValueRoundTrip(t *testing.T) {
	mail := "ada@example.com"
	u := user{
		Name:     "ada",
		Email:    &mail,
		Tags:     []string{"admin"},
		Avatar:   []byte{1, 2, 3},
		Scores:   map[string]float64{"a": 1.5, "b": -2},
		Location: point{X: -5, Y: 7},
		Created:  time.UnixMicro(1700000000000000).UTC(),
		Timeout:  1500 * time.Millisecond,
		Balance:  types.U256FromUint64(42),
		Password: "secret",
	}

	ts, typ, err := describe.TypeOf(u)
	require.NoError(t, err)

	v, err := describe.ValueOf(u)
	require.NoError(t, err)
	require.NoError(t, types.Check(ts, typ, v))

	// go through the binary encoding
	b, err := bsatn.Encode(ts, typ, v)
	require.NoError(t, err)
	decoded, err := bsatn.Decode(ts, typ, b)
	require.NoError(t, err)

	var got user
	require.NoError(t, describe.Assign(&got, decoded))

	want := u
	require.Equal(t, want.Name, got.Name)
	require.Equal(t, *want.Email, *got.Email)
	require.Equal(t, want.Tags, got.Tags)
	require.Equal(t, want.Avatar, got.Avatar)
	require.Equal(t, want.Scores, got.Scores)
	require.Equal(t, want.Location, got.Location)
	require.True(t, want.Created.Equal(got.Created))
	require.Equal(t, want.Timeout, got.Timeout)
	require.Equal(t, want.Balance, got.Balance)
	require.Empty(t, got.Password)
}

func TestValueOfRecursive(t *testing.T) {
	l := list{Head: 1, Tail: &list{Head: 2}}

	ts, typ, err := describe.TypeOf(l)
	require.NoError(t, err)

	v, err := describe.ValueOf(&l)
	require.NoError(t, err)
	// a pointer to the root is an option
	require.Equal(t, uint32(0), v.(types.SumValue).Tag)

	v, err = describe.ValueOf(l)
	require.NoError(t, err)
	require.NoError(t, types.Check(ts, typ, v))

	var got list
	require.NoError(t, describe.Assign(&got, v))
	require.Equal(t, l, got)
}

func TestValuerAndAssigner(t *testing.T) {
	p := pixel{Color: 2, Pos: point{X: 1, Y: 1}}

	ts, typ, err := describe.TypeOf(p)
	require.NoError(t, err)

	v, err := describe.ValueOf(p)
	require.NoError(t, err)
	require.NoError(t, types.Check(ts, typ, v))
	require.Equal(t, types.NewSumValue(2, types.UnitValue()), v.(types.ProductValue)[0])

	var got pixel
	require.NoError(t, describe.Assign(&got, v))
	require.Equal(t, p, got)
}

func TestAssignErrors(t *testing.T) {
	var i8 int8
	err := describe.Assign(&i8, types.I32Value(300))
	require.True(t, errors.IsTypeMismatch(err))

	var u uint16
	err = describe.Assign(&u, types.I64Value(-1))
	require.True(t, errors.IsTypeMismatch(err))

	require.NoError(t, describe.Assign(&u, types.U128Value(types.U128FromUint64(7))))
	require.Equal(t, uint16(7), u)

	var p point
	err = describe.Assign(&p, types.NewProductValue(types.I32Value(1)))
	require.True(t, errors.IsTypeMismatch(err))

	var arr [2]byte
	err = describe.Assign(&arr, types.BytesValue{1, 2, 3})
	require.True(t, errors.IsTypeMismatch(err))

	var pts []point
	err = describe.Assign(&pts, types.NewArrayValue(types.NewProductValue(types.I32Value(1), types.StringValue("y"))))
	var tm *errors.TypeMismatchError
	require.ErrorAs(t, err, &tm)
	require.Equal(t, "[0].y", tm.Path)

	err = describe.Assign(p, types.UnitValue())
	require.Error(t, err)
}
