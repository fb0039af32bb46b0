package testutil

import (
	"math"

	"github.com/chaisql/sats/types"
)

// Case is a value along with the type it conforms to and its expected encodings.
// Empty BSATN or JSON fields mean the case is only used for round trips.
type Case struct {
	Name      string
	Typespace *types.Typespace
	Type      types.AlgebraicType
	Value     types.Value
	BSATN     string
	JSON      string
}

var (
	Point = types.Product(
		types.Field("x", types.I32Type),
		types.Field("y", types.I32Type),
	)

	Either = types.Sum(
		types.Variant("Left", types.StringType),
		types.Variant("Right", types.BoolType),
	)
)

// ListTypespace returns a typespace defining a recursive list of I32:
// &0 = (nil: () | cons: &1) and &1 = (head: I32, tail: &0).
func ListTypespace() *types.Typespace {
	var ts types.Typespace
	list := ts.Reserve()
	cell := ts.Reserve()
	if err := ts.Define(list, types.Sum(types.Variant("nil", types.UnitType()), types.Variant("cons", cell))); err != nil {
		panic(err)
	}
	if err := ts.Define(cell, types.Product(types.Field("head", types.I32Type), types.Field("tail", list))); err != nil {
		panic(err)
	}
	return &ts
}

// ListValue builds a value of the list type of ListTypespace.
func ListValue(xs ...int32) types.Value {
	v := types.Value(types.NewSumValue(0, types.UnitValue()))
	for i := len(xs) - 1; i >= 0; i-- {
		v = types.NewSumValue(1, types.NewProductValue(types.I32Value(xs[i]), v))
	}
	return v
}

// Corpus returns a set of values covering every kind, used by the codec tests.
func Corpus() []Case {
	return []Case{
		{Name: "bool", Type: types.BoolType, Value: types.BoolValue(true), BSATN: "01", JSON: `true`},
		{Name: "i8", Type: types.I8Type, Value: types.I8Value(-1), BSATN: "ff", JSON: `-1`},
		{Name: "u8", Type: types.U8Type, Value: types.U8Value(200), BSATN: "c8", JSON: `200`},
		{Name: "i16", Type: types.I16Type, Value: types.I16Value(-300), BSATN: "d4fe", JSON: `-300`},
		{Name: "u16", Type: types.U16Type, Value: types.U16Value(513), BSATN: "0102", JSON: `513`},
		{Name: "i32", Type: types.I32Type, Value: types.I32Value(-5), BSATN: "fbffffff", JSON: `-5`},
		{Name: "u32", Type: types.U32Type, Value: types.U32Value(7), BSATN: "07000000", JSON: `7`},
		{Name: "i64", Type: types.I64Type, Value: types.I64Value(-2), BSATN: "feffffffffffffff", JSON: `"-2"`},
		{Name: "u64", Type: types.U64Type, Value: types.U64Value(math.MaxUint64), BSATN: "ffffffffffffffff", JSON: `"18446744073709551615"`},
		{Name: "u128", Type: types.U128Type, Value: types.U128Value(types.U128FromUint64(1)), BSATN: "01000000000000000000000000000000", JSON: `"1"`},
		{Name: "i128", Type: types.I128Type, Value: types.I128Value(types.I128FromInt64(-1)), BSATN: "ffffffffffffffffffffffffffffffff", JSON: `"-1"`},
		{Name: "u256", Type: types.U256Type, Value: types.U256Value(types.U256FromUint64(5)), BSATN: "0500000000000000000000000000000000000000000000000000000000000000", JSON: `"5"`},
		{Name: "i256", Type: types.I256Type, Value: types.I256Value(types.I256FromInt64(-2)), BSATN: "feffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", JSON: `"-2"`},
		{Name: "f32", Type: types.F32Type, Value: types.F32Value(1.5), BSATN: "0000c03f", JSON: `1.5`},
		{Name: "f64", Type: types.F64Type, Value: types.F64Value(-0.5), BSATN: "000000000000e0bf", JSON: `-0.5`},
		{Name: "f64 NaN", Type: types.F64Type, Value: types.F64Value(math.NaN()), BSATN: "000000000000f87f", JSON: `"NaN"`},
		{Name: "f64 +Inf", Type: types.F64Type, Value: types.F64Value(math.Inf(1)), BSATN: "000000000000f07f", JSON: `"Infinity"`},
		{Name: "string", Type: types.StringType, Value: types.StringValue("hé"), BSATN: "0300000068c3a9", JSON: `"hé"`},
		{Name: "bytes", Type: types.BytesType, Value: types.BytesValue{0xde, 0xad}, BSATN: "02000000dead", JSON: `"dead"`},
		{Name: "unit", Type: types.UnitType(), Value: types.UnitValue(), JSON: `{}`},
		{Name: "point", Type: Point, Value: types.NewProductValue(types.I32Value(-5), types.I32Value(7)), BSATN: "fbffffff07000000", JSON: `{"x":-5,"y":7}`},
		{
			Name:  "positional product",
			Type:  types.ProductType{Elements: []types.ProductTypeElement{{Type: types.I32Type}, {Type: types.BoolType}}},
			Value: types.NewProductValue(types.I32Value(1), types.BoolValue(true)),
			BSATN: "0100000001",
			JSON:  `{"0":1,"1":true}`,
		},
		{Name: "sum", Type: Either, Value: types.NewSumValue(1, types.BoolValue(true)), BSATN: "0101", JSON: `{"Right":true}`},
		{Name: "option none", Type: types.OptionType(types.I32Type), Value: types.NoneValue(), BSATN: "01", JSON: `"none"`},
		{Name: "option some", Type: types.OptionType(types.I32Type), Value: types.SomeValue(types.I32Value(3)), BSATN: "0003000000", JSON: `{"some":3}`},
		{Name: "array", Type: types.Array(types.U8Type), Value: types.NewArrayValue(types.U8Value(1), types.U8Value(2)), BSATN: "020000000102", JSON: `[1,2]`},
		{Name: "empty array", Type: types.Array(types.StringType), Value: types.NewArrayValue(), BSATN: "00000000", JSON: `[]`},
		{
			Name: "string map",
			Type: types.Map(types.StringType, types.U8Type),
			Value: types.MapValue{
				{Key: types.StringValue("b"), Value: types.U8Value(2)},
				{Key: types.StringValue("a"), Value: types.U8Value(1)},
			},
			BSATN: "02000000010000006101010000006202",
			JSON:  `{"a":1,"b":2}`,
		},
		{
			Name:  "int map",
			Type:  types.Map(types.I32Type, types.StringType),
			Value: types.MapValue{{Key: types.I32Value(2), Value: types.StringValue("x")}},
			BSATN: "01000000020000000100000078",
			JSON:  `[[2,"x"]]`,
		},
		{
			Name:      "recursive list",
			Typespace: ListTypespace(),
			Type:      types.Ref(0),
			Value:     ListValue(1),
			BSATN:     "010100000000",
			JSON:      `{"cons":{"head":1,"tail":"nil"}}`,
		},
		{Name: "long list", Typespace: ListTypespace(), Type: types.Ref(0), Value: ListValue(1, 2, 3, 4, 5)},
		{
			Name:  "identity",
			Type:  types.IdentityType(),
			Value: types.NewProductValue(types.U256Value(types.U256FromUint64(1))),
			BSATN: "0100000000000000000000000000000000000000000000000000000000000000",
			JSON:  `{"__identity__":"1"}`,
		},
		{
			Name:  "timestamp",
			Type:  types.TimestampType(),
			Value: types.NewProductValue(types.I64Value(1700000000000000)),
			BSATN: "00401e18240a0600",
			JSON:  `{"__timestamp_micros_since_unix_epoch__":"1700000000000000"}`,
		},
		{
			Name: "nested",
			Type: types.Product(
				types.Field("name", types.StringType),
				types.Field("points", types.Array(Point)),
				types.Field("tags", types.Map(types.StringType, types.OptionType(types.F64Type))),
			),
			Value: types.NewProductValue(
				types.StringValue("shape"),
				types.NewArrayValue(
					types.NewProductValue(types.I32Value(0), types.I32Value(0)),
					types.NewProductValue(types.I32Value(1), types.I32Value(-1)),
				),
				types.MapValue{
					{Key: types.StringValue("area"), Value: types.SomeValue(types.F64Value(0.5))},
					{Key: types.StringValue("depth"), Value: types.NoneValue()},
				},
			),
		},
	}
}
