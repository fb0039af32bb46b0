package jsoncodec_test

import (
	"math"
	"testing"
	"time"

	"github.com/chaisql/sats/encoding/bsatn"
	"github.com/chaisql/sats/encoding/jsoncodec"
	"github.com/chaisql/sats/errors"
	"github.com/chaisql/sats/internal/testutil"
	"github.com/chaisql/sats/types"
	cerrors "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestCorpus(t *testing.T) {
	for _, c := range testutil.Corpus() {
		t.Run(c.Name, func(t *testing.T) {
			b, err := jsoncodec.Marshal(c.Typespace, c.Type, c.Value)
			require.NoError(t, err)
			if c.JSON != "" {
				require.Equal(t, c.JSON, string(b))
			}

			got, err := jsoncodec.Unmarshal(c.Typespace, c.Type, b)
			require.NoError(t, err)
			testutil.RequireValueEqual(t, c.Value, got)

			// both codecs agree on the decoded value
			want, err := bsatn.Encode(c.Typespace, c.Type, c.Value)
			require.NoError(t, err)
			enc, err := bsatn.Encode(c.Typespace, c.Type, got)
			require.NoError(t, err)
			require.Equal(t, want, enc)
		})
	}
}

func TestMarshalStrings(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `"plain"`},
		{`a"b`, `"a\"b"`},
		{`back\slash`, `"back\\slash"`},
		{"line\nbreak\ttab", `"line\nbreak\ttab"`},
		{"\x01", `"\u0001"`},
		{"日本", `"日本"`},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			b, err := jsoncodec.Marshal(nil, types.StringType, types.StringValue(test.in))
			require.NoError(t, err)
			require.Equal(t, test.want, string(b))

			v, err := jsoncodec.Unmarshal(nil, types.StringType, b)
			require.NoError(t, err)
			require.Equal(t, types.StringValue(test.in), v)
		})
	}
}

func TestUnmarshalAlternateForms(t *testing.T) {
	tests := []struct {
		name string
		typ  types.AlgebraicType
		data string
		want types.Value
	}{
		{"positional product", testutil.Point, `[-5, 7]`, types.NewProductValue(types.I32Value(-5), types.I32Value(7))},
		{"fields out of order", testutil.Point, `{"y": 7, "x": -5}`, types.NewProductValue(types.I32Value(-5), types.I32Value(7))},
		{"i64 as number", types.I64Type, `-2`, types.I64Value(-2)},
		{"u8 as string", types.U8Type, `"200"`, types.U8Value(200)},
		{"bytes with prefix", types.BytesType, `"0xdead"`, types.BytesValue{0xde, 0xad}},
		{"negative infinity", types.F32Type, `"-Infinity"`, types.F32Value(float32(math.Inf(-1)))},
		{"null option", types.OptionType(types.I32Type), `null`, types.NoneValue()},
		{"unit variant as object", types.OptionType(types.I32Type), `{"none": {}}`, types.NoneValue()},
		{"empty string map", types.Map(types.StringType, types.U8Type), `{}`, types.MapValue{}},
		{"surrounding whitespace", types.BoolType, " true \n", types.BoolValue(true)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v, err := jsoncodec.Unmarshal(nil, test.typ, []byte(test.data))
			require.NoError(t, err)
			testutil.RequireValueEqual(t, test.want, v)
		})
	}
}

func TestUnmarshalTimestampString(t *testing.T) {
	v, err := jsoncodec.Unmarshal(nil, types.TimestampType(), []byte(`"2023-11-14 22:13:20"`))
	require.NoError(t, err)

	got, ok := types.TimeFromValue(v)
	require.True(t, ok)
	require.True(t, time.UnixMicro(1700000000000000).Equal(got))

	_, err = jsoncodec.Unmarshal(nil, types.TimestampType(), []byte(`"not a date"`))
	require.True(t, errors.IsJSONFormatError(err))
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		typ  types.AlgebraicType
		data string
		path string
	}{
		{"empty input", types.BoolType, ``, ""},
		{"trailing data", types.BoolType, `true false`, ""},
		{"wrong type", types.BoolType, `1`, ""},
		{"integer overflow", types.U8Type, `256`, ""},
		{"fractional integer", types.I32Type, `1.5`, ""},
		{"invalid float string", types.F64Type, `"nan"`, ""},
		{"invalid hex", types.BytesType, `"xyz"`, ""},
		{"missing field", testutil.Point, `{"x": 1}`, ""},
		{"unknown field", testutil.Point, `{"x": 1, "y": 2, "z": 3}`, ""},
		{"too many positional fields", testutil.Point, `[1, 2, 3]`, ""},
		{"nested field", testutil.Point, `{"x": 1, "y": "2a"}`, ".y"},
		{"sum with two keys", testutil.Either, `{"Left": "a", "Right": true}`, ""},
		{"sum with no keys", testutil.Either, `{}`, ""},
		{"unknown variant", testutil.Either, `{"Middle": 1}`, ""},
		{"payload required", testutil.Either, `"Left"`, ""},
		{"variant payload", testutil.Either, `{"Right": 1}`, "(Right)"},
		{"null", testutil.Either, `null`, ""},
		{"never", types.NeverType(), `{}`, ""},
		{"array element", types.Array(types.U8Type), `[1, -1]`, "[1]"},
		{"object for int keys", types.Map(types.I32Type, types.BoolType), `{"1": true}`, ""},
		{"bad pair", types.Map(types.I32Type, types.BoolType), `[[1]]`, "[0]"},
		{"duplicate keys", types.Map(types.I32Type, types.BoolType), `[[1, true], [1, false]]`, ""},
		{"malformed", types.Array(types.U8Type), `[1, 2`, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := jsoncodec.Unmarshal(nil, test.typ, []byte(test.data))
			require.Truef(t, errors.IsJSONFormatError(err), "%v", err)

			var je *errors.JSONFormatError
			require.ErrorAs(t, err, &je)
			require.Equal(t, test.path, je.Path)
		})
	}
}

func TestUnmarshalDuplicateStringKeys(t *testing.T) {
	_, err := jsoncodec.Unmarshal(nil, types.Map(types.StringType, types.U8Type), []byte(`{"a": 1, "a": 2}`))
	require.True(t, cerrors.Is(err, errors.ErrDuplicateKey))
}

func TestUnmarshalDepth(t *testing.T) {
	ts := testutil.ListTypespace()
	b, err := jsoncodec.Marshal(ts, types.Ref(0), testutil.ListValue(1, 2, 3, 4, 5, 6, 7, 8))
	require.NoError(t, err)

	_, err = jsoncodec.Options{MaxDepth: 8}.Unmarshal(ts, types.Ref(0), b)
	require.True(t, errors.IsJSONFormatError(err))

	v, err := jsoncodec.Options{MaxDepth: 64}.Unmarshal(ts, types.Ref(0), b)
	require.NoError(t, err)
	testutil.RequireValueEqual(t, testutil.ListValue(1, 2, 3, 4, 5, 6, 7, 8), v)
}

func TestMarshalTypeMismatch(t *testing.T) {
	_, err := jsoncodec.Marshal(nil, testutil.Point, types.NewProductValue(types.I32Value(1)))
	require.True(t, errors.IsTypeMismatch(err))
}
