package jsoncodec

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/buger/jsonparser"
	"github.com/chaisql/sats/errors"
	"github.com/chaisql/sats/types"
	"github.com/golang-module/carbon/v2"
	cerrors "github.com/cockroachdb/errors"
)

type decoder struct {
	ts    *types.Typespace
	opts  Options
	depth int
}

func (d *decoder) unmarshal(t types.AlgebraicType, data []byte) (types.Value, error) {
	raw, vt, end, err := jsonparser.Get(data)
	if err != nil {
		return nil, errors.NewJSONFormatError("", "%v", err)
	}
	if strings.TrimSpace(string(data[end:])) != "" {
		return nil, errors.NewJSONFormatError("", "unexpected data after top-level value")
	}

	return d.decode("", t, raw, vt)
}

func (d *decoder) enter(path string) error {
	d.depth++
	if d.depth > d.opts.MaxDepth {
		return errors.NewJSONFormatError(path, "maximum depth %d exceeded", d.opts.MaxDepth)
	}
	return nil
}

func (d *decoder) leave() { d.depth-- }

func (d *decoder) decode(path string, t types.AlgebraicType, raw []byte, vt jsonparser.ValueType) (types.Value, error) {
	t, err := d.ts.Resolve(t)
	if err != nil {
		return nil, err
	}

	switch t := t.(type) {
	case types.PrimitiveType:
		return decodePrimitive(path, types.Kind(t), raw, vt)
	case types.ProductType:
		if types.IsTimestamp(t) && vt == jsonparser.String {
			return decodeTimestamp(path, raw)
		}
		return d.decodeProduct(path, t, raw, vt)
	case types.SumType:
		return d.decodeSum(path, t, raw, vt)
	case types.ArrayType:
		return d.decodeArray(path, t, raw, vt)
	case types.MapType:
		return d.decodeMap(path, t, raw, vt)
	}

	return nil, cerrors.Errorf("unsupported type %s", t)
}

func decodePrimitive(path string, k types.Kind, raw []byte, vt jsonparser.ValueType) (types.Value, error) {
	switch {
	case k == types.KindBool:
		if vt != jsonparser.Boolean {
			return nil, unexpected(path, "a boolean", vt)
		}
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return nil, errors.NewJSONFormatError(path, "%v", err)
		}
		return types.BoolValue(b), nil
	case k.IsInteger():
		return decodeInteger(path, k, raw, vt)
	case k.IsFloat():
		return decodeFloat(path, k, raw, vt)
	case k == types.KindString:
		if vt != jsonparser.String {
			return nil, unexpected(path, "a string", vt)
		}
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil, errors.NewJSONFormatError(path, "%v", err)
		}
		if !utf8.ValidString(s) {
			return nil, errors.NewJSONFormatError(path, "invalid UTF-8 string")
		}
		return types.StringValue(s), nil
	case k == types.KindBytes:
		if vt != jsonparser.String {
			return nil, unexpected(path, "a hex string", vt)
		}
		s := strings.TrimPrefix(string(raw), "0x")
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, errors.NewJSONFormatError(path, "invalid hex string: %v", err)
		}
		return types.BytesValue(b), nil
	}

	return nil, cerrors.Errorf("unsupported kind %s", k)
}

func decodeInteger(path string, k types.Kind, raw []byte, vt jsonparser.ValueType) (types.Value, error) {
	if vt != jsonparser.Number && vt != jsonparser.String {
		return nil, unexpected(path, "an integer", vt)
	}

	b, err := types.ParseBigInt(string(raw), k)
	if err != nil {
		return nil, errors.NewJSONFormatError(path, "%v", err)
	}

	switch k {
	case types.KindI8:
		return types.I8Value(b.Int64()), nil
	case types.KindU8:
		return types.U8Value(b.Uint64()), nil
	case types.KindI16:
		return types.I16Value(b.Int64()), nil
	case types.KindU16:
		return types.U16Value(b.Uint64()), nil
	case types.KindI32:
		return types.I32Value(b.Int64()), nil
	case types.KindU32:
		return types.U32Value(b.Uint64()), nil
	case types.KindI64:
		return types.I64Value(b.Int64()), nil
	case types.KindU64:
		return types.U64Value(b.Uint64()), nil
	case types.KindI128:
		x, err := types.I128FromBig(b)
		return types.I128Value(x), err
	case types.KindU128:
		x, err := types.U128FromBig(b)
		return types.U128Value(x), err
	case types.KindI256:
		x, err := types.I256FromBig(b)
		return types.I256Value(x), err
	default:
		x, err := types.U256FromBig(b)
		return types.U256Value(x), err
	}
}

func decodeFloat(path string, k types.Kind, raw []byte, vt jsonparser.ValueType) (types.Value, error) {
	var f float64
	switch vt {
	case jsonparser.String:
		switch string(raw) {
		case "NaN":
			f = math.NaN()
		case "Infinity":
			f = math.Inf(1)
		case "-Infinity":
			f = math.Inf(-1)
		default:
			return nil, errors.NewJSONFormatError(path, "invalid float %q", raw)
		}
	case jsonparser.Number:
		var err error
		f, err = strconv.ParseFloat(string(raw), k.BitSize())
		if err != nil {
			return nil, errors.NewJSONFormatError(path, "invalid float %q", raw)
		}
	default:
		return nil, unexpected(path, "a number", vt)
	}

	if k == types.KindF32 {
		return types.F32Value(f), nil
	}
	return types.F64Value(f), nil
}

// decodeTimestamp accepts a date string in place of the microseconds object.
func decodeTimestamp(path string, raw []byte) (types.Value, error) {
	s, err := jsonparser.ParseString(raw)
	if err != nil {
		return nil, errors.NewJSONFormatError(path, "%v", err)
	}

	c := carbon.Parse(s, "UTC")
	if c.Error != nil {
		return nil, errors.NewJSONFormatError(path, "invalid timestamp %q", s)
	}

	return types.NewProductValue(types.I64Value(c.ToStdTime().UnixMicro())), nil
}

func (d *decoder) decodeProduct(path string, t types.ProductType, raw []byte, vt jsonparser.ValueType) (types.Value, error) {
	if err := d.enter(path); err != nil {
		return nil, err
	}
	defer d.leave()

	fields := make(types.ProductValue, len(t.Elements))

	switch vt {
	case jsonparser.Array:
		var i int
		err := d.each(path, raw, func(value []byte, dataType jsonparser.ValueType) error {
			if i >= len(t.Elements) {
				return errors.NewJSONFormatError(path, "expected %d fields, got more", len(t.Elements))
			}
			v, err := d.decode(path+"."+t.ElementName(i), t.Elements[i].Type, value, dataType)
			if err != nil {
				return err
			}
			fields[i] = v
			i++
			return nil
		})
		if err != nil {
			return nil, err
		}
		if i != len(t.Elements) {
			return nil, errors.NewJSONFormatError(path, "expected %d fields, got %d", len(t.Elements), i)
		}
		return fields, nil
	case jsonparser.Object:
		err := jsonparser.ObjectEach(raw, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
			i := fieldIndex(t, string(key))
			if i < 0 {
				return errors.NewJSONFormatError(path, "unknown field %q", key)
			}
			if fields[i] != nil {
				return errors.NewJSONFormatError(path, "duplicate field %q", key)
			}

			v, err := d.decode(path+"."+t.ElementName(i), t.Elements[i].Type, value, dataType)
			if err != nil {
				return err
			}
			fields[i] = v
			return nil
		})
		if err != nil {
			return nil, wrapParseError(path, err)
		}

		for i, f := range fields {
			if f == nil {
				return nil, errors.NewJSONFormatError(path, "missing field %q", t.ElementName(i))
			}
		}
		return fields, nil
	}

	return nil, unexpected(path, "an object or an array", vt)
}

func fieldIndex(t types.ProductType, key string) int {
	for i := range t.Elements {
		if t.ElementName(i) == key {
			return i
		}
	}
	return -1
}

func (d *decoder) decodeSum(path string, t types.SumType, raw []byte, vt jsonparser.ValueType) (types.Value, error) {
	if err := d.enter(path); err != nil {
		return nil, err
	}
	defer d.leave()

	if len(t.Variants) == 0 {
		return nil, errors.NewJSONFormatError(path, "the empty sum type has no values")
	}

	switch vt {
	case jsonparser.Null:
		if _, ok := types.IsOption(t); ok {
			return types.NoneValue(), nil
		}
	case jsonparser.String:
		name, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil, errors.NewJSONFormatError(path, "%v", err)
		}
		tag := variantIndex(t, name)
		if tag < 0 {
			return nil, errors.NewJSONFormatError(path, "unknown variant %q", name)
		}
		payload, err := d.ts.Resolve(t.Variants[tag].Type)
		if err != nil {
			return nil, err
		}
		if !types.IsUnit(payload) {
			return nil, errors.NewJSONFormatError(path, "variant %q requires a payload", name)
		}
		return types.NewSumValue(uint32(tag), types.UnitValue()), nil
	case jsonparser.Object:
		var (
			sum   types.SumValue
			found bool
		)
		err := jsonparser.ObjectEach(raw, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
			if found {
				return errors.NewJSONFormatError(path, "sum object must have exactly one key")
			}
			tag := variantIndex(t, string(key))
			if tag < 0 {
				return errors.NewJSONFormatError(path, "unknown variant %q", key)
			}

			v, err := d.decode(path+"("+string(key)+")", t.Variants[tag].Type, value, dataType)
			if err != nil {
				return err
			}
			sum = types.NewSumValue(uint32(tag), v)
			found = true
			return nil
		})
		if err != nil {
			return nil, wrapParseError(path, err)
		}
		if !found {
			return nil, errors.NewJSONFormatError(path, "sum object must have exactly one key")
		}
		return sum, nil
	}

	return nil, unexpected(path, "a variant name or an object", vt)
}

func variantIndex(t types.SumType, name string) int {
	for i := range t.Variants {
		if t.VariantName(i) == name {
			return i
		}
	}
	return -1
}

func (d *decoder) decodeArray(path string, t types.ArrayType, raw []byte, vt jsonparser.ValueType) (types.Value, error) {
	if vt != jsonparser.Array {
		return nil, unexpected(path, "an array", vt)
	}
	if err := d.enter(path); err != nil {
		return nil, err
	}
	defer d.leave()

	arr := types.ArrayValue{}
	err := d.each(path, raw, func(value []byte, dataType jsonparser.ValueType) error {
		v, err := d.decode(path+"["+strconv.Itoa(len(arr))+"]", t.Elem, value, dataType)
		if err != nil {
			return err
		}
		arr = append(arr, v)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return arr, nil
}

func (d *decoder) decodeMap(path string, t types.MapType, raw []byte, vt jsonparser.ValueType) (types.Value, error) {
	if err := d.enter(path); err != nil {
		return nil, err
	}
	defer d.leave()

	var entries []types.MapEntry

	switch vt {
	case jsonparser.Object:
		keyType, err := d.ts.Resolve(t.Key)
		if err != nil {
			return nil, err
		}
		if keyType.Kind() != types.KindString {
			return nil, errors.NewJSONFormatError(path, "objects can only represent maps with string keys")
		}

		err = jsonparser.ObjectEach(raw, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
			v, err := d.decode(path+"{"+string(key)+"}", t.Value, value, dataType)
			if err != nil {
				return err
			}
			entries = append(entries, types.MapEntry{Key: types.StringValue(key), Value: v})
			return nil
		})
		if err != nil {
			return nil, wrapParseError(path, err)
		}
	case jsonparser.Array:
		err := d.each(path, raw, func(value []byte, dataType jsonparser.ValueType) error {
			entryPath := path + "[" + strconv.Itoa(len(entries)) + "]"
			if dataType != jsonparser.Array {
				return unexpected(entryPath, "a [key, value] pair", dataType)
			}

			var pair [2]types.Value
			var n int
			err := d.each(entryPath, value, func(value []byte, dataType jsonparser.ValueType) error {
				if n >= 2 {
					return errors.NewJSONFormatError(entryPath, "expected a [key, value] pair")
				}
				typ := t.Key
				if n == 1 {
					typ = t.Value
				}
				v, err := d.decode(entryPath, typ, value, dataType)
				if err != nil {
					return err
				}
				pair[n] = v
				n++
				return nil
			})
			if err != nil {
				return err
			}
			if n != 2 {
				return errors.NewJSONFormatError(entryPath, "expected a [key, value] pair")
			}

			entries = append(entries, types.MapEntry{Key: pair[0], Value: pair[1]})
			return nil
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, unexpected(path, "an object or an array of pairs", vt)
	}

	m, err := types.NewMapValue(entries...)
	if err != nil {
		return nil, cerrors.Mark(errors.NewJSONFormatError(path, "%v", err), errors.ErrDuplicateKey)
	}
	if m == nil {
		m = types.MapValue{}
	}
	return m, nil
}

// each calls fn for every element of the JSON array raw, stopping at the first error.
func (d *decoder) each(path string, raw []byte, fn func(value []byte, dataType jsonparser.ValueType) error) error {
	var cbErr error
	_, err := jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if cbErr != nil {
			return
		}
		if err != nil {
			cbErr = errors.NewJSONFormatError(path, "%v", err)
			return
		}
		cbErr = fn(value, dataType)
	})
	if cbErr != nil {
		return cbErr
	}
	if err != nil {
		return errors.NewJSONFormatError(path, "%v", err)
	}
	return nil
}

// wrapParseError turns a syntax error reported by the parser into a JSONFormatError,
// leaving errors produced while decoding nested values untouched.
func wrapParseError(path string, err error) error {
	var je *errors.JSONFormatError
	if cerrors.As(err, &je) {
		return err
	}
	var ue *errors.UnresolvedRefError
	if cerrors.As(err, &ue) {
		return err
	}
	return errors.NewJSONFormatError(path, "%v", err)
}

func unexpected(path, want string, vt jsonparser.ValueType) error {
	return errors.NewJSONFormatError(path, "expected %s, got %s", want, vt)
}
