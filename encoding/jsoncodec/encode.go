package jsoncodec

import (
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/chaisql/sats/types"
	"github.com/cockroachdb/errors"
)

type encoder struct {
	ts *types.Typespace
}

func (e *encoder) encode(dst []byte, t types.AlgebraicType, v types.Value) ([]byte, error) {
	t, err := e.ts.Resolve(t)
	if err != nil {
		return nil, err
	}

	switch x := v.(type) {
	case types.BoolValue:
		return strconv.AppendBool(dst, bool(x)), nil
	case types.I8Value:
		return strconv.AppendInt(dst, int64(x), 10), nil
	case types.U8Value:
		return strconv.AppendUint(dst, uint64(x), 10), nil
	case types.I16Value:
		return strconv.AppendInt(dst, int64(x), 10), nil
	case types.U16Value:
		return strconv.AppendUint(dst, uint64(x), 10), nil
	case types.I32Value:
		return strconv.AppendInt(dst, int64(x), 10), nil
	case types.U32Value:
		return strconv.AppendUint(dst, uint64(x), 10), nil
	case types.I64Value:
		return appendQuotedNumber(dst, strconv.FormatInt(int64(x), 10)), nil
	case types.U64Value:
		return appendQuotedNumber(dst, strconv.FormatUint(uint64(x), 10)), nil
	case types.I128Value, types.U128Value, types.I256Value, types.U256Value:
		return appendQuotedNumber(dst, x.String()), nil
	case types.F32Value:
		return appendFloat(dst, float64(x), 32), nil
	case types.F64Value:
		return appendFloat(dst, float64(x), 64), nil
	case types.StringValue:
		return appendString(dst, string(x)), nil
	case types.BytesValue:
		dst = append(dst, '"')
		for _, c := range x {
			dst = append(dst, hexDigits[c>>4], hexDigits[c&0xF])
		}
		return append(dst, '"'), nil
	case types.ProductValue:
		pt := t.(types.ProductType)
		dst = append(dst, '{')
		for i, f := range x {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendString(dst, pt.ElementName(i))
			dst = append(dst, ':')
			if dst, err = e.encode(dst, pt.Elements[i].Type, f); err != nil {
				return nil, err
			}
		}
		return append(dst, '}'), nil
	case types.SumValue:
		st := t.(types.SumType)
		variant := st.Variants[x.Tag]
		name := st.VariantName(int(x.Tag))

		payloadType, err := e.ts.Resolve(variant.Type)
		if err != nil {
			return nil, err
		}
		if types.IsUnit(payloadType) {
			return appendString(dst, name), nil
		}

		dst = append(dst, '{')
		dst = appendString(dst, name)
		dst = append(dst, ':')
		if dst, err = e.encode(dst, variant.Type, x.Value); err != nil {
			return nil, err
		}
		return append(dst, '}'), nil
	case types.ArrayValue:
		at := t.(types.ArrayType)
		dst = append(dst, '[')
		for i, elem := range x {
			if i > 0 {
				dst = append(dst, ',')
			}
			if dst, err = e.encode(dst, at.Elem, elem); err != nil {
				return nil, err
			}
		}
		return append(dst, ']'), nil
	case types.MapValue:
		return e.encodeMap(dst, t.(types.MapType), x)
	}

	return nil, errors.Errorf("cannot encode value of kind %s", v.Kind())
}

func (e *encoder) encodeMap(dst []byte, mt types.MapType, m types.MapValue) ([]byte, error) {
	keyType, err := e.ts.Resolve(mt.Key)
	if err != nil {
		return nil, err
	}

	if keyType.Kind() == types.KindString {
		dst = append(dst, '{')
		for i, entry := range m.Sorted() {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendString(dst, string(entry.Key.(types.StringValue)))
			dst = append(dst, ':')
			if dst, err = e.encode(dst, mt.Value, entry.Value); err != nil {
				return nil, err
			}
		}
		return append(dst, '}'), nil
	}

	dst = append(dst, '[')
	for i, entry := range m.Sorted() {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, '[')
		if dst, err = e.encode(dst, mt.Key, entry.Key); err != nil {
			return nil, err
		}
		dst = append(dst, ',')
		if dst, err = e.encode(dst, mt.Value, entry.Value); err != nil {
			return nil, err
		}
		dst = append(dst, ']')
	}
	return append(dst, ']'), nil
}

func appendQuotedNumber(dst []byte, s string) []byte {
	dst = append(dst, '"')
	dst = append(dst, s...)
	return append(dst, '"')
}

func appendFloat(dst []byte, f float64, bitSize int) []byte {
	switch {
	case math.IsNaN(f):
		return append(dst, `"NaN"`...)
	case math.IsInf(f, 1):
		return append(dst, `"Infinity"`...)
	case math.IsInf(f, -1):
		return append(dst, `"-Infinity"`...)
	}

	return strconv.AppendFloat(dst, f, 'g', -1, bitSize)
}

const hexDigits = "0123456789abcdef"

// appendString appends s as a JSON string. s must be valid UTF-8.
func appendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			i++
			continue
		}
		if c >= 0x20 && c != '"' && c != '\\' {
			i++
			continue
		}

		dst = append(dst, s[start:i]...)
		switch c {
		case '"', '\\':
			dst = append(dst, '\\', c)
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
		}
		i++
		start = i
	}
	dst = append(dst, s[start:]...)
	return append(dst, '"')
}
