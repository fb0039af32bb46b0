package bsatn

import (
	"math"

	"github.com/chaisql/sats/types"
	"github.com/cockroachdb/errors"
)

type encoder struct {
	ts *types.Typespace
}

// encode appends v to dst. v must have been checked against t.
func (e *encoder) encode(dst []byte, t types.AlgebraicType, v types.Value) ([]byte, error) {
	t, err := e.ts.Resolve(t)
	if err != nil {
		return nil, err
	}

	switch x := v.(type) {
	case types.BoolValue:
		if x {
			return append(dst, 1), nil
		}
		return append(dst, 0), nil
	case types.I8Value:
		return appendLE(dst, int8(x)), nil
	case types.U8Value:
		return append(dst, byte(x)), nil
	case types.I16Value:
		return appendLE(dst, int16(x)), nil
	case types.U16Value:
		return appendLE(dst, uint16(x)), nil
	case types.I32Value:
		return appendLE(dst, int32(x)), nil
	case types.U32Value:
		return appendLE(dst, uint32(x)), nil
	case types.I64Value:
		return appendLE(dst, int64(x)), nil
	case types.U64Value:
		return appendLE(dst, uint64(x)), nil
	case types.I128Value:
		return types.I128(x).AppendLE(dst), nil
	case types.U128Value:
		return types.U128(x).AppendLE(dst), nil
	case types.I256Value:
		return types.I256(x).AppendLE(dst), nil
	case types.U256Value:
		return types.U256(x).AppendLE(dst), nil
	case types.F32Value:
		return appendLE(dst, types.F32Bits(float32(x))), nil
	case types.F64Value:
		return appendLE(dst, types.F64Bits(float64(x))), nil
	case types.StringValue:
		if dst, err = appendLen(dst, len(x)); err != nil {
			return nil, err
		}
		return append(dst, string(x)...), nil
	case types.BytesValue:
		if dst, err = appendLen(dst, len(x)); err != nil {
			return nil, err
		}
		return append(dst, x...), nil
	case types.ProductValue:
		pt, ok := t.(types.ProductType)
		if !ok || len(pt.Elements) != len(x) {
			return nil, errors.Errorf("cannot encode product value as %s", t)
		}
		for i, f := range x {
			if dst, err = e.encode(dst, pt.Elements[i].Type, f); err != nil {
				return nil, err
			}
		}
		return dst, nil
	case types.SumValue:
		st, ok := t.(types.SumType)
		if !ok || uint64(x.Tag) >= uint64(len(st.Variants)) {
			return nil, errors.Errorf("cannot encode sum value as %s", t)
		}
		dst = appendTag(dst, x.Tag, len(st.Variants))
		return e.encode(dst, st.Variants[x.Tag].Type, x.Value)
	case types.ArrayValue:
		at, ok := t.(types.ArrayType)
		if !ok {
			return nil, errors.Errorf("cannot encode array value as %s", t)
		}
		if dst, err = appendLen(dst, len(x)); err != nil {
			return nil, err
		}
		for _, elem := range x {
			if dst, err = e.encode(dst, at.Elem, elem); err != nil {
				return nil, err
			}
		}
		return dst, nil
	case types.MapValue:
		mt, ok := t.(types.MapType)
		if !ok {
			return nil, errors.Errorf("cannot encode map value as %s", t)
		}
		if dst, err = appendLen(dst, len(x)); err != nil {
			return nil, err
		}
		for _, entry := range x.Sorted() {
			if dst, err = e.encode(dst, mt.Key, entry.Key); err != nil {
				return nil, err
			}
			if dst, err = e.encode(dst, mt.Value, entry.Value); err != nil {
				return nil, err
			}
		}
		return dst, nil
	}

	return nil, errors.Errorf("cannot encode value of kind %s", v.Kind())
}

func appendLen(dst []byte, n int) ([]byte, error) {
	if uint64(n) > math.MaxUint32 {
		return nil, errors.Errorf("length %d does not fit in a u32 prefix", n)
	}
	return appendLE(dst, uint32(n)), nil
}
