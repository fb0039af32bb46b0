package types

import (
	"bytes"
	"cmp"
	"strings"
)

// Compare returns -1, 0 or 1 depending on whether a sorts before, equal to or after b.
// The order is total over all values:
//   - values of different kinds are ordered by kind
//   - floats use the order of F64Key/F32Key, so NaN is equal to itself and -0 < +0
//   - products, arrays and maps are compared lexicographically, maps in canonical key order
//   - sums are compared by tag, then by payload
//
// A nil value sorts before any other value.
func Compare(a, b Value) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	if c := cmp.Compare(a.Kind(), b.Kind()); c != 0 {
		return c
	}

	switch x := a.(type) {
	case BoolValue:
		y := b.(BoolValue)
		switch {
		case x == y:
			return 0
		case !bool(x):
			return -1
		default:
			return 1
		}
	case I8Value:
		return cmp.Compare(x, b.(I8Value))
	case U8Value:
		return cmp.Compare(x, b.(U8Value))
	case I16Value:
		return cmp.Compare(x, b.(I16Value))
	case U16Value:
		return cmp.Compare(x, b.(U16Value))
	case I32Value:
		return cmp.Compare(x, b.(I32Value))
	case U32Value:
		return cmp.Compare(x, b.(U32Value))
	case I64Value:
		return cmp.Compare(x, b.(I64Value))
	case U64Value:
		return cmp.Compare(x, b.(U64Value))
	case I128Value:
		return I128(x).Cmp(I128(b.(I128Value)))
	case U128Value:
		return U128(x).Cmp(U128(b.(U128Value)))
	case I256Value:
		return I256(x).Cmp(I256(b.(I256Value)))
	case U256Value:
		return U256(x).Cmp(U256(b.(U256Value)))
	case F32Value:
		return cmp.Compare(F32Key(float32(x)), F32Key(float32(b.(F32Value))))
	case F64Value:
		return cmp.Compare(F64Key(float64(x)), F64Key(float64(b.(F64Value))))
	case StringValue:
		return strings.Compare(string(x), string(b.(StringValue)))
	case BytesValue:
		return bytes.Compare(x, b.(BytesValue))
	case ProductValue:
		return compareSlices(x, b.(ProductValue))
	case ArrayValue:
		return compareSlices(x, b.(ArrayValue))
	case SumValue:
		y := b.(SumValue)
		if c := cmp.Compare(x.Tag, y.Tag); c != 0 {
			return c
		}
		return Compare(x.Value, y.Value)
	case MapValue:
		return compareMaps(x.Sorted(), b.(MapValue).Sorted())
	}

	panic("unreachable: unknown value kind " + a.Kind().String())
}

// Equal reports whether a and b are canonically equal.
// Equal values always have the same Hash.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

func compareSlices(a, b []Value) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func compareMaps(a, b MapValue) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if c := Compare(a[i].Key, b[i].Key); c != 0 {
			return c
		}
		if c := Compare(a[i].Value, b[i].Value); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}
