package types

import (
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/chaisql/sats/errors"
	cerrors "github.com/cockroachdb/errors"
)

// Value is a value of the algebraic type system. Like AlgebraicType, the set of
// implementations is closed. A value never references a typespace: it can only be
// interpreted against the type it was built for.
type Value interface {
	Kind() Kind
	// V returns the underlying Go value.
	V() any
	String() string

	value()
}

var (
	_ Value = BoolValue(false)
	_ Value = I8Value(0)
	_ Value = U8Value(0)
	_ Value = I16Value(0)
	_ Value = U16Value(0)
	_ Value = I32Value(0)
	_ Value = U32Value(0)
	_ Value = I64Value(0)
	_ Value = U64Value(0)
	_ Value = I128Value{}
	_ Value = U128Value{}
	_ Value = I256Value{}
	_ Value = U256Value{}
	_ Value = F32Value(0)
	_ Value = F64Value(0)
	_ Value = StringValue("")
	_ Value = BytesValue(nil)
	_ Value = ProductValue(nil)
	_ Value = SumValue{}
	_ Value = ArrayValue(nil)
	_ Value = MapValue(nil)
)

type BoolValue bool

func NewBoolValue(x bool) BoolValue { return BoolValue(x) }
func (v BoolValue) Kind() Kind      { return KindBool }
func (v BoolValue) V() any          { return bool(v) }
func (v BoolValue) String() string  { return strconv.FormatBool(bool(v)) }
func (BoolValue) value()            {}

type I8Value int8

func NewI8Value(x int8) I8Value    { return I8Value(x) }
func (v I8Value) Kind() Kind       { return KindI8 }
func (v I8Value) V() any           { return int8(v) }
func (v I8Value) String() string   { return strconv.FormatInt(int64(v), 10) }
func (I8Value) value()             {}

type U8Value uint8

func NewU8Value(x uint8) U8Value   { return U8Value(x) }
func (v U8Value) Kind() Kind       { return KindU8 }
func (v U8Value) V() any           { return uint8(v) }
func (v U8Value) String() string   { return strconv.FormatUint(uint64(v), 10) }
func (U8Value) value()             {}

type I16Value int16

func NewI16Value(x int16) I16Value { return I16Value(x) }
func (v I16Value) Kind() Kind      { return KindI16 }
func (v I16Value) V() any          { return int16(v) }
func (v I16Value) String() string  { return strconv.FormatInt(int64(v), 10) }
func (I16Value) value()            {}

type U16Value uint16

func NewU16Value(x uint16) U16Value { return U16Value(x) }
func (v U16Value) Kind() Kind       { return KindU16 }
func (v U16Value) V() any           { return uint16(v) }
func (v U16Value) String() string   { return strconv.FormatUint(uint64(v), 10) }
func (U16Value) value()             {}

type I32Value int32

func NewI32Value(x int32) I32Value { return I32Value(x) }
func (v I32Value) Kind() Kind      { return KindI32 }
func (v I32Value) V() any          { return int32(v) }
func (v I32Value) String() string  { return strconv.FormatInt(int64(v), 10) }
func (I32Value) value()            {}

type U32Value uint32

func NewU32Value(x uint32) U32Value { return U32Value(x) }
func (v U32Value) Kind() Kind       { return KindU32 }
func (v U32Value) V() any           { return uint32(v) }
func (v U32Value) String() string   { return strconv.FormatUint(uint64(v), 10) }
func (U32Value) value()             {}

type I64Value int64

func NewI64Value(x int64) I64Value { return I64Value(x) }
func (v I64Value) Kind() Kind      { return KindI64 }
func (v I64Value) V() any          { return int64(v) }
func (v I64Value) String() string  { return strconv.FormatInt(int64(v), 10) }
func (I64Value) value()            {}

type U64Value uint64

func NewU64Value(x uint64) U64Value { return U64Value(x) }
func (v U64Value) Kind() Kind       { return KindU64 }
func (v U64Value) V() any           { return uint64(v) }
func (v U64Value) String() string   { return strconv.FormatUint(uint64(v), 10) }
func (U64Value) value()             {}

type I128Value I128

func (v I128Value) Kind() Kind     { return KindI128 }
func (v I128Value) V() any         { return I128(v) }
func (v I128Value) String() string { return I128(v).String() }
func (I128Value) value()           {}

type U128Value U128

func (v U128Value) Kind() Kind     { return KindU128 }
func (v U128Value) V() any         { return U128(v) }
func (v U128Value) String() string { return U128(v).String() }
func (U128Value) value()           {}

type I256Value I256

func (v I256Value) Kind() Kind     { return KindI256 }
func (v I256Value) V() any         { return I256(v) }
func (v I256Value) String() string { return I256(v).String() }
func (I256Value) value()           {}

type U256Value U256

func (v U256Value) Kind() Kind     { return KindU256 }
func (v U256Value) V() any         { return U256(v) }
func (v U256Value) String() string { return U256(v).String() }
func (U256Value) value()           {}

// F32Value is a 32-bit float. NaN payloads and signs are not observable:
// every NaN compares, hashes and encodes as the canonical quiet NaN.
type F32Value float32

func NewF32Value(x float32) F32Value { return F32Value(x) }
func (v F32Value) Kind() Kind        { return KindF32 }
func (v F32Value) V() any            { return float32(v) }
func (v F32Value) String() string    { return strconv.FormatFloat(float64(v), 'g', -1, 32) }
func (F32Value) value()              {}

// F64Value is a 64-bit float, see F32Value for NaN handling.
type F64Value float64

func NewF64Value(x float64) F64Value { return F64Value(x) }
func (v F64Value) Kind() Kind        { return KindF64 }
func (v F64Value) V() any            { return float64(v) }
func (v F64Value) String() string    { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (F64Value) value()              {}

type StringValue string

func NewStringValue(x string) StringValue { return StringValue(x) }
func (v StringValue) Kind() Kind          { return KindString }
func (v StringValue) V() any              { return string(v) }
func (v StringValue) String() string      { return strconv.Quote(string(v)) }
func (StringValue) value()                {}

type BytesValue []byte

func NewBytesValue(x []byte) BytesValue { return BytesValue(x) }
func (v BytesValue) Kind() Kind         { return KindBytes }
func (v BytesValue) V() any             { return []byte(v) }
func (v BytesValue) String() string     { return "0x" + hex.EncodeToString(v) }
func (BytesValue) value()               {}

// ProductValue holds the values of the fields of a product, in declaration order.
// The empty product is the unit value.
type ProductValue []Value

// NewProductValue returns a product value made of the given field values.
func NewProductValue(fields ...Value) ProductValue {
	return ProductValue(fields)
}

// UnitValue returns the only value of the unit type.
func UnitValue() ProductValue {
	return ProductValue{}
}

func (v ProductValue) Kind() Kind { return KindProduct }
func (v ProductValue) V() any     { return []Value(v) }

func (v ProductValue) String() string {
	return "(" + joinValues(v) + ")"
}

func (ProductValue) value() {}

// SumValue holds the tag of the selected variant and its payload.
type SumValue struct {
	Tag   uint32
	Value Value
}

func NewSumValue(tag uint32, payload Value) SumValue {
	return SumValue{Tag: tag, Value: payload}
}

func (v SumValue) Kind() Kind { return KindSum }
func (v SumValue) V() any     { return v }

func (v SumValue) String() string {
	payload := "<nil>"
	if v.Value != nil {
		payload = v.Value.String()
	}
	return "(" + strconv.FormatUint(uint64(v.Tag), 10) + " = " + payload + ")"
}

func (SumValue) value() {}

// ArrayValue holds the elements of an array.
type ArrayValue []Value

func NewArrayValue(elems ...Value) ArrayValue {
	return ArrayValue(elems)
}

func (v ArrayValue) Kind() Kind { return KindArray }
func (v ArrayValue) V() any     { return []Value(v) }

func (v ArrayValue) String() string {
	return "[" + joinValues(v) + "]"
}

func (ArrayValue) value() {}

// MapEntry is a key and its associated value.
type MapEntry struct {
	Key   Value
	Value Value
}

// MapValue holds the entries of a map. Entries keep the order in which they were
// added, but that order is never observable through Compare, Hash or the codecs:
// they all operate on the canonical order returned by Sorted.
type MapValue []MapEntry

// NewMapValue returns a map value made of the given entries.
// It returns ErrDuplicateKey if two keys are canonically equal.
func NewMapValue(entries ...MapEntry) (MapValue, error) {
	m := MapValue(entries)
	if i := m.duplicateKey(); i >= 0 {
		return nil, cerrors.Wrapf(errors.ErrDuplicateKey, "key %s", entries[i].Key)
	}
	return m, nil
}

func (v MapValue) Kind() Kind { return KindMap }
func (v MapValue) V() any     { return []MapEntry(v) }

func (v MapValue) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, e := range v.Sorted() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(valueString(e.Key))
		sb.WriteString(" => ")
		sb.WriteString(valueString(e.Value))
	}
	sb.WriteByte('}')
	return sb.String()
}

func (MapValue) value() {}

// Sorted returns a copy of the entries sorted by canonical key order.
func (v MapValue) Sorted() MapValue {
	cp := make(MapValue, len(v))
	copy(cp, v)
	sort.SliceStable(cp, func(i, j int) bool {
		return Compare(cp[i].Key, cp[j].Key) < 0
	})
	return cp
}

// Get returns the value associated with key.
func (v MapValue) Get(key Value) (Value, bool) {
	for _, e := range v {
		if Equal(e.Key, key) {
			return e.Value, true
		}
	}
	return nil, false
}

// duplicateKey returns the index of an entry whose key appears earlier in the map, or -1.
func (v MapValue) duplicateKey() int {
	if len(v) < 2 {
		return -1
	}

	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return Compare(v[idx[i]].Key, v[idx[j]].Key) < 0
	})

	for i := 1; i < len(idx); i++ {
		if Compare(v[idx[i-1]].Key, v[idx[i]].Key) == 0 {
			return idx[i]
		}
	}
	return -1
}

func joinValues(vs []Value) string {
	var sb strings.Builder
	for i, v := range vs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(valueString(v))
	}
	return sb.String()
}

func valueString(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}
