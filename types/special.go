package types

import (
	"time"
)

// Field names of the special product types. A product with exactly one field
// carrying one of these names is treated specially by the formatters.
const (
	IdentityTag     = "__identity__"
	ConnectionIDTag = "__connection_id__"
	TimestampTag    = "__timestamp_micros_since_unix_epoch__"
	TimeDurationTag = "__time_duration_micros__"
)

// Variant names of the option type.
const (
	OptionSomeTag = "some"
	OptionNoneTag = "none"
)

// UnitType returns the empty product.
func UnitType() ProductType { return ProductType{} }

// NeverType returns the empty sum, which has no values.
func NeverType() SumType { return SumType{} }

// OptionType returns the sum `some: t | none: ()`.
func OptionType(t AlgebraicType) SumType {
	return Sum(Variant(OptionSomeTag, t), Variant(OptionNoneTag, UnitType()))
}

// IdentityType returns the product `(__identity__: U256)`.
func IdentityType() ProductType { return Product(Field(IdentityTag, U256Type)) }

// ConnectionIDType returns the product `(__connection_id__: U128)`.
func ConnectionIDType() ProductType { return Product(Field(ConnectionIDTag, U128Type)) }

// TimestampType returns the product `(__timestamp_micros_since_unix_epoch__: I64)`.
func TimestampType() ProductType { return Product(Field(TimestampTag, I64Type)) }

// TimeDurationType returns the product `(__time_duration_micros__: I64)`.
func TimeDurationType() ProductType { return Product(Field(TimeDurationTag, I64Type)) }

// IsUnit reports whether t is the empty product.
func IsUnit(t AlgebraicType) bool {
	p, ok := t.(ProductType)
	return ok && len(p.Elements) == 0
}

// IsNever reports whether t is the empty sum.
func IsNever(t AlgebraicType) bool {
	s, ok := t.(SumType)
	return ok && len(s.Variants) == 0
}

// IsOption reports whether t is an option type and returns the type of its payload.
func IsOption(t AlgebraicType) (AlgebraicType, bool) {
	s, ok := t.(SumType)
	if !ok || len(s.Variants) != 2 {
		return nil, false
	}
	if s.Variants[0].Name != OptionSomeTag || s.Variants[1].Name != OptionNoneTag || !IsUnit(s.Variants[1].Type) {
		return nil, false
	}
	return s.Variants[0].Type, true
}

func isSpecialProduct(t AlgebraicType, tag string, k Kind) bool {
	p, ok := t.(ProductType)
	if !ok || len(p.Elements) != 1 || p.Elements[0].Name != tag {
		return false
	}
	pt, ok := p.Elements[0].Type.(PrimitiveType)
	return ok && pt.Kind() == k
}

func IsIdentity(t AlgebraicType) bool     { return isSpecialProduct(t, IdentityTag, KindU256) }
func IsConnectionID(t AlgebraicType) bool { return isSpecialProduct(t, ConnectionIDTag, KindU128) }
func IsTimestamp(t AlgebraicType) bool    { return isSpecialProduct(t, TimestampTag, KindI64) }
func IsTimeDuration(t AlgebraicType) bool { return isSpecialProduct(t, TimeDurationTag, KindI64) }

// IsSpecial reports whether t is one of the special product types.
func IsSpecial(t AlgebraicType) bool {
	return IsIdentity(t) || IsConnectionID(t) || IsTimestamp(t) || IsTimeDuration(t)
}

// SomeValue returns the `some` variant of an option holding v.
func SomeValue(v Value) SumValue { return SumValue{Tag: 0, Value: v} }

// NoneValue returns the `none` variant of an option.
func NoneValue() SumValue { return SumValue{Tag: 1, Value: UnitValue()} }

// TimestampValue returns the value of the Timestamp type for t, truncated to microseconds.
func TimestampValue(t time.Time) ProductValue {
	return ProductValue{I64Value(t.UnixMicro())}
}

// TimeFromValue converts a value of the Timestamp type back to a UTC time.
func TimeFromValue(v Value) (time.Time, bool) {
	micros, ok := singleI64(v)
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMicro(micros).UTC(), true
}

// TimeDurationValue returns the value of the TimeDuration type for d, truncated to microseconds.
func TimeDurationValue(d time.Duration) ProductValue {
	return ProductValue{I64Value(d.Microseconds())}
}

// DurationFromValue converts a value of the TimeDuration type back to a duration.
func DurationFromValue(v Value) (time.Duration, bool) {
	micros, ok := singleI64(v)
	if !ok {
		return 0, false
	}
	return time.Duration(micros) * time.Microsecond, true
}

func singleI64(v Value) (int64, bool) {
	p, ok := v.(ProductValue)
	if !ok || len(p) != 1 {
		return 0, false
	}
	i, ok := p[0].(I64Value)
	return int64(i), ok
}
