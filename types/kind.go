package types

import "fmt"

// Kind identifies the constructor of an algebraic type or value.
// The numeric value of each kind is its variant index in the serialized
// meta-type and is part of the wire format: kinds must never be reordered,
// adding one is a breaking schema change.
type Kind uint8

// List of kinds.
const (
	KindRef Kind = iota
	KindSum
	KindProduct
	KindArray
	KindString
	KindBool
	KindI8
	KindU8
	KindI16
	KindU16
	KindI32
	KindU32
	KindI64
	KindU64
	KindI128
	KindU128
	KindI256
	KindU256
	KindF32
	KindF64
	KindMap
	KindBytes

	kindCount
)

var kindNames = [kindCount]string{
	KindRef:     "Ref",
	KindSum:     "Sum",
	KindProduct: "Product",
	KindArray:   "Array",
	KindString:  "String",
	KindBool:    "Bool",
	KindI8:      "I8",
	KindU8:      "U8",
	KindI16:     "I16",
	KindU16:     "U16",
	KindI32:     "I32",
	KindU32:     "U32",
	KindI64:     "I64",
	KindU64:     "U64",
	KindI128:    "I128",
	KindU128:    "U128",
	KindI256:    "I256",
	KindU256:    "U256",
	KindF32:     "F32",
	KindF64:     "F64",
	KindMap:     "Map",
	KindBytes:   "Bytes",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsValid returns false for values outside the closed set of kinds.
func (k Kind) IsValid() bool {
	return k < kindCount
}

// IsPrimitive returns true for leaf kinds: booleans, numbers, strings and byte strings.
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindBool, KindString, KindBytes, KindF32, KindF64:
		return true
	}

	return k.IsInteger()
}

// IsInteger returns true for the signed and unsigned integer kinds of every width.
func (k Kind) IsInteger() bool {
	return k >= KindI8 && k <= KindU256
}

// IsSigned returns true for signed integer kinds.
func (k Kind) IsSigned() bool {
	switch k {
	case KindI8, KindI16, KindI32, KindI64, KindI128, KindI256:
		return true
	}
	return false
}

// IsFloat returns true for F32 and F64.
func (k Kind) IsFloat() bool {
	return k == KindF32 || k == KindF64
}

// BitSize returns the width in bits of fixed-width primitives, 0 otherwise.
func (k Kind) BitSize() int {
	switch k {
	case KindBool, KindI8, KindU8:
		return 8
	case KindI16, KindU16:
		return 16
	case KindI32, KindU32, KindF32:
		return 32
	case KindI64, KindU64, KindF64:
		return 64
	case KindI128, KindU128:
		return 128
	case KindI256, KindU256:
		return 256
	}

	return 0
}

// KindFromName returns the kind whose String() is name.
func KindFromName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}

	return 0, false
}
