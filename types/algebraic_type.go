package types

import (
	"strconv"
	"strings"

	"github.com/chaisql/sats/errors"
)

// AlgebraicType describes the shape of a value. The set of implementations is
// closed: PrimitiveType, Ref, ProductType, SumType, ArrayType and MapType.
// Code handling types switches on Kind() and is expected to cover every kind.
//
// Recursive types are never embedded structurally: a type that refers to itself
// does so through a Ref into a Typespace.
type AlgebraicType interface {
	Kind() Kind
	String() string

	algebraicType()
}

var (
	_ AlgebraicType = PrimitiveType(0)
	_ AlgebraicType = Ref(0)
	_ AlgebraicType = ProductType{}
	_ AlgebraicType = SumType{}
	_ AlgebraicType = ArrayType{}
	_ AlgebraicType = MapType{}
)

// PrimitiveType is a leaf type. Its value is the Kind it denotes.
type PrimitiveType Kind

// Primitive types.
const (
	BoolType   = PrimitiveType(KindBool)
	I8Type     = PrimitiveType(KindI8)
	U8Type     = PrimitiveType(KindU8)
	I16Type    = PrimitiveType(KindI16)
	U16Type    = PrimitiveType(KindU16)
	I32Type    = PrimitiveType(KindI32)
	U32Type    = PrimitiveType(KindU32)
	I64Type    = PrimitiveType(KindI64)
	U64Type    = PrimitiveType(KindU64)
	I128Type   = PrimitiveType(KindI128)
	U128Type   = PrimitiveType(KindU128)
	I256Type   = PrimitiveType(KindI256)
	U256Type   = PrimitiveType(KindU256)
	F32Type    = PrimitiveType(KindF32)
	F64Type    = PrimitiveType(KindF64)
	StringType = PrimitiveType(KindString)
	BytesType  = PrimitiveType(KindBytes)
)

func (p PrimitiveType) Kind() Kind     { return Kind(p) }
func (p PrimitiveType) String() string { return Kind(p).String() }
func (PrimitiveType) algebraicType()   {}

// Ref points to a slot of a Typespace.
type Ref uint32

func (r Ref) Kind() Kind { return KindRef }

func (r Ref) String() string {
	return "&" + strconv.FormatUint(uint64(r), 10)
}

func (Ref) algebraicType() {}

// ProductTypeElement is a field of a product type.
// An empty name denotes a positional field.
type ProductTypeElement struct {
	Name string
	Type AlgebraicType
}

// Field returns a named product type element.
func Field(name string, t AlgebraicType) ProductTypeElement {
	return ProductTypeElement{Name: name, Type: t}
}

// ProductType is an ordered sequence of fields.
type ProductType struct {
	Elements []ProductTypeElement
}

// NewProductType returns a product type made of the given elements.
// It returns a SchemaError if two elements share a name or if an element has no type.
func NewProductType(elems ...ProductTypeElement) (ProductType, error) {
	seen := make(map[string]struct{}, len(elems))
	for i, e := range elems {
		if err := checkMemberType(e.Type); err != nil {
			return ProductType{}, errors.NewSchemaError("product field %d (%q): %s", i, e.Name, err)
		}

		if e.Name == "" {
			continue
		}
		if _, ok := seen[e.Name]; ok {
			return ProductType{}, errors.NewSchemaError("duplicate field name %q", e.Name)
		}
		seen[e.Name] = struct{}{}
	}

	// unnamed fields are keyed by their position in JSON objects
	for i, e := range elems {
		if e.Name != "" {
			continue
		}
		if _, ok := seen[strconv.Itoa(i)]; ok {
			return ProductType{}, errors.NewSchemaError("field name %q collides with the position of unnamed field %d", strconv.Itoa(i), i)
		}
	}

	return ProductType{Elements: elems}, nil
}

// Product is like NewProductType but panics on error.
// It is meant for types written by hand, where an error is a programming defect.
func Product(elems ...ProductTypeElement) ProductType {
	p, err := NewProductType(elems...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p ProductType) Kind() Kind { return KindProduct }

func (p ProductType) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, e := range p.Elements {
		if i > 0 {
			sb.WriteString(", ")
		}
		if e.Name != "" {
			sb.WriteString(e.Name)
			sb.WriteString(": ")
		}
		sb.WriteString(typeString(e.Type))
	}
	sb.WriteByte(')')
	return sb.String()
}

func (ProductType) algebraicType() {}

// IndexOf returns the position of the field with the given name, or -1.
func (p ProductType) IndexOf(name string) int {
	for i, e := range p.Elements {
		if e.Name == name {
			return i
		}
	}

	return -1
}

// IsUnit returns true for the empty product.
func (p ProductType) IsUnit() bool {
	return len(p.Elements) == 0
}

// SumTypeVariant is a variant of a sum type.
// An empty name denotes a variant addressed by its position.
type SumTypeVariant struct {
	Name string
	Type AlgebraicType
}

// Variant returns a named sum type variant.
func Variant(name string, t AlgebraicType) SumTypeVariant {
	return SumTypeVariant{Name: name, Type: t}
}

// SumType is a tagged union: a value of a sum type is exactly one of its variants.
type SumType struct {
	Variants []SumTypeVariant
}

// NewSumType returns a sum type made of the given variants.
// It returns a SchemaError if two variants share a name or if a variant has no type.
func NewSumType(variants ...SumTypeVariant) (SumType, error) {
	seen := make(map[string]struct{}, len(variants))
	for i, v := range variants {
		if err := checkMemberType(v.Type); err != nil {
			return SumType{}, errors.NewSchemaError("sum variant %d (%q): %s", i, v.Name, err)
		}

		if v.Name == "" {
			continue
		}
		if _, ok := seen[v.Name]; ok {
			return SumType{}, errors.NewSchemaError("duplicate variant name %q", v.Name)
		}
		seen[v.Name] = struct{}{}
	}

	return SumType{Variants: variants}, nil
}

// Sum is like NewSumType but panics on error.
func Sum(variants ...SumTypeVariant) SumType {
	s, err := NewSumType(variants...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s SumType) Kind() Kind { return KindSum }

func (s SumType) String() string {
	if len(s.Variants) == 0 {
		return "(|)"
	}

	var sb strings.Builder
	sb.WriteByte('(')
	for i, v := range s.Variants {
		if i > 0 {
			sb.WriteString(" | ")
		}
		if v.Name != "" {
			sb.WriteString(v.Name)
			sb.WriteString(": ")
		}
		sb.WriteString(typeString(v.Type))
	}
	sb.WriteByte(')')
	return sb.String()
}

func (SumType) algebraicType() {}

// IndexOf returns the tag of the variant with the given name, or -1.
func (s SumType) IndexOf(name string) int {
	for i, v := range s.Variants {
		if v.Name == name {
			return i
		}
	}

	return -1
}

// VariantName returns the name of the variant at tag, or its position
// if the variant is unnamed.
func (s SumType) VariantName(tag int) string {
	if n := s.Variants[tag].Name; n != "" {
		return n
	}
	return strconv.Itoa(tag)
}

// ArrayType is a homogeneous sequence.
type ArrayType struct {
	Elem AlgebraicType
}

// Array returns the type of arrays of elem.
func Array(elem AlgebraicType) ArrayType {
	return ArrayType{Elem: elem}
}

func (a ArrayType) Kind() Kind { return KindArray }

func (a ArrayType) String() string {
	return "Array<" + typeString(a.Elem) + ">"
}

func (ArrayType) algebraicType() {}

// MapType is an unordered collection of unique keys associated to values.
type MapType struct {
	Key   AlgebraicType
	Value AlgebraicType
}

// Map returns the type of maps from key to value.
func Map(key, value AlgebraicType) MapType {
	return MapType{Key: key, Value: value}
}

func (m MapType) Kind() Kind { return KindMap }

func (m MapType) String() string {
	return "Map<" + typeString(m.Key) + ", " + typeString(m.Value) + ">"
}

func (MapType) algebraicType() {}

func typeString(t AlgebraicType) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

func checkMemberType(t AlgebraicType) error {
	if t == nil {
		return errors.NewSchemaError("missing type")
	}

	if p, ok := t.(PrimitiveType); ok && !Kind(p).IsPrimitive() {
		return errors.NewSchemaError("%s is not a primitive kind", Kind(p))
	}

	return nil
}

// ElementName returns the name of the field at index i, or its position
// if the field is unnamed.
func (p ProductType) ElementName(i int) string {
	if n := p.Elements[i].Name; n != "" {
		return n
	}
	return strconv.Itoa(i)
}

// TypesEqual reports whether a and b are structurally identical.
// Refs are compared by index, without resolving them.
func TypesEqual(a, b AlgebraicType) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case Ref:
		y, ok := b.(Ref)
		return ok && x == y
	case PrimitiveType:
		y, ok := b.(PrimitiveType)
		return ok && x == y
	case ProductType:
		y, ok := b.(ProductType)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if x.Elements[i].Name != y.Elements[i].Name || !TypesEqual(x.Elements[i].Type, y.Elements[i].Type) {
				return false
			}
		}
		return true
	case SumType:
		y, ok := b.(SumType)
		if !ok || len(x.Variants) != len(y.Variants) {
			return false
		}
		for i := range x.Variants {
			if x.Variants[i].Name != y.Variants[i].Name || !TypesEqual(x.Variants[i].Type, y.Variants[i].Type) {
				return false
			}
		}
		return true
	case ArrayType:
		y, ok := b.(ArrayType)
		return ok && TypesEqual(x.Elem, y.Elem)
	case MapType:
		y, ok := b.(MapType)
		return ok && TypesEqual(x.Key, y.Key) && TypesEqual(x.Value, y.Value)
	}

	return false
}
