package types

import (
	"strings"

	"github.com/chaisql/sats/errors"
)

// Slots of the meta-typespace.
const (
	MetaAlgebraicType Ref = iota
	MetaSumType
	MetaProductType
	MetaMapType
	MetaSumTypeVariant
	MetaProductTypeElement
	MetaArrayType
	MetaTypespace
)

// NewMetaTypespace returns a new typespace describing the type system itself:
// values of MetaAlgebraicType are algebraic types, values of MetaTypespace are typespaces.
// The variant index of each kind in MetaAlgebraicType is its Kind value.
//
// The returned typespace can be extended by the caller.
func NewMetaTypespace() *Typespace {
	variants := make([]SumTypeVariant, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		var payload AlgebraicType
		switch k {
		case KindRef:
			payload = U32Type
		case KindSum:
			payload = MetaSumType
		case KindProduct:
			payload = MetaProductType
		case KindArray:
			payload = MetaArrayType
		case KindMap:
			payload = MetaMapType
		default:
			payload = UnitType()
		}
		variants[k] = Variant(strings.ToLower(k.String()), payload)
	}

	member := Product(
		Field("name", OptionType(StringType)),
		Field("algebraic_type", MetaAlgebraicType),
	)

	return NewTypespace([]AlgebraicType{
		MetaAlgebraicType:      Sum(variants...),
		MetaSumType:            Product(Field("variants", Array(MetaSumTypeVariant))),
		MetaProductType:        Product(Field("elements", Array(MetaProductTypeElement))),
		MetaMapType:            Product(Field("key_ty", MetaAlgebraicType), Field("ty", MetaAlgebraicType)),
		MetaSumTypeVariant:     member,
		MetaProductTypeElement: member,
		MetaArrayType:          Product(Field("elem_ty", MetaAlgebraicType)),
		MetaTypespace:          Product(Field("types", Array(MetaAlgebraicType))),
	}...)
}

// TypeToValue returns t as a value of MetaAlgebraicType.
func TypeToValue(t AlgebraicType) (Value, error) {
	if t == nil {
		return nil, errors.NewSchemaError("missing type")
	}

	var payload Value
	switch x := t.(type) {
	case Ref:
		payload = U32Value(x)
	case PrimitiveType:
		if err := checkMemberType(x); err != nil {
			return nil, err
		}
		payload = UnitValue()
	case ProductType:
		elems := make(ArrayValue, len(x.Elements))
		for i, e := range x.Elements {
			m, err := memberToValue(e.Name, e.Type)
			if err != nil {
				return nil, err
			}
			elems[i] = m
		}
		payload = ProductValue{elems}
	case SumType:
		variants := make(ArrayValue, len(x.Variants))
		for i, v := range x.Variants {
			m, err := memberToValue(v.Name, v.Type)
			if err != nil {
				return nil, err
			}
			variants[i] = m
		}
		payload = ProductValue{variants}
	case ArrayType:
		elem, err := TypeToValue(x.Elem)
		if err != nil {
			return nil, err
		}
		payload = ProductValue{elem}
	case MapType:
		key, err := TypeToValue(x.Key)
		if err != nil {
			return nil, err
		}
		val, err := TypeToValue(x.Value)
		if err != nil {
			return nil, err
		}
		payload = ProductValue{key, val}
	}

	return SumValue{Tag: uint32(t.Kind()), Value: payload}, nil
}

func memberToValue(name string, t AlgebraicType) (Value, error) {
	tv, err := TypeToValue(t)
	if err != nil {
		return nil, err
	}

	n := Value(NoneValue())
	if name != "" {
		n = SomeValue(StringValue(name))
	}
	return ProductValue{n, tv}, nil
}

// TypeFromValue is the inverse of TypeToValue.
// It returns a SchemaError if v is not a well formed value of MetaAlgebraicType.
func TypeFromValue(v Value) (AlgebraicType, error) {
	sv, ok := v.(SumValue)
	if !ok {
		return nil, metaError("algebraic type", v)
	}

	k := Kind(sv.Tag)
	if sv.Tag >= uint32(kindCount) {
		return nil, errors.NewSchemaError("unknown type kind %d", sv.Tag)
	}

	switch k {
	case KindRef:
		r, ok := sv.Value.(U32Value)
		if !ok {
			return nil, metaError("ref", sv.Value)
		}
		return Ref(r), nil
	case KindProduct:
		members, err := membersFromValue(sv.Value)
		if err != nil {
			return nil, err
		}
		elems := make([]ProductTypeElement, len(members))
		for i, m := range members {
			elems[i] = ProductTypeElement(m)
		}
		return NewProductType(elems...)
	case KindSum:
		members, err := membersFromValue(sv.Value)
		if err != nil {
			return nil, err
		}
		variants := make([]SumTypeVariant, len(members))
		for i, m := range members {
			variants[i] = SumTypeVariant(m)
		}
		return NewSumType(variants...)
	case KindArray:
		p, ok := sv.Value.(ProductValue)
		if !ok || len(p) != 1 {
			return nil, metaError("array type", sv.Value)
		}
		elem, err := TypeFromValue(p[0])
		if err != nil {
			return nil, err
		}
		return ArrayType{Elem: elem}, nil
	case KindMap:
		p, ok := sv.Value.(ProductValue)
		if !ok || len(p) != 2 {
			return nil, metaError("map type", sv.Value)
		}
		key, err := TypeFromValue(p[0])
		if err != nil {
			return nil, err
		}
		val, err := TypeFromValue(p[1])
		if err != nil {
			return nil, err
		}
		return MapType{Key: key, Value: val}, nil
	}

	return PrimitiveType(k), nil
}

type member struct {
	Name string
	Type AlgebraicType
}

// membersFromValue decodes the payload of a product or sum type:
// a product holding an array of (name, type) members.
func membersFromValue(v Value) ([]member, error) {
	p, ok := v.(ProductValue)
	if !ok || len(p) != 1 {
		return nil, metaError("member list", v)
	}
	arr, ok := p[0].(ArrayValue)
	if !ok {
		return nil, metaError("member list", p[0])
	}

	members := make([]member, len(arr))
	for i, e := range arr {
		mp, ok := e.(ProductValue)
		if !ok || len(mp) != 2 {
			return nil, metaError("member", e)
		}

		opt, ok := mp[0].(SumValue)
		if !ok || opt.Tag > 1 {
			return nil, metaError("member name", mp[0])
		}
		if opt.Tag == 0 {
			s, ok := opt.Value.(StringValue)
			if !ok {
				return nil, metaError("member name", opt.Value)
			}
			if s == "" {
				return nil, errors.NewSchemaError("member %d has an empty name", i)
			}
			members[i].Name = string(s)
		}

		t, err := TypeFromValue(mp[1])
		if err != nil {
			return nil, err
		}
		members[i].Type = t
	}

	return members, nil
}

// TypespaceToValue returns ts as a value of MetaTypespace.
func TypespaceToValue(ts *Typespace) (Value, error) {
	types := make(ArrayValue, ts.Len())
	for i := range types {
		t, err := ts.Get(Ref(i))
		if err != nil {
			return nil, err
		}
		if types[i], err = TypeToValue(t); err != nil {
			return nil, err
		}
	}

	return ProductValue{types}, nil
}

// TypespaceFromValue is the inverse of TypespaceToValue. The returned typespace is not validated.
func TypespaceFromValue(v Value) (*Typespace, error) {
	p, ok := v.(ProductValue)
	if !ok || len(p) != 1 {
		return nil, metaError("typespace", v)
	}
	arr, ok := p[0].(ArrayValue)
	if !ok {
		return nil, metaError("typespace", p[0])
	}

	ts := &Typespace{types: make([]AlgebraicType, len(arr))}
	for i, e := range arr {
		t, err := TypeFromValue(e)
		if err != nil {
			return nil, err
		}
		ts.types[i] = t
	}

	return ts, nil
}

func metaError(what string, v Value) error {
	got := "<nil>"
	if v != nil {
		got = v.Kind().String()
	}
	return errors.NewSchemaError("malformed %s: unexpected %s value", what, got)
}
