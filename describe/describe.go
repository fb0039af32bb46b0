// Package describe derives algebraic types from Go types and converts Go values
// to and from algebraic values.
//
// By default, each exported struct field is mapped to a product field whose name is the
// lowercased Go field name. The name can be customized with the "sats" key of the struct
// field's tag, and a field tagged with "-" is ignored.
//
// Struct types are stored in the typespace of the Builder and referred to by a Ref,
// which is what allows a struct to refer to itself, directly or through other structs.
package describe

import (
	"reflect"
	"strings"
	"time"

	"github.com/chaisql/sats/types"
	"github.com/cockroachdb/errors"
)

// A Describer describes its own algebraic type. It is used for types whose
// shape cannot be inferred by reflection, such as hand-written sums.
type Describer interface {
	AlgebraicType(b *Builder) (types.AlgebraicType, error)
}

// A Valuer converts itself to an algebraic value.
type Valuer interface {
	SATSValue() (types.Value, error)
}

// A ValueAssigner sets itself from an algebraic value.
type ValueAssigner interface {
	AssignSATSValue(v types.Value) error
}

var (
	describerType     = reflect.TypeOf((*Describer)(nil)).Elem()
	valuerType        = reflect.TypeOf((*Valuer)(nil)).Elem()
	valueAssignerType = reflect.TypeOf((*ValueAssigner)(nil)).Elem()

	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	i128Type     = reflect.TypeOf(types.I128{})
	u128Type     = reflect.TypeOf(types.U128{})
	i256Type     = reflect.TypeOf(types.I256{})
	u256Type     = reflect.TypeOf(types.U256{})
)

// A Builder accumulates the types derived from Go types in a typespace.
// It is not safe for concurrent use.
type Builder struct {
	ts   *types.Typespace
	refs map[reflect.Type]types.Ref
}

// NewBuilder returns a Builder with an empty typespace.
func NewBuilder() *Builder {
	return &Builder{
		ts:   new(types.Typespace),
		refs: make(map[reflect.Type]types.Ref),
	}
}

// Typespace returns the typespace holding the types built so far.
func (b *Builder) Typespace() *types.Typespace {
	return b.ts
}

// Describe returns the algebraic type of the Go type of x.
func (b *Builder) Describe(x any) (types.AlgebraicType, error) {
	return b.TypeOf(reflect.TypeOf(x))
}

// TypeOf returns the algebraic type of t. Structs and Describers are added to the
// typespace once and returned as a Ref.
func (b *Builder) TypeOf(t reflect.Type) (types.AlgebraicType, error) {
	if t == nil {
		return nil, errors.New("cannot describe nil type")
	}

	if r, ok := b.refs[t]; ok {
		return r, nil
	}

	if t.Implements(describerType) || reflect.PointerTo(t).Implements(describerType) {
		return b.define(t, func() (types.AlgebraicType, error) {
			return reflect.New(t).Interface().(Describer).AlgebraicType(b)
		})
	}

	switch t {
	case timeType:
		return types.TimestampType(), nil
	case durationType:
		return types.TimeDurationType(), nil
	case i128Type:
		return types.I128Type, nil
	case u128Type:
		return types.U128Type, nil
	case i256Type:
		return types.I256Type, nil
	case u256Type:
		return types.U256Type, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return types.BoolType, nil
	case reflect.Int8:
		return types.I8Type, nil
	case reflect.Int16:
		return types.I16Type, nil
	case reflect.Int32:
		return types.I32Type, nil
	case reflect.Int, reflect.Int64:
		return types.I64Type, nil
	case reflect.Uint8:
		return types.U8Type, nil
	case reflect.Uint16:
		return types.U16Type, nil
	case reflect.Uint32:
		return types.U32Type, nil
	case reflect.Uint, reflect.Uint64:
		return types.U64Type, nil
	case reflect.Float32:
		return types.F32Type, nil
	case reflect.Float64:
		return types.F64Type, nil
	case reflect.String:
		return types.StringType, nil
	case reflect.Pointer:
		elem, err := b.TypeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return types.OptionType(elem), nil
	case reflect.Slice, reflect.Array:
		if isBytes(t) {
			return types.BytesType, nil
		}
		elem, err := b.TypeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return types.Array(elem), nil
	case reflect.Map:
		key, err := b.TypeOf(t.Key())
		if err != nil {
			return nil, err
		}
		value, err := b.TypeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return types.Map(key, value), nil
	case reflect.Struct:
		return b.define(t, func() (types.AlgebraicType, error) {
			return b.structType(t)
		})
	}

	return nil, errors.Errorf("cannot describe Go type %s", t)
}

// define reserves a slot for t before building its type, so that
// the type can refer to itself.
func (b *Builder) define(t reflect.Type, build func() (types.AlgebraicType, error)) (types.AlgebraicType, error) {
	r := b.ts.Reserve()
	b.refs[t] = r

	at, err := build()
	if err != nil {
		delete(b.refs, t)
		return nil, err
	}

	if err := b.ts.Define(r, at); err != nil {
		return nil, err
	}
	return r, nil
}

func (b *Builder) structType(t reflect.Type) (types.AlgebraicType, error) {
	fields := structFields(t)
	elems := make([]types.ProductTypeElement, 0, len(fields))
	for _, f := range fields {
		ft, err := b.TypeOf(t.FieldByIndex(f.index).Type)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s.%s", t.Name(), t.FieldByIndex(f.index).Name)
		}
		elems = append(elems, types.Field(f.name, ft))
	}

	return types.NewProductType(elems...)
}

type field struct {
	name  string
	index []int
}

// structFields returns the fields of t that are mapped to product fields, in declaration order.
func structFields(t reflect.Type) []field {
	var fields []field

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		name := strings.ToLower(sf.Name)
		if tag, ok := sf.Tag.Lookup("sats"); ok {
			if tag == "-" {
				continue
			}
			name = tag
		}

		fields = append(fields, field{name: name, index: sf.Index})
	}

	return fields
}

func isBytes(t reflect.Type) bool {
	return t.Elem().Kind() == reflect.Uint8 &&
		!t.Elem().Implements(describerType) &&
		!reflect.PointerTo(t.Elem()).Implements(describerType)
}

// TypeOf returns the algebraic type of the Go type of x, along with
// the typespace it must be interpreted against.
func TypeOf(x any) (*types.Typespace, types.AlgebraicType, error) {
	b := NewBuilder()
	t, err := b.Describe(x)
	if err != nil {
		return nil, nil, err
	}
	return b.Typespace(), t, nil
}
