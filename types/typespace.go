package types

import (
	"github.com/chaisql/sats/errors"
)

// A Typespace is an ordered table of type definitions. Ref(i) denotes slot i.
// Types refer to each other, and to themselves, only through refs, so a typespace
// can describe recursive and mutually recursive types without cyclic Go values.
//
// A typespace is append-only while it is being built and must not be modified once it
// is shared: concurrent reads are safe, concurrent writes are not.
type Typespace struct {
	// nil slots are reserved but not yet defined.
	types []AlgebraicType
}

// NewTypespace returns a typespace whose slots are the given types.
func NewTypespace(types ...AlgebraicType) *Typespace {
	ts := Typespace{types: make([]AlgebraicType, len(types))}
	copy(ts.types, types)
	return &ts
}

// Add appends t to the typespace and returns a ref to it.
func (ts *Typespace) Add(t AlgebraicType) Ref {
	ts.types = append(ts.types, t)
	return Ref(len(ts.types) - 1)
}

// Reserve appends an empty slot and returns a ref to it. The slot must be filled
// with Define before the typespace is used: this allows a type to refer to itself
// while it is being built.
func (ts *Typespace) Reserve() Ref {
	return ts.Add(nil)
}

// Define fills a slot previously returned by Reserve.
func (ts *Typespace) Define(r Ref, t AlgebraicType) error {
	if int(r) >= ts.Len() {
		return errors.NewUnresolvedRefError(uint32(r), ts.Len())
	}
	if t == nil {
		return errors.NewSchemaError("cannot define %s with a nil type", r)
	}
	if ts.types[r] != nil {
		return errors.NewSchemaError("%s is already defined", r)
	}

	ts.types[r] = t
	return nil
}

// Len returns the number of slots.
func (ts *Typespace) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.types)
}

// Types returns a copy of the slots.
func (ts *Typespace) Types() []AlgebraicType {
	if ts == nil {
		return nil
	}
	cp := make([]AlgebraicType, len(ts.types))
	copy(cp, ts.types)
	return cp
}

// Clone returns a copy of ts that can be extended independently.
func (ts *Typespace) Clone() *Typespace {
	return NewTypespace(ts.Types()...)
}

// Get returns the definition stored in slot r, which may itself be a Ref.
func (ts *Typespace) Get(r Ref) (AlgebraicType, error) {
	if int(r) >= ts.Len() {
		return nil, errors.NewUnresolvedRefError(uint32(r), ts.Len())
	}

	t := ts.types[r]
	if t == nil {
		return nil, errors.NewSchemaError("%s is reserved but not defined", r)
	}
	return t, nil
}

// Resolve returns t if it is not a Ref, otherwise it follows the chain of refs
// until it reaches a definition that is not a ref.
// A chain that loops without reaching a definition is a SchemaError.
func (ts *Typespace) Resolve(t AlgebraicType) (AlgebraicType, error) {
	t, _, err := ts.resolve(t)
	return t, err
}

// resolve is like Resolve but also returns the last ref followed, or -1.
func (ts *Typespace) resolve(t AlgebraicType) (AlgebraicType, int, error) {
	slot := -1
	for steps := 0; ; steps++ {
		r, ok := t.(Ref)
		if !ok {
			if err := checkMemberType(t); err != nil {
				return nil, slot, err
			}
			return t, slot, nil
		}

		if steps > ts.Len() {
			return nil, slot, errors.NewSchemaError("ref cycle through %s never reaches a definition", r)
		}

		def, err := ts.Get(r)
		if err != nil {
			return nil, slot, err
		}
		slot = int(r)
		t = def
	}
}

// Validate checks that every slot is defined, every ref points to an existing slot,
// product and sum member names are unique, and that no ref chain loops on itself.
func (ts *Typespace) Validate() error {
	if ts == nil {
		return nil
	}

	for i, t := range ts.types {
		if t == nil {
			return errors.NewSchemaError("%s is reserved but not defined", Ref(i))
		}

		if err := ts.validateType(t); err != nil {
			return err
		}
	}

	for i, t := range ts.types {
		if _, ok := t.(Ref); !ok {
			continue
		}
		if _, err := ts.Resolve(Ref(i)); err != nil {
			return err
		}
	}

	return nil
}

// ValidateType checks t against ts, see Validate.
func (ts *Typespace) ValidateType(t AlgebraicType) error {
	if t == nil {
		return errors.NewSchemaError("missing type")
	}
	return ts.validateType(t)
}

func (ts *Typespace) validateType(t AlgebraicType) error {
	stack := []AlgebraicType{t}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch x := t.(type) {
		case nil:
			return errors.NewSchemaError("missing type")
		case Ref:
			if int(x) >= ts.Len() {
				return errors.NewUnresolvedRefError(uint32(x), ts.Len())
			}
		case PrimitiveType:
			if err := checkMemberType(x); err != nil {
				return err
			}
		case ProductType:
			if _, err := NewProductType(x.Elements...); err != nil {
				return err
			}
			for _, e := range x.Elements {
				stack = append(stack, e.Type)
			}
		case SumType:
			if _, err := NewSumType(x.Variants...); err != nil {
				return err
			}
			for _, v := range x.Variants {
				stack = append(stack, v.Type)
			}
		case ArrayType:
			stack = append(stack, x.Elem)
		case MapType:
			stack = append(stack, x.Key, x.Value)
		}
	}

	return nil
}

// Equal reports whether both typespaces have structurally equal slots.
func (ts *Typespace) Equal(other *Typespace) bool {
	if ts.Len() != other.Len() {
		return false
	}

	for i := 0; i < ts.Len(); i++ {
		if !TypesEqual(ts.types[i], other.types[i]) {
			return false
		}
	}
	return true
}
