package types

import (
	"strconv"

	"github.com/cockroachdb/errors"
)

// ErrIncompatible is returned, wrapped with the location of the first difference,
// when two type graphs are not compatible.
var ErrIncompatible = errors.New("incompatible types")

// position identifies a node of a type graph: the slot it was reached through
// (-1 for the root) and the structural path inside that slot's definition.
// The set of positions of a typespace is finite, so the set of position pairs is too.
type position struct {
	slot int
	path string
}

type compatItem struct {
	a, b       AlgebraicType
	posA, posB position
	// location reported to the caller
	at string
}

// Compatible reports whether type ta interpreted in typespace a has the same shape as
// tb interpreted in b: same kinds, same member names in the same order, and compatible
// member types. Refs are followed on both sides, so two typespaces laid out differently
// can still be compatible.
//
// The comparison walks both graphs with an explicit stack and records visited position
// pairs, so it runs in bounded stack space and terminates on recursive types.
// It returns nil if the types are compatible, an error wrapping ErrIncompatible if they
// are not, or the resolution error if a ref cannot be followed.
func Compatible(a *Typespace, ta AlgebraicType, b *Typespace, tb AlgebraicType) error {
	type visitKey struct{ a, b position }
	visited := make(map[visitKey]struct{})

	stack := []compatItem{{a: ta, b: tb, posA: position{slot: -1}, posB: position{slot: -1}}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		k := visitKey{it.posA, it.posB}
		if _, ok := visited[k]; ok {
			continue
		}
		visited[k] = struct{}{}

		var err error
		if r, ok := it.a.(Ref); ok {
			if it.a, err = a.Get(r); err != nil {
				return err
			}
			it.posA = position{slot: int(r)}
			stack = append(stack, it)
			continue
		}
		if r, ok := it.b.(Ref); ok {
			if it.b, err = b.Get(r); err != nil {
				return err
			}
			it.posB = position{slot: int(r)}
			stack = append(stack, it)
			continue
		}

		if err := checkMemberType(it.a); err != nil {
			return errors.Wrapf(ErrIncompatible, "at %s: %v", loc(it.at), err)
		}
		if err := checkMemberType(it.b); err != nil {
			return errors.Wrapf(ErrIncompatible, "at %s: %v", loc(it.at), err)
		}
		if it.a.Kind() != it.b.Kind() {
			return errors.Wrapf(ErrIncompatible, "at %s: %s vs %s", loc(it.at), it.a.Kind(), it.b.Kind())
		}

		switch x := it.a.(type) {
		case ProductType:
			y := it.b.(ProductType)
			if len(x.Elements) != len(y.Elements) {
				return errors.Wrapf(ErrIncompatible, "at %s: %d fields vs %d", loc(it.at), len(x.Elements), len(y.Elements))
			}
			for i := range x.Elements {
				if x.Elements[i].Name != y.Elements[i].Name {
					return errors.Wrapf(ErrIncompatible, "at %s: field %d is named %q vs %q", loc(it.at), i, x.Elements[i].Name, y.Elements[i].Name)
				}
				stack = append(stack, it.child(x.Elements[i].Type, y.Elements[i].Type, i, "."+x.ElementName(i)))
			}
		case SumType:
			y := it.b.(SumType)
			if len(x.Variants) != len(y.Variants) {
				return errors.Wrapf(ErrIncompatible, "at %s: %d variants vs %d", loc(it.at), len(x.Variants), len(y.Variants))
			}
			for i := range x.Variants {
				if x.Variants[i].Name != y.Variants[i].Name {
					return errors.Wrapf(ErrIncompatible, "at %s: variant %d is named %q vs %q", loc(it.at), i, x.Variants[i].Name, y.Variants[i].Name)
				}
				stack = append(stack, it.child(x.Variants[i].Type, y.Variants[i].Type, i, "."+x.VariantName(i)))
			}
		case ArrayType:
			stack = append(stack, it.child(x.Elem, it.b.(ArrayType).Elem, 0, "[]"))
		case MapType:
			y := it.b.(MapType)
			stack = append(stack,
				it.child(x.Value, y.Value, 1, "{value}"),
				it.child(x.Key, y.Key, 0, "{key}"),
			)
		}
	}

	return nil
}

func (it compatItem) child(a, b AlgebraicType, i int, at string) compatItem {
	step := "/" + strconv.Itoa(i)
	return compatItem{
		a:    a,
		b:    b,
		posA: position{slot: it.posA.slot, path: it.posA.path + step},
		posB: position{slot: it.posB.slot, path: it.posB.path + step},
		at:   it.at + at,
	}
}

func loc(at string) string {
	if at == "" {
		return "<root>"
	}
	return at
}
