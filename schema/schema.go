// Package schema defines the unit of schema exchange: a typespace along with
// the named roots designating table row types and reducer argument types.
//
// A schema is serialized with the binary or the JSON codec, as a value of the meta-type.
// This is what clients fetch to generate bindings, and what the registry stores.
package schema

import (
	"crypto/sha256"
	"strconv"

	"github.com/chaisql/sats/encoding/bsatn"
	"github.com/chaisql/sats/encoding/jsoncodec"
	"github.com/chaisql/sats/errors"
	"github.com/chaisql/sats/types"
	cerrors "github.com/cockroachdb/errors"
)

// ErrRootNotFound is returned when a schema has no root with a given name.
var ErrRootNotFound = cerrors.New("root not found")

// RootKind designates what a root describes.
type RootKind uint8

const (
	// Table roots are the row type of a table.
	Table RootKind = iota
	// Reducer roots are the product of the arguments of a reducer.
	Reducer
)

func (k RootKind) String() string {
	switch k {
	case Table:
		return "table"
	case Reducer:
		return "reducer"
	}
	return "RootKind(" + strconv.Itoa(int(k)) + ")"
}

// Root is a named entry point in the typespace of a schema.
type Root struct {
	Name string
	Kind RootKind
	Ref  types.Ref
}

// Schema is a validated typespace and its roots.
// It is immutable once created and safe for concurrent reads.
type Schema struct {
	Typespace *types.Typespace
	Roots     []Root
}

// New validates ts and the roots and returns a schema.
// Every root must have a unique name and refer to a product type.
func New(ts *types.Typespace, roots ...Root) (*Schema, error) {
	if err := ts.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(roots))
	for _, r := range roots {
		if r.Name == "" {
			return nil, errors.NewSchemaError("root with empty name")
		}
		if _, ok := seen[r.Name]; ok {
			return nil, errors.NewSchemaError("duplicate root %q", r.Name)
		}
		seen[r.Name] = struct{}{}

		if r.Kind > Reducer {
			return nil, errors.NewSchemaError("root %q has invalid kind %d", r.Name, r.Kind)
		}

		t, err := ts.Resolve(r.Ref)
		if err != nil {
			return nil, cerrors.Wrapf(err, "root %q", r.Name)
		}
		if _, ok := t.(types.ProductType); !ok {
			return nil, errors.NewSchemaError("%s root %q must be a product type, got %s", r.Kind, r.Name, t)
		}
	}

	return &Schema{
		Typespace: ts,
		Roots:     append([]Root(nil), roots...),
	}, nil
}

// Lookup returns the root with the given name.
func (s *Schema) Lookup(name string) (Root, bool) {
	for _, r := range s.Roots {
		if r.Name == name {
			return r, true
		}
	}

	return Root{}, false
}

// Type returns the type of the root with the given name,
// to be interpreted against the typespace of the schema.
func (s *Schema) Type(name string) (types.AlgebraicType, error) {
	r, ok := s.Lookup(name)
	if !ok {
		return nil, cerrors.Wrapf(ErrRootNotFound, "%q", name)
	}

	return r.Ref, nil
}

// MarshalBinary returns the binary encoding of the schema.
func (s *Schema) MarshalBinary() ([]byte, error) {
	v, err := s.toValue()
	if err != nil {
		return nil, err
	}
	return bsatn.Encode(meta, metaSchema, v)
}

// UnmarshalBinary decodes and validates a schema encoded with MarshalBinary.
func (s *Schema) UnmarshalBinary(b []byte) error {
	v, err := bsatn.Decode(meta, metaSchema, b)
	if err != nil {
		return err
	}
	return s.fromValue(v)
}

// MarshalJSON returns the JSON representation of the schema.
func (s *Schema) MarshalJSON() ([]byte, error) {
	v, err := s.toValue()
	if err != nil {
		return nil, err
	}
	return jsoncodec.Marshal(meta, metaSchema, v)
}

// UnmarshalJSON decodes and validates a schema encoded with MarshalJSON.
func (s *Schema) UnmarshalJSON(b []byte) error {
	v, err := jsoncodec.Unmarshal(meta, metaSchema, b)
	if err != nil {
		return err
	}
	return s.fromValue(v)
}

// Hash returns the SHA-256 digest of the binary encoding of the schema.
// Two schemas with the same typespace and roots, in the same order, have the same hash.
func (s *Schema) Hash() ([32]byte, error) {
	b, err := s.MarshalBinary()
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(b), nil
}

// Compatible checks that every root of client exists in server, with the same kind
// and a compatible type graph. Server roots unknown to the client are ignored.
func Compatible(client, server *Schema) error {
	for _, cr := range client.Roots {
		sr, ok := server.Lookup(cr.Name)
		if !ok {
			return cerrors.Wrapf(types.ErrIncompatible, "root %q missing from server schema", cr.Name)
		}
		if sr.Kind != cr.Kind {
			return cerrors.Wrapf(types.ErrIncompatible, "root %q is a %s on the client and a %s on the server", cr.Name, cr.Kind, sr.Kind)
		}

		if err := types.Compatible(client.Typespace, cr.Ref, server.Typespace, sr.Ref); err != nil {
			return cerrors.Wrapf(err, "root %q", cr.Name)
		}
	}

	return nil
}
