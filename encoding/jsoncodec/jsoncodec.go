// Package jsoncodec implements the JSON representation of algebraic values.
//
// Like the binary encoding, the representation is driven by the type:
//
//   - products are objects keyed by field name, in declaration order; unnamed fields
//     are keyed by their position. Products can also be decoded from arrays.
//   - sums are objects with a single key, the name of the variant. Variants whose payload
//     is the unit type are encoded as a bare string; both forms are accepted when decoding.
//   - arrays are JSON arrays; maps with string keys are objects, other maps are arrays of
//     [key, value] pairs. Keys are written in canonical order.
//   - integers wider than 53 bits are written as decimal strings; decoding accepts
//     a number or a string for every integer width.
//   - NaN and infinities are written as the strings "NaN", "Infinity" and "-Infinity".
//   - byte strings are written as lowercase hex.
package jsoncodec

import (
	"github.com/chaisql/sats/types"
)

// Options control decoding.
type Options struct {
	// MaxDepth is the maximum nesting of the decoded value.
	MaxDepth int
}

// DefaultOptions are used by Unmarshal.
var DefaultOptions = Options{
	MaxDepth: 1024,
}

// Marshal returns the JSON representation of v, which must conform to t.
func Marshal(ts *types.Typespace, t types.AlgebraicType, v types.Value) ([]byte, error) {
	if err := types.Check(ts, t, v); err != nil {
		return nil, err
	}

	e := encoder{ts: ts}
	return e.encode(nil, t, v)
}

// Unmarshal parses the JSON representation of a value of type t.
func Unmarshal(ts *types.Typespace, t types.AlgebraicType, data []byte) (types.Value, error) {
	return DefaultOptions.Unmarshal(ts, t, data)
}

// Unmarshal is like the package level Unmarshal, with the limits of o.
func (o Options) Unmarshal(ts *types.Typespace, t types.AlgebraicType, data []byte) (types.Value, error) {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultOptions.MaxDepth
	}

	d := decoder{ts: ts, opts: o}
	return d.unmarshal(t, data)
}
