// Package bsatn implements the compact binary encoding of algebraic values.
//
// The encoding is not self-describing: a buffer can only be decoded with the type
// it was encoded with. The layout is:
//
//	Bool            1 byte, 0 or 1
//	I8 ... U256     fixed width, little-endian, two's complement for signed integers
//	F32, F64        IEEE-754 bits, little-endian, NaNs written as the canonical quiet NaN
//	String, Bytes   u32 little-endian length in bytes, followed by the bytes
//	Array           u32 little-endian element count, followed by the elements
//	Map             u32 little-endian entry count, followed by key/value pairs in canonical key order
//	Sum             tag (1 byte up to 256 variants, 2 bytes up to 65536, 4 bytes otherwise),
//	                followed by the payload of the variant
//	Product         the fields, in order, without any header
//
// Because maps are written in canonical order and floats are canonicalized, two equal values
// always have the same encoding.
package bsatn

import (
	"github.com/chaisql/sats/types"
)

// Options bound the resources used when decoding untrusted input.
type Options struct {
	// MaxDepth is the maximum nesting of products, sums, arrays and maps.
	MaxDepth int
	// MaxCollectionLen is the maximum total number of elements, over a whole value, of the
	// arrays and maps whose elements may encode to zero bytes. Other collections are
	// bounded by the size of the buffer.
	MaxCollectionLen int
}

// DefaultOptions are used by the package level functions.
var DefaultOptions = Options{
	MaxDepth:         1024,
	MaxCollectionLen: 1 << 20,
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultOptions.MaxDepth
	}
	if o.MaxCollectionLen <= 0 {
		o.MaxCollectionLen = DefaultOptions.MaxCollectionLen
	}
	return o
}

// Encode returns the encoding of v, which must conform to t.
// v is type-checked first: a TypeMismatchError is returned before anything is encoded.
func Encode(ts *types.Typespace, t types.AlgebraicType, v types.Value) ([]byte, error) {
	return Append(nil, ts, t, v)
}

// Append is like Encode but appends the encoding to dst.
// On error dst is returned unmodified.
func Append(dst []byte, ts *types.Typespace, t types.AlgebraicType, v types.Value) ([]byte, error) {
	if err := types.Check(ts, t, v); err != nil {
		return dst, err
	}

	e := encoder{ts: ts}
	out, err := e.encode(dst, t, v)
	if err != nil {
		return dst, err
	}
	return out, nil
}

// Decode decodes a value of type t. The whole buffer must be consumed.
func Decode(ts *types.Typespace, t types.AlgebraicType, b []byte) (types.Value, error) {
	return DefaultOptions.Decode(ts, t, b)
}

// DecodePrefix decodes a value of type t from the beginning of b and returns
// the number of bytes read.
func DecodePrefix(ts *types.Typespace, t types.AlgebraicType, b []byte) (types.Value, int, error) {
	return DefaultOptions.DecodePrefix(ts, t, b)
}

// Decode is like the package level Decode, with the limits of o.
func (o Options) Decode(ts *types.Typespace, t types.AlgebraicType, b []byte) (types.Value, error) {
	v, n, err := o.DecodePrefix(ts, t, b)
	if err != nil {
		return nil, err
	}
	if n != len(b) {
		return nil, decodeError(n, "%d trailing bytes", len(b)-n)
	}
	return v, nil
}

// DecodePrefix is like the package level DecodePrefix, with the limits of o.
func (o Options) DecodePrefix(ts *types.Typespace, t types.AlgebraicType, b []byte) (types.Value, int, error) {
	d := decoder{
		ts:    ts,
		buf:   b,
		opts:  o.withDefaults(),
		sizes: make(map[types.Ref]int),
	}

	v, err := d.decode(t)
	if err != nil {
		return nil, 0, err
	}
	return v, d.off, nil
}
