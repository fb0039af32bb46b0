package bsatn

import (
	"math"
	"unicode/utf8"

	"github.com/chaisql/sats/errors"
	"github.com/chaisql/sats/types"
)

type decoder struct {
	ts    *types.Typespace
	buf   []byte
	off   int
	depth int
	opts  Options
	// lower bounds of the encoded size of the values of each slot
	sizes map[types.Ref]int
	// number of zero-sized elements decoded so far
	zeroSized int
}

func decodeError(off int, format string, args ...any) error {
	return errors.NewDecodeError(off, format, args...)
}

func (d *decoder) read(n int) ([]byte, error) {
	if n > len(d.buf)-d.off {
		return nil, decodeError(d.off, "unexpected end of buffer: need %d bytes, %d left", n, len(d.buf)-d.off)
	}

	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *decoder) enter() error {
	d.depth++
	if d.depth > d.opts.MaxDepth {
		return decodeError(d.off, "value nested deeper than %d levels", d.opts.MaxDepth)
	}
	return nil
}

func (d *decoder) leave() {
	d.depth--
}

// count reads a u32 collection length and makes sure the buffer can hold that many
// elements of at least elemSize bytes each. Zero-sized elements are charged to a budget
// shared by the whole value.
func (d *decoder) count(elemSize int) (int, error) {
	start := d.off
	b, err := d.read(4)
	if err != nil {
		return 0, err
	}

	n := readLE[uint32](b)
	if elemSize == 0 {
		if uint64(n) > uint64(d.opts.MaxCollectionLen-d.zeroSized) {
			return 0, decodeError(start, "collection of %d zero-sized elements exceeds the limit of %d per value", n, d.opts.MaxCollectionLen)
		}
		d.zeroSized += int(n)
		return int(n), nil
	}

	if left := len(d.buf) - d.off; uint64(n)*uint64(elemSize) > uint64(left) {
		return 0, decodeError(start, "collection of %d elements cannot fit in the remaining %d bytes", n, left)
	}
	return int(n), nil
}

func (d *decoder) decode(t types.AlgebraicType) (types.Value, error) {
	t, err := d.ts.Resolve(t)
	if err != nil {
		return nil, err
	}

	switch x := t.(type) {
	case types.PrimitiveType:
		return d.decodePrimitive(x.Kind())
	case types.ProductType:
		return d.decodeProduct(x)
	case types.SumType:
		return d.decodeSum(x)
	case types.ArrayType:
		return d.decodeArray(x)
	case types.MapType:
		return d.decodeMap(x)
	}

	return nil, decodeError(d.off, "cannot decode type %s", t)
}

func (d *decoder) decodePrimitive(k types.Kind) (types.Value, error) {
	switch k {
	case types.KindBool:
		b, err := d.read(1)
		if err != nil {
			return nil, err
		}
		switch b[0] {
		case 0:
			return types.BoolValue(false), nil
		case 1:
			return types.BoolValue(true), nil
		}
		return nil, decodeError(d.off-1, "invalid bool byte 0x%02x", b[0])
	case types.KindI8:
		b, err := d.read(1)
		if err != nil {
			return nil, err
		}
		return types.I8Value(int8(b[0])), nil
	case types.KindU8:
		b, err := d.read(1)
		if err != nil {
			return nil, err
		}
		return types.U8Value(b[0]), nil
	case types.KindI16:
		b, err := d.read(2)
		if err != nil {
			return nil, err
		}
		return types.I16Value(readLE[int16](b)), nil
	case types.KindU16:
		b, err := d.read(2)
		if err != nil {
			return nil, err
		}
		return types.U16Value(readLE[uint16](b)), nil
	case types.KindI32:
		b, err := d.read(4)
		if err != nil {
			return nil, err
		}
		return types.I32Value(readLE[int32](b)), nil
	case types.KindU32:
		b, err := d.read(4)
		if err != nil {
			return nil, err
		}
		return types.U32Value(readLE[uint32](b)), nil
	case types.KindI64:
		b, err := d.read(8)
		if err != nil {
			return nil, err
		}
		return types.I64Value(readLE[int64](b)), nil
	case types.KindU64:
		b, err := d.read(8)
		if err != nil {
			return nil, err
		}
		return types.U64Value(readLE[uint64](b)), nil
	case types.KindI128:
		b, err := d.read(16)
		if err != nil {
			return nil, err
		}
		return types.I128Value(types.I128FromLE(b)), nil
	case types.KindU128:
		b, err := d.read(16)
		if err != nil {
			return nil, err
		}
		return types.U128Value(types.U128FromLE(b)), nil
	case types.KindI256:
		b, err := d.read(32)
		if err != nil {
			return nil, err
		}
		return types.I256Value(types.I256FromLE(b)), nil
	case types.KindU256:
		b, err := d.read(32)
		if err != nil {
			return nil, err
		}
		return types.U256Value(types.U256FromLE(b)), nil
	case types.KindF32:
		b, err := d.read(4)
		if err != nil {
			return nil, err
		}
		return types.F32Value(math.Float32frombits(readLE[uint32](b))), nil
	case types.KindF64:
		b, err := d.read(8)
		if err != nil {
			return nil, err
		}
		return types.F64Value(math.Float64frombits(readLE[uint64](b))), nil
	case types.KindString:
		start := d.off
		b, err := d.readBytes()
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			return nil, decodeError(start, "invalid UTF-8 string")
		}
		return types.StringValue(b), nil
	case types.KindBytes:
		b, err := d.readBytes()
		if err != nil {
			return nil, err
		}
		cp := make([]byte, len(b))
		copy(cp, b)
		return types.BytesValue(cp), nil
	}

	return nil, decodeError(d.off, "cannot decode kind %s", k)
}

func (d *decoder) readBytes() ([]byte, error) {
	n, err := d.count(1)
	if err != nil {
		return nil, err
	}
	return d.read(n)
}

func (d *decoder) decodeProduct(pt types.ProductType) (types.Value, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	fields := make(types.ProductValue, len(pt.Elements))
	for i, e := range pt.Elements {
		v, err := d.decode(e.Type)
		if err != nil {
			return nil, err
		}
		fields[i] = v
	}
	return fields, nil
}

func (d *decoder) decodeSum(st types.SumType) (types.Value, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	n := len(st.Variants)
	if n == 0 {
		return nil, decodeError(d.off, "the empty sum has no values")
	}

	start := d.off
	b, err := d.read(tagSize(n))
	if err != nil {
		return nil, err
	}

	var tag uint32
	switch len(b) {
	case 1:
		tag = uint32(b[0])
	case 2:
		tag = uint32(readLE[uint16](b))
	default:
		tag = readLE[uint32](b)
	}
	if uint64(tag) >= uint64(n) {
		return nil, decodeError(start, "tag %d out of range for %d variants", tag, n)
	}

	payload, err := d.decode(st.Variants[tag].Type)
	if err != nil {
		return nil, err
	}
	return types.SumValue{Tag: tag, Value: payload}, nil
}

func (d *decoder) decodeArray(at types.ArrayType) (types.Value, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	n, err := d.count(d.minSize(at.Elem, nil))
	if err != nil {
		return nil, err
	}

	elems := make(types.ArrayValue, n)
	for i := range elems {
		if elems[i], err = d.decode(at.Elem); err != nil {
			return nil, err
		}
	}
	return elems, nil
}

func (d *decoder) decodeMap(mt types.MapType) (types.Value, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	start := d.off
	n, err := d.count(addSize(d.minSize(mt.Key, nil), d.minSize(mt.Value, nil)))
	if err != nil {
		return nil, err
	}

	entries := make([]types.MapEntry, n)
	for i := range entries {
		if entries[i].Key, err = d.decode(mt.Key); err != nil {
			return nil, err
		}
		if entries[i].Value, err = d.decode(mt.Value); err != nil {
			return nil, err
		}
	}

	m, err := types.NewMapValue(entries...)
	if err != nil {
		return nil, decodeError(start, "%s", err)
	}
	return m, nil
}

// minSize returns a lower bound of the number of bytes needed to encode any value of t.
// Recursion through refs is cut by counting the recursive occurrence as zero bytes.
func (d *decoder) minSize(t types.AlgebraicType, visiting map[types.Ref]struct{}) int {
	switch x := t.(type) {
	case types.Ref:
		if s, ok := d.sizes[x]; ok {
			return s
		}
		if _, ok := visiting[x]; ok {
			return 0
		}
		def, err := d.ts.Get(x)
		if err != nil {
			return 0
		}

		if visiting == nil {
			visiting = make(map[types.Ref]struct{})
		}
		visiting[x] = struct{}{}
		s := d.minSize(def, visiting)
		delete(visiting, x)

		d.sizes[x] = s
		return s
	case types.PrimitiveType:
		switch k := x.Kind(); k {
		case types.KindString, types.KindBytes:
			return 4
		default:
			return k.BitSize() / 8
		}
	case types.ProductType:
		size := 0
		for _, e := range x.Elements {
			size = addSize(size, d.minSize(e.Type, visiting))
		}
		return size
	case types.SumType:
		if len(x.Variants) == 0 {
			return sizeCap
		}
		smallest := sizeCap
		for _, v := range x.Variants {
			smallest = min(smallest, d.minSize(v.Type, visiting))
		}
		return addSize(tagSize(len(x.Variants)), smallest)
	case types.ArrayType, types.MapType:
		return 4
	}

	return 0
}
