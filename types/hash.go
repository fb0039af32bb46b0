package types

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Hash returns a 64-bit hash of v, consistent with Equal: canonically equal values
// (NaNs with different payloads, maps with different insertion orders) hash the same.
// The hash is stable across processes and can be persisted.
func Hash(v Value) uint64 {
	d := xxhash.New()
	h := hasher{d: d}
	h.value(v)
	return d.Sum64()
}

type hasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

func (h *hasher) writeByte(b byte) {
	h.buf[0] = b
	_, _ = h.d.Write(h.buf[:1])
}

func (h *hasher) writeUint64(x uint64) {
	binary.LittleEndian.PutUint64(h.buf[:], x)
	_, _ = h.d.Write(h.buf[:])
}

func (h *hasher) writeBytes(b []byte) {
	h.writeUint64(uint64(len(b)))
	_, _ = h.d.Write(b)
}

func (h *hasher) writeLimbs(l []uint64) {
	for _, x := range l {
		h.writeUint64(x)
	}
}

func (h *hasher) value(v Value) {
	if v == nil {
		h.writeByte(0xFF)
		return
	}

	h.writeByte(byte(v.Kind()))

	switch x := v.(type) {
	case BoolValue:
		if x {
			h.writeByte(1)
		} else {
			h.writeByte(0)
		}
	case I8Value:
		h.writeUint64(uint64(x))
	case U8Value:
		h.writeUint64(uint64(x))
	case I16Value:
		h.writeUint64(uint64(x))
	case U16Value:
		h.writeUint64(uint64(x))
	case I32Value:
		h.writeUint64(uint64(x))
	case U32Value:
		h.writeUint64(uint64(x))
	case I64Value:
		h.writeUint64(uint64(x))
	case U64Value:
		h.writeUint64(uint64(x))
	case I128Value:
		h.writeLimbs(x[:])
	case U128Value:
		h.writeLimbs(x[:])
	case I256Value:
		h.writeLimbs(x[:])
	case U256Value:
		h.writeLimbs(x[:])
	case F32Value:
		h.writeUint64(uint64(F32Bits(float32(x))))
	case F64Value:
		h.writeUint64(F64Bits(float64(x)))
	case StringValue:
		h.writeUint64(uint64(len(x)))
		_, _ = h.d.WriteString(string(x))
	case BytesValue:
		h.writeBytes(x)
	case ProductValue:
		h.writeUint64(uint64(len(x)))
		for _, f := range x {
			h.value(f)
		}
	case ArrayValue:
		h.writeUint64(uint64(len(x)))
		for _, e := range x {
			h.value(e)
		}
	case SumValue:
		h.writeUint64(uint64(x.Tag))
		h.value(x.Value)
	case MapValue:
		h.writeUint64(uint64(len(x)))
		for _, e := range x.Sorted() {
			h.value(e.Key)
			h.value(e.Value)
		}
	}
}
