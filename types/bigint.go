package types

import (
	"encoding/binary"
	"math/big"
	"math/bits"

	"github.com/cockroachdb/errors"
)

// Wide integers are stored as little-endian 64-bit limbs: limb 0 holds the least
// significant bits. Signed variants use two's complement over the full width.
type (
	U128 [2]uint64
	I128 [2]uint64
	U256 [4]uint64
	I256 [4]uint64
)

func U128FromUint64(x uint64) U128 { return U128{x} }
func U256FromUint64(x uint64) U256 { return U256{x} }

func I128FromInt64(x int64) I128 {
	var v I128
	signExtend(v[:], x)
	return v
}

func I256FromInt64(x int64) I256 {
	var v I256
	signExtend(v[:], x)
	return v
}

// U128FromBig converts b, returning an error if it doesn't fit in 128 unsigned bits.
func U128FromBig(b *big.Int) (U128, error) {
	var v U128
	return v, limbsFromBig(v[:], b, false)
}

// I128FromBig converts b, returning an error if it doesn't fit in 128 signed bits.
func I128FromBig(b *big.Int) (I128, error) {
	var v I128
	return v, limbsFromBig(v[:], b, true)
}

// U256FromBig converts b, returning an error if it doesn't fit in 256 unsigned bits.
func U256FromBig(b *big.Int) (U256, error) {
	var v U256
	return v, limbsFromBig(v[:], b, false)
}

// I256FromBig converts b, returning an error if it doesn't fit in 256 signed bits.
func I256FromBig(b *big.Int) (I256, error) {
	var v I256
	return v, limbsFromBig(v[:], b, true)
}

func (x U128) Big() *big.Int { return limbsToBig(x[:], false) }
func (x I128) Big() *big.Int { return limbsToBig(x[:], true) }
func (x U256) Big() *big.Int { return limbsToBig(x[:], false) }
func (x I256) Big() *big.Int { return limbsToBig(x[:], true) }

func (x U128) String() string { return x.Big().String() }
func (x I128) String() string { return x.Big().String() }
func (x U256) String() string { return x.Big().String() }
func (x I256) String() string { return x.Big().String() }

func (x U128) Cmp(y U128) int { return cmpLimbs(x[:], y[:], false) }
func (x I128) Cmp(y I128) int { return cmpLimbs(x[:], y[:], true) }
func (x U256) Cmp(y U256) int { return cmpLimbs(x[:], y[:], false) }
func (x I256) Cmp(y I256) int { return cmpLimbs(x[:], y[:], true) }

// AppendLE appends the little-endian representation of x to dst.
func (x U128) AppendLE(dst []byte) []byte { return appendLimbs(dst, x[:]) }
func (x I128) AppendLE(dst []byte) []byte { return appendLimbs(dst, x[:]) }
func (x U256) AppendLE(dst []byte) []byte { return appendLimbs(dst, x[:]) }
func (x I256) AppendLE(dst []byte) []byte { return appendLimbs(dst, x[:]) }

// U128FromLE reads a 128-bit integer from the first 16 bytes of b.
func U128FromLE(b []byte) U128 {
	var v U128
	readLimbs(v[:], b)
	return v
}

// I128FromLE reads a 128-bit integer from the first 16 bytes of b.
func I128FromLE(b []byte) I128 {
	var v I128
	readLimbs(v[:], b)
	return v
}

// U256FromLE reads a 256-bit integer from the first 32 bytes of b.
func U256FromLE(b []byte) U256 {
	var v U256
	readLimbs(v[:], b)
	return v
}

// I256FromLE reads a 256-bit integer from the first 32 bytes of b.
func I256FromLE(b []byte) I256 {
	var v I256
	readLimbs(v[:], b)
	return v
}

// ParseBigInt parses a base 10 integer and checks that it fits in the given integer kind.
// It returns the value as a big.Int so callers can convert it to the matching Go type.
func ParseBigInt(s string, k Kind) (*big.Int, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Errorf("invalid integer %q", s)
	}

	if !FitsKind(b, k) {
		return nil, errors.Errorf("integer %s out of range for %s", s, k)
	}

	return b, nil
}

// FitsKind reports whether b is in the range of the integer kind k.
func FitsKind(b *big.Int, k Kind) bool {
	if !k.IsInteger() {
		return false
	}

	return fits(b, k.BitSize(), k.IsSigned())
}

func fits(b *big.Int, width int, signed bool) bool {
	if !signed {
		return b.Sign() >= 0 && b.BitLen() <= width
	}

	if b.Sign() >= 0 {
		return b.BitLen() <= width-1
	}

	// -2^(width-1) is the only negative value whose magnitude needs width bits.
	abs := new(big.Int).Neg(b)
	n := abs.BitLen()
	return n <= width-1 || (n == width && abs.TrailingZeroBits() == uint(width-1))
}

func signExtend(limbs []uint64, x int64) {
	limbs[0] = uint64(x)
	if x < 0 {
		for i := 1; i < len(limbs); i++ {
			limbs[i] = ^uint64(0)
		}
	}
}

func negateLimbs(limbs []uint64) {
	var carry uint64 = 1
	for i := range limbs {
		limbs[i], carry = bits.Add64(^limbs[i], 0, carry)
	}
}

func limbsFromBig(limbs []uint64, b *big.Int, signed bool) error {
	width := 64 * len(limbs)
	if b == nil {
		return errors.New("nil integer")
	}
	if !fits(b, width, signed) {
		return errors.Errorf("integer %s out of range for %d bits", b, width)
	}

	abs := new(big.Int).Abs(b)
	buf := abs.FillBytes(make([]byte, 8*len(limbs)))
	for i := range limbs {
		end := len(buf) - 8*i
		limbs[i] = binary.BigEndian.Uint64(buf[end-8 : end])
	}

	if b.Sign() < 0 {
		negateLimbs(limbs)
	}

	return nil
}

func limbsToBig(limbs []uint64, signed bool) *big.Int {
	neg := signed && int64(limbs[len(limbs)-1]) < 0
	if neg {
		cp := make([]uint64, len(limbs))
		copy(cp, limbs)
		negateLimbs(cp)
		limbs = cp
	}

	buf := make([]byte, 8*len(limbs))
	for i, l := range limbs {
		end := len(buf) - 8*i
		binary.BigEndian.PutUint64(buf[end-8:end], l)
	}

	b := new(big.Int).SetBytes(buf)
	if neg {
		b.Neg(b)
	}
	return b
}

func cmpLimbs(x, y []uint64, signed bool) int {
	top := len(x) - 1
	if signed {
		a, b := int64(x[top]), int64(y[top])
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		top--
	}

	for i := top; i >= 0; i-- {
		switch {
		case x[i] < y[i]:
			return -1
		case x[i] > y[i]:
			return 1
		}
	}

	return 0
}

func appendLimbs(dst []byte, limbs []uint64) []byte {
	for _, l := range limbs {
		dst = binary.LittleEndian.AppendUint64(dst, l)
	}
	return dst
}

func readLimbs(limbs []uint64, b []byte) {
	for i := range limbs {
		limbs[i] = binary.LittleEndian.Uint64(b[8*i:])
	}
}
