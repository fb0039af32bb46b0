package types

import "math"

const (
	// CanonicalNaN64 is the bit pattern every 64-bit NaN is collapsed to.
	CanonicalNaN64 uint64 = 0x7FF8000000000000
	// CanonicalNaN32 is the bit pattern every 32-bit NaN is collapsed to.
	CanonicalNaN32 uint32 = 0x7FC00000
)

// F64Bits returns the IEEE-754 bits of f, with NaNs replaced by CanonicalNaN64.
func F64Bits(f float64) uint64 {
	if f != f {
		return CanonicalNaN64
	}
	return math.Float64bits(f)
}

// F32Bits returns the IEEE-754 bits of f, with NaNs replaced by CanonicalNaN32.
func F32Bits(f float32) uint32 {
	if f != f {
		return CanonicalNaN32
	}
	return math.Float32bits(f)
}

// F64Key maps f to an unsigned integer whose natural order is the total order of floats:
// -Inf < ... < -0 < +0 < ... < +Inf < NaN.
func F64Key(f float64) uint64 {
	b := F64Bits(f)
	if b>>63 != 0 {
		return ^b
	}
	return b | 1<<63
}

// F32Key is the 32-bit version of F64Key.
func F32Key(f float32) uint32 {
	b := F32Bits(f)
	if b>>31 != 0 {
		return ^b
	}
	return b | 1<<31
}
