package bsatn

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

// appendLE appends x in little-endian order, using exactly the width of T.
func appendLE[T constraints.Integer](dst []byte, x T) []byte {
	size := int(unsafe.Sizeof(x))
	u := uint64(x)
	for i := 0; i < size; i++ {
		dst = append(dst, byte(u>>(8*i)))
	}
	return dst
}

// readLE reads a little-endian T from the first bytes of b.
// The caller must make sure b holds at least the width of T.
func readLE[T constraints.Integer](b []byte) T {
	var x T
	size := int(unsafe.Sizeof(x))
	var u uint64
	for i := 0; i < size; i++ {
		u |= uint64(b[i]) << (8 * i)
	}
	return T(u)
}

// tagSize returns the number of bytes used to encode the tag of a sum with n variants.
func tagSize(n int) int {
	switch {
	case n <= 1<<8:
		return 1
	case n <= 1<<16:
		return 2
	}
	return 4
}

func appendTag(dst []byte, tag uint32, n int) []byte {
	switch tagSize(n) {
	case 1:
		return append(dst, byte(tag))
	case 2:
		return appendLE(dst, uint16(tag))
	}
	return appendLE(dst, tag)
}

const sizeCap = 1 << 30

func addSize(a, b int) int {
	if a+b > sizeCap {
		return sizeCap
	}
	return a + b
}
