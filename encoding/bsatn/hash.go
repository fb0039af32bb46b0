package bsatn

import (
	"crypto/sha256"
	"hash"

	"github.com/chaisql/sats/types"
)

// ContentHash returns the SHA-256 digest of the encoding of v.
// Equal values always have the same content hash.
func ContentHash(ts *types.Typespace, t types.AlgebraicType, v types.Value) ([32]byte, error) {
	var sum [32]byte

	b, err := Encode(ts, t, v)
	if err != nil {
		return sum, err
	}
	return sha256.Sum256(b), nil
}

// Digest writes the encoding of v to h and returns the resulting digest.
func Digest(h hash.Hash, ts *types.Typespace, t types.AlgebraicType, v types.Value) ([]byte, error) {
	b, err := Encode(ts, t, v)
	if err != nil {
		return nil, err
	}

	h.Reset()
	_, _ = h.Write(b)
	return h.Sum(nil), nil
}
