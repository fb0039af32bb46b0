package bsatn

import (
	"github.com/chaisql/sats/types"
)

// meta is only read.
var meta = types.NewMetaTypespace()

// EncodeType returns the encoding of t as a value of the meta-type.
func EncodeType(t types.AlgebraicType) ([]byte, error) {
	v, err := types.TypeToValue(t)
	if err != nil {
		return nil, err
	}
	return Encode(meta, types.MetaAlgebraicType, v)
}

// DecodeType decodes a type encoded with EncodeType.
func DecodeType(b []byte) (types.AlgebraicType, error) {
	v, err := Decode(meta, types.MetaAlgebraicType, b)
	if err != nil {
		return nil, err
	}
	return types.TypeFromValue(v)
}

// EncodeTypespace returns the encoding of ts as a value of the meta-type.
func EncodeTypespace(ts *types.Typespace) ([]byte, error) {
	v, err := types.TypespaceToValue(ts)
	if err != nil {
		return nil, err
	}
	return Encode(meta, types.MetaTypespace, v)
}

// DecodeTypespace decodes and validates a typespace encoded with EncodeTypespace.
func DecodeTypespace(b []byte) (*types.Typespace, error) {
	v, err := Decode(meta, types.MetaTypespace, b)
	if err != nil {
		return nil, err
	}

	ts, err := types.TypespaceFromValue(v)
	if err != nil {
		return nil, err
	}
	if err := ts.Validate(); err != nil {
		return nil, err
	}
	return ts, nil
}
