package errors

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestIsDecodeError(t *testing.T) {
	err := NewDecodeError(3, "buffer too short")
	require.True(t, IsDecodeError(err))
	require.True(t, IsDecodeError(errors.Wrap(err, "decoding row")))
	require.False(t, IsSchemaError(err))

	de, ok := AsDecodeError(errors.Wrap(err, "decoding row"))
	require.True(t, ok)
	require.Equal(t, 3, de.Offset)
	require.Equal(t, "decode error at offset 3: buffer too short", de.Error())
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&SchemaError{Reason: "duplicate field name \"x\""}, `schema error: duplicate field name "x"`},
		{&UnresolvedRefError{Ref: 4, Len: 2}, "unresolved ref &4: typespace has 2 slots"},
		{&TypeMismatchError{Path: ".x", Expected: "I32", Got: "String"}, "type mismatch at .x: expected I32, got String"},
		{&TypeMismatchError{Reason: "invalid UTF-8 string"}, "type mismatch at <root>: invalid UTF-8 string"},
		{&JSONFormatError{Path: ".kind", Reason: "sum object must have exactly one key"}, "invalid json at .kind: sum object must have exactly one key"},
	}

	for _, test := range tests {
		t.Run(test.want, func(t *testing.T) {
			require.Equal(t, test.want, test.err.Error())
		})
	}
}

func TestIsHelpers(t *testing.T) {
	require.True(t, IsSchemaError(NewSchemaError("bad %s", "type")))
	require.True(t, IsUnresolvedRef(errors.Wrap(NewUnresolvedRefError(1, 0), "resolve")))
	require.True(t, IsTypeMismatch(errors.WithStack(&TypeMismatchError{})))
	require.True(t, IsJSONFormatError(NewJSONFormatError("", "oops")))
	require.False(t, IsJSONFormatError(ErrDuplicateKey))
}
