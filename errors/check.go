package errors

import "github.com/cockroachdb/errors"

func IsSchemaError(err error) bool {
	var e *SchemaError
	return errors.As(err, &e)
}

func IsUnresolvedRef(err error) bool {
	var e *UnresolvedRefError
	return errors.As(err, &e)
}

func IsTypeMismatch(err error) bool {
	var e *TypeMismatchError
	return errors.As(err, &e)
}

func IsDecodeError(err error) bool {
	var e *DecodeError
	return errors.As(err, &e)
}

func IsJSONFormatError(err error) bool {
	var e *JSONFormatError
	return errors.As(err, &e)
}

// AsDecodeError returns the DecodeError wrapped by err, if any.
func AsDecodeError(err error) (*DecodeError, bool) {
	var e *DecodeError
	ok := errors.As(err, &e)
	return e, ok
}
