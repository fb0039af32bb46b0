// Package errors defines the error taxonomy of the type and value layer.
//
// Each error kind is a distinct type so callers (transport, storage, reducer dispatch)
// can classify a failure without string matching, even after it has been wrapped.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrDuplicateKey is returned when a map value contains two keys that are canonically equal.
	ErrDuplicateKey = errors.New("duplicate map key")
)

// SchemaError is returned when a type definition is malformed: duplicate field or variant names,
// missing member types, ref cycles that never reach a definition, slots reserved but never defined.
// It is raised when types are built or validated, never by the codecs.
type SchemaError struct {
	Reason string
}

// NewSchemaError returns a SchemaError with a stack trace attached.
func NewSchemaError(format string, args ...any) error {
	return errors.WithStack(&SchemaError{Reason: fmt.Sprintf(format, args...)})
}

func (e *SchemaError) Error() string {
	return "schema error: " + e.Reason
}

// UnresolvedRefError is returned when a Ref has no corresponding typespace slot.
type UnresolvedRefError struct {
	Ref uint32
	Len int
}

// NewUnresolvedRefError returns an UnresolvedRefError with a stack trace attached.
func NewUnresolvedRefError(ref uint32, n int) error {
	return errors.WithStack(&UnresolvedRefError{Ref: ref, Len: n})
}

func (e *UnresolvedRefError) Error() string {
	return fmt.Sprintf("unresolved ref &%d: typespace has %d slots", e.Ref, e.Len)
}

// TypeMismatchError is returned when a value does not conform to the type it is
// checked or encoded against. Path locates the offending value inside the root value,
// e.g. ".pos.x" or "[3]".
type TypeMismatchError struct {
	Path     string
	Expected string
	Got      string
	Reason   string
}

func (e *TypeMismatchError) Error() string {
	path := e.Path
	if path == "" {
		path = "<root>"
	}

	if e.Reason != "" {
		return fmt.Sprintf("type mismatch at %s: %s", path, e.Reason)
	}

	return fmt.Sprintf("type mismatch at %s: expected %s, got %s", path, e.Expected, e.Got)
}

// DecodeError is returned when a binary buffer is truncated or malformed.
// Offset is the byte offset at which the inconsistency was detected and
// is never greater than the length of the buffer.
type DecodeError struct {
	Offset int
	Reason string
}

// NewDecodeError returns a DecodeError with a stack trace attached.
func NewDecodeError(offset int, format string, args ...any) error {
	return errors.WithStack(&DecodeError{Offset: offset, Reason: fmt.Sprintf(format, args...)})
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error at offset %d: %s", e.Offset, e.Reason)
}

// JSONFormatError is returned when a JSON document has a shape that is incompatible
// with the target type, e.g. a sum object with zero or several keys.
type JSONFormatError struct {
	Path   string
	Reason string
}

// NewJSONFormatError returns a JSONFormatError with a stack trace attached.
func NewJSONFormatError(path string, format string, args ...any) error {
	return errors.WithStack(&JSONFormatError{Path: path, Reason: fmt.Sprintf(format, args...)})
}

func (e *JSONFormatError) Error() string {
	path := e.Path
	if path == "" {
		path = "<root>"
	}
	return fmt.Sprintf("invalid json at %s: %s", path, e.Reason)
}
