package types

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/chaisql/sats/errors"
	cerrors "github.com/cockroachdb/errors"
)

// Check verifies that v conforms to t, resolving refs against ts.
// Mismatches are reported as a TypeMismatchError locating the offending value,
// resolution failures as UnresolvedRefError or SchemaError.
func Check(ts *Typespace, t AlgebraicType, v Value) error {
	return check(ts, t, v, "")
}

func check(ts *Typespace, t AlgebraicType, v Value, path string) error {
	t, err := ts.Resolve(t)
	if err != nil {
		return err
	}

	if v == nil {
		return mismatch(path, t, "<nil>")
	}
	if v.Kind() != t.Kind() {
		return mismatch(path, t, v.Kind().String())
	}

	switch tt := t.(type) {
	case PrimitiveType:
		if s, ok := v.(StringValue); ok && !utf8.ValidString(string(s)) {
			return mismatchf(path, "invalid UTF-8 string")
		}
	case ProductType:
		pv := v.(ProductValue)
		if len(pv) != len(tt.Elements) {
			return mismatchf(path, "expected %d fields, got %d", len(tt.Elements), len(pv))
		}
		for i, e := range tt.Elements {
			if err := check(ts, e.Type, pv[i], path+"."+tt.ElementName(i)); err != nil {
				return err
			}
		}
	case SumType:
		sv := v.(SumValue)
		if int64(sv.Tag) >= int64(len(tt.Variants)) {
			return mismatchf(path, "tag %d out of range for %d variants", sv.Tag, len(tt.Variants))
		}
		tag := int(sv.Tag)
		if err := check(ts, tt.Variants[tag].Type, sv.Value, path+"("+tt.VariantName(tag)+")"); err != nil {
			return err
		}
	case ArrayType:
		for i, e := range v.(ArrayValue) {
			if err := check(ts, tt.Elem, e, path+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
	case MapType:
		mv := v.(MapValue)
		for _, e := range mv {
			at := path + "{" + valueString(e.Key) + "}"
			if err := check(ts, tt.Key, e.Key, at); err != nil {
				return err
			}
			if err := check(ts, tt.Value, e.Value, at); err != nil {
				return err
			}
		}
		if i := mv.duplicateKey(); i >= 0 {
			err := mismatchf(path+"{"+valueString(mv[i].Key)+"}", "duplicate map key")
			return cerrors.Mark(err, errors.ErrDuplicateKey)
		}
	}

	return nil
}

func mismatch(path string, expected AlgebraicType, got string) error {
	return cerrors.WithStack(&errors.TypeMismatchError{Path: path, Expected: expected.String(), Got: got})
}

func mismatchf(path string, format string, args ...any) error {
	return cerrors.WithStack(&errors.TypeMismatchError{Path: path, Reason: fmt.Sprintf(format, args...)})
}
