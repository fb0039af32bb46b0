package describe

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"time"

	"github.com/chaisql/sats/errors"
	"github.com/chaisql/sats/types"
	cerrors "github.com/cockroachdb/errors"
)

// ValueOf converts x to an algebraic value conforming to the type returned by TypeOf.
func ValueOf(x any) (types.Value, error) {
	v := reflect.ValueOf(x)
	if !v.IsValid() {
		return nil, cerrors.New("cannot convert nil to a value")
	}
	return valueOf(v)
}

func valueOf(v reflect.Value) (types.Value, error) {
	if vl, ok := asValuer(v); ok {
		return vl.SATSValue()
	}

	switch v.Type() {
	case timeType:
		return types.TimestampValue(v.Interface().(time.Time)), nil
	case durationType:
		return types.TimeDurationValue(time.Duration(v.Int())), nil
	case i128Type:
		return types.I128Value(v.Interface().(types.I128)), nil
	case u128Type:
		return types.U128Value(v.Interface().(types.U128)), nil
	case i256Type:
		return types.I256Value(v.Interface().(types.I256)), nil
	case u256Type:
		return types.U256Value(v.Interface().(types.U256)), nil
	}

	switch v.Kind() {
	case reflect.Bool:
		return types.BoolValue(v.Bool()), nil
	case reflect.Int8:
		return types.I8Value(v.Int()), nil
	case reflect.Int16:
		return types.I16Value(v.Int()), nil
	case reflect.Int32:
		return types.I32Value(v.Int()), nil
	case reflect.Int, reflect.Int64:
		return types.I64Value(v.Int()), nil
	case reflect.Uint8:
		return types.U8Value(v.Uint()), nil
	case reflect.Uint16:
		return types.U16Value(v.Uint()), nil
	case reflect.Uint32:
		return types.U32Value(v.Uint()), nil
	case reflect.Uint, reflect.Uint64:
		return types.U64Value(v.Uint()), nil
	case reflect.Float32:
		return types.F32Value(v.Float()), nil
	case reflect.Float64:
		return types.F64Value(v.Float()), nil
	case reflect.String:
		return types.StringValue(v.String()), nil
	case reflect.Pointer:
		if v.IsNil() {
			return types.NoneValue(), nil
		}
		elem, err := valueOf(v.Elem())
		if err != nil {
			return nil, err
		}
		return types.SomeValue(elem), nil
	case reflect.Slice, reflect.Array:
		if isBytes(v.Type()) {
			b := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(b), v)
			return types.BytesValue(b), nil
		}

		arr := make(types.ArrayValue, v.Len())
		for i := range arr {
			elem, err := valueOf(v.Index(i))
			if err != nil {
				return nil, err
			}
			arr[i] = elem
		}
		return arr, nil
	case reflect.Map:
		entries := make([]types.MapEntry, 0, v.Len())
		it := v.MapRange()
		for it.Next() {
			key, err := valueOf(it.Key())
			if err != nil {
				return nil, err
			}
			value, err := valueOf(it.Value())
			if err != nil {
				return nil, err
			}
			entries = append(entries, types.MapEntry{Key: key, Value: value})
		}
		return types.NewMapValue(entries...)
	case reflect.Struct:
		fields := structFields(v.Type())
		p := make(types.ProductValue, len(fields))
		for i, f := range fields {
			fv, err := valueOf(v.FieldByIndex(f.index))
			if err != nil {
				return nil, err
			}
			p[i] = fv
		}
		return p, nil
	}

	return nil, cerrors.Errorf("cannot convert Go value of type %s", v.Type())
}

func asValuer(v reflect.Value) (Valuer, bool) {
	if v.Type().Implements(valuerType) {
		if v.Kind() == reflect.Pointer && v.IsNil() {
			return nil, false
		}
		return v.Interface().(Valuer), true
	}
	if v.CanAddr() && v.Addr().Type().Implements(valuerType) {
		return v.Addr().Interface().(Valuer), true
	}
	if reflect.PointerTo(v.Type()).Implements(valuerType) {
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		return ptr.Interface().(Valuer), true
	}
	return nil, false
}

// Assign sets the Go value pointed to by dst from v.
// It is the inverse of ValueOf.
func Assign(dst any, v types.Value) error {
	ref := reflect.ValueOf(dst)
	if !ref.IsValid() || ref.Kind() != reflect.Pointer || ref.IsNil() {
		return cerrors.New("target must be a non-nil pointer")
	}
	return assign("", ref.Elem(), v)
}

func assign(path string, ref reflect.Value, v types.Value) error {
	if ref.CanAddr() && ref.Addr().Type().Implements(valueAssignerType) {
		return ref.Addr().Interface().(ValueAssigner).AssignSATSValue(v)
	}
	if v == nil {
		return mismatch(path, ref.Type().String(), v)
	}

	switch ref.Type() {
	case timeType:
		t, ok := types.TimeFromValue(v)
		if !ok {
			return mismatch(path, "Timestamp", v)
		}
		ref.Set(reflect.ValueOf(t))
		return nil
	case durationType:
		d, ok := types.DurationFromValue(v)
		if !ok {
			return mismatch(path, "TimeDuration", v)
		}
		ref.SetInt(int64(d))
		return nil
	case i128Type, u128Type, i256Type, u256Type:
		wide := reflect.ValueOf(v.V())
		if wide.Type() != ref.Type() {
			return mismatch(path, ref.Type().Name(), v)
		}
		ref.Set(wide)
		return nil
	}

	switch ref.Kind() {
	case reflect.Bool:
		x, ok := v.(types.BoolValue)
		if !ok {
			return mismatch(path, "Bool", v)
		}
		ref.SetBool(bool(x))
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b, ok := integer(v)
		if !ok || !b.IsInt64() || ref.OverflowInt(b.Int64()) {
			return mismatch(path, ref.Type().String(), v)
		}
		ref.SetInt(b.Int64())
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		b, ok := integer(v)
		if !ok || !b.IsUint64() || ref.OverflowUint(b.Uint64()) {
			return mismatch(path, ref.Type().String(), v)
		}
		ref.SetUint(b.Uint64())
		return nil
	case reflect.Float32, reflect.Float64:
		switch x := v.(type) {
		case types.F32Value:
			ref.SetFloat(float64(x))
		case types.F64Value:
			ref.SetFloat(float64(x))
		default:
			return mismatch(path, ref.Type().String(), v)
		}
		return nil
	case reflect.String:
		x, ok := v.(types.StringValue)
		if !ok {
			return mismatch(path, "String", v)
		}
		ref.SetString(string(x))
		return nil
	case reflect.Pointer:
		s, ok := v.(types.SumValue)
		if !ok || s.Tag > 1 {
			return mismatch(path, "Option", v)
		}
		if s.Tag == 1 {
			ref.Set(reflect.Zero(ref.Type()))
			return nil
		}
		elem := reflect.New(ref.Type().Elem())
		if err := assign(path, elem.Elem(), s.Value); err != nil {
			return err
		}
		ref.Set(elem)
		return nil
	case reflect.Slice, reflect.Array:
		return assignList(path, ref, v)
	case reflect.Map:
		m, ok := v.(types.MapValue)
		if !ok {
			return mismatch(path, "Map", v)
		}
		out := reflect.MakeMapWithSize(ref.Type(), len(m))
		for _, e := range m {
			key := reflect.New(ref.Type().Key()).Elem()
			if err := assign(path+"{}", key, e.Key); err != nil {
				return err
			}
			value := reflect.New(ref.Type().Elem()).Elem()
			if err := assign(path+"{"+fmt.Sprint(e.Key)+"}", value, e.Value); err != nil {
				return err
			}
			out.SetMapIndex(key, value)
		}
		ref.Set(out)
		return nil
	case reflect.Struct:
		p, ok := v.(types.ProductValue)
		fields := structFields(ref.Type())
		if !ok || len(p) != len(fields) {
			return mismatch(path, ref.Type().String(), v)
		}
		for i, f := range fields {
			if err := assign(path+"."+f.name, ref.FieldByIndex(f.index), p[i]); err != nil {
				return err
			}
		}
		return nil
	case reflect.Interface:
		if !reflect.TypeOf(v).AssignableTo(ref.Type()) {
			return mismatch(path, ref.Type().String(), v)
		}
		ref.Set(reflect.ValueOf(v))
		return nil
	}

	return cerrors.Errorf("cannot assign to Go value of type %s", ref.Type())
}

func assignList(path string, ref reflect.Value, v types.Value) error {
	if isBytes(ref.Type()) {
		b, ok := v.(types.BytesValue)
		if !ok {
			return mismatch(path, "Bytes", v)
		}
		if ref.Kind() == reflect.Array {
			if len(b) != ref.Len() {
				return mismatch(path, ref.Type().String(), v)
			}
			reflect.Copy(ref, reflect.ValueOf([]byte(b)))
			return nil
		}
		ref.SetBytes(append([]byte(nil), b...))
		return nil
	}

	arr, ok := v.(types.ArrayValue)
	if !ok {
		return mismatch(path, "Array", v)
	}

	if ref.Kind() == reflect.Array {
		if len(arr) != ref.Len() {
			return mismatch(path, ref.Type().String(), v)
		}
	} else {
		ref.Set(reflect.MakeSlice(ref.Type(), len(arr), len(arr)))
	}

	for i, elem := range arr {
		if err := assign(path+"["+strconv.Itoa(i)+"]", ref.Index(i), elem); err != nil {
			return err
		}
	}
	return nil
}

// integer returns the value of any integer kind as a big.Int.
func integer(v types.Value) (*big.Int, bool) {
	switch x := v.(type) {
	case types.I8Value:
		return big.NewInt(int64(x)), true
	case types.I16Value:
		return big.NewInt(int64(x)), true
	case types.I32Value:
		return big.NewInt(int64(x)), true
	case types.I64Value:
		return big.NewInt(int64(x)), true
	case types.U8Value:
		return new(big.Int).SetUint64(uint64(x)), true
	case types.U16Value:
		return new(big.Int).SetUint64(uint64(x)), true
	case types.U32Value:
		return new(big.Int).SetUint64(uint64(x)), true
	case types.U64Value:
		return new(big.Int).SetUint64(uint64(x)), true
	case types.I128Value:
		return types.I128(x).Big(), true
	case types.U128Value:
		return types.U128(x).Big(), true
	case types.I256Value:
		return types.I256(x).Big(), true
	case types.U256Value:
		return types.U256(x).Big(), true
	}
	return nil, false
}

func mismatch(path, expected string, v types.Value) error {
	got := "nil"
	if v != nil {
		got = v.Kind().String()
	}
	return cerrors.WithStack(&errors.TypeMismatchError{Path: path, Expected: expected, Got: got})
}
