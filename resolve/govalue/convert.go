package govalue

import (
	"fmt"
	"reflect"

	"github.com/mucharafal/py4j/codec"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// convertArg converts a wire-decoded codec.Value into a reflect.Value
// assignable to want, or reports false if no such conversion exists.
func convertArg(v codec.Value, want reflect.Type) (reflect.Value, bool) {
	switch v.Kind {
	case codec.KindNull:
		switch want.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			return reflect.Zero(want), true
		}
		return reflect.Value{}, false

	case codec.KindBoolean:
		return convertKind(reflect.ValueOf(v.Bool), want)

	case codec.KindInt:
		return convertKind(reflect.ValueOf(int(v.Int)), want)

	case codec.KindLong:
		return convertKind(reflect.ValueOf(v.Long), want)

	case codec.KindDouble:
		return convertKind(reflect.ValueOf(v.Double), want)

	case codec.KindChar:
		return convertKind(reflect.ValueOf(v.Char), want)

	case codec.KindString:
		return convertKind(reflect.ValueOf(v.Str), want)

	case codec.KindDecimal:
		return convertKind(reflect.ValueOf(v.Str), want)

	case codec.KindBytes:
		return convertKind(reflect.ValueOf(v.Bytes), want)

	case codec.KindReference:
		// A reference arrives here as its object id: nothing between the
		// wire and this conversion looks the id up in the registry, so an
		// interface-typed parameter is handed the id string and any other
		// parameter type rejects the argument.
		if want.Kind() == reflect.Interface {
			return reflect.ValueOf(v.Ref), true
		}
		return reflect.Value{}, false
	}
	return reflect.Value{}, false
}

// convertKind attempts a numeric-widening or identity assignment of rv into
// want, covering the handful of scalar kinds the wire protocol carries.
func convertKind(rv reflect.Value, want reflect.Type) (reflect.Value, bool) {
	if rv.Type().AssignableTo(want) {
		return rv, true
	}
	if rv.Type().ConvertibleTo(want) && isNumericKind(rv.Kind()) && isNumericKind(want.Kind()) {
		return rv.Convert(want), true
	}
	if want.Kind() == reflect.Interface && rv.Type().Implements(want) {
		return rv, true
	}
	if want.Kind() == reflect.Interface && want.NumMethod() == 0 {
		return rv, true
	}
	return reflect.Value{}, false
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// bindArgs attempts to build a []reflect.Value call frame for fn against
// args, returning false if fn's arity or parameter types don't fit.
func bindArgs(fn reflect.Value, args []codec.Value) ([]reflect.Value, bool) {
	t := fn.Type()
	variadic := t.IsVariadic()
	if !variadic && t.NumIn() != len(args) {
		return nil, false
	}
	if variadic && len(args) < t.NumIn()-1 {
		return nil, false
	}
	in := make([]reflect.Value, 0, len(args))
	for i, a := range args {
		var want reflect.Type
		switch {
		case variadic && i >= t.NumIn()-1:
			want = t.In(t.NumIn() - 1).Elem()
		default:
			want = t.In(i)
		}
		rv, ok := convertArg(a, want)
		if !ok {
			return nil, false
		}
		in = append(in, rv)
	}
	return in, true
}

// callResult splits a reflect.Call result into (value, error) following the
// (T), (T, error), and (error) conventions.
func callResult(out []reflect.Value) (interface{}, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type().Implements(errorType) {
			if out[0].IsNil() {
				return nil, nil
			}
			return nil, out[0].Interface().(error)
		}
		return out[0].Interface(), nil
	case 2:
		if !out[1].Type().Implements(errorType) {
			return nil, fmt.Errorf("govalue: unsupported two-value return %s", out[1].Type())
		}
		var err error
		if !out[1].IsNil() {
			err = out[1].Interface().(error)
		}
		return out[0].Interface(), err
	default:
		return nil, fmt.Errorf("govalue: unsupported %d-value return", len(out))
	}
}
