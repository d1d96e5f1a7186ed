package govalue

import (
	"fmt"
	"reflect"

	"github.com/mucharafal/py4j/codec"
)

// structField is a resolve.Field bound to one addressable struct field.
type structField struct {
	rv reflect.Value
}

func (f structField) Get() (interface{}, error) {
	return f.rv.Interface(), nil
}

func (f structField) Set(value codec.Value) error {
	if !f.rv.CanSet() {
		return fmt.Errorf("govalue: field is not settable")
	}
	converted, ok := convertArg(value, f.rv.Type())
	if !ok {
		return fmt.Errorf("govalue: cannot assign %v to field of type %s", value, f.rv.Type())
	}
	f.rv.Set(converted)
	return nil
}

// resolveField finds an addressable struct field named name on target, which
// must be a pointer to a struct for Set to succeed.
func resolveField(target interface{}, name string) (structField, bool) {
	rv := reflect.ValueOf(target)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return structField{}, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return structField{}, false
	}
	fv := rv.FieldByName(name)
	if !fv.IsValid() {
		return structField{}, false
	}
	return structField{rv: fv}, true
}
