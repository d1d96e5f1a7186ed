// Package classify implements the return classifier (C3): it decides
// whether a host value crossing back to the peer travels as a primitive or
// is retained by id, and under which semantic category.
package classify

import (
	"reflect"

	"github.com/mucharafal/py4j/codec"
)

// Void is the distinguished sentinel a handler returns to mean "this method
// returns void", distinct from both a Go nil and a host null.
var Void = voidSentinel{}

type voidSentinel struct{}

// List, Map, Set, and Iterator are marker interfaces a host value can
// implement to pick its classification explicitly, bypassing the reflect
// fallback below. Binder is the registrar the classifier uses to obtain an
// id for anything it decides to retain by reference.
type (
	List interface {
		Len() int
	}
	Map interface {
		Len() int
	}
	Set interface {
		Len() int
	}
	Iterator interface {
		Next() (interface{}, bool)
	}
)

// Binder registers a value and returns the id it was bound under; the
// classifier never decides ownership/lifetime policy itself, it only asks
// the registry for an id once it has picked a category.
type Binder interface {
	PutNew(obj interface{}) string
}

// Classify applies the precedence list of §4.3 to v and returns the
// ReturnObject the wire codec should send. A nil v classifies as ObjNull
// without consulting the precedence list at all.
func Classify(b Binder, v interface{}) codec.ReturnObject {
	if v == nil {
		return codec.NullObj()
	}

	if _, ok := v.(voidSentinel); ok {
		return codec.Void()
	}

	if pv, ok := primitiveValue(v); ok {
		return codec.Primitive(pv)
	}

	// List-like takes precedence over iterator-like: a value implementing
	// both List and Iterator classifies as list (§8 invariant 3).
	if l, ok := v.(List); ok {
		id := b.PutNew(v)
		return codec.List(id, int64(l.Len()))
	}
	if m, ok := v.(Map); ok {
		id := b.PutNew(v)
		return codec.Map(id, int64(m.Len()))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		id := b.PutNew(v)
		return codec.List(id, int64(rv.Len()))
	case reflect.Array:
		id := b.PutNew(v)
		return codec.Array(id, int64(rv.Len()))
	case reflect.Map:
		id := b.PutNew(v)
		return codec.Map(id, int64(rv.Len()))
	}

	if s, ok := v.(Set); ok {
		id := b.PutNew(v)
		return codec.Set(id, int64(s.Len()))
	}
	if _, ok := v.(Iterator); ok {
		id := b.PutNew(v)
		return codec.Iterator(id)
	}

	id := b.PutNew(v)
	return codec.Reference(id)
}

// primitiveValue recognizes booleans, strings, numeric primitives/boxed
// numbers, and single characters (runes), returning the encoded codec.Value.
func primitiveValue(v interface{}) (codec.Value, bool) {
	switch t := v.(type) {
	case bool:
		return codec.Bool(t), true
	case string:
		return codec.Str(t), true
	case Character:
		return codec.Char(rune(t)), true
	case int:
		return intValue(int64(t)), true
	case int8:
		return codec.Int(int32(t)), true
	case int16:
		return codec.Int(int32(t)), true
	case int32:
		return codec.Int(t), true
	case int64:
		return intValue(t), true
	case uint:
		return intValue(int64(t)), true
	case uint8:
		return codec.Int(int32(t)), true
	case uint16:
		return codec.Int(int32(t)), true
	case uint32:
		return intValue(int64(t)), true
	case uint64:
		return intValue(int64(t)), true
	case float32:
		return codec.Double(float64(t)), true
	case float64:
		return codec.Double(t), true
	}
	return codec.Value{}, false
}

// Character wraps a rune so host code can mark a value for primitive-char
// classification instead of falling through to the int32 case: Go cannot
// otherwise distinguish "this int32 is a character" from "this is a number"
// at runtime.
type Character int32

func intValue(i int64) codec.Value {
	if i >= -(1<<31) && i <= (1<<31)-1 {
		return codec.Int(int32(i))
	}
	return codec.Long(i)
}
