package govalue

import (
	"fmt"
	"reflect"

	"github.com/mucharafal/py4j/codec"
)

// boundCall is a resolve.Invocable bound to a specific reflect.Value func and
// a specific, already-converted argument frame.
type boundCall struct {
	fn  reflect.Value
	in  []reflect.Value
}

func (b boundCall) Invoke() (interface{}, error) {
	out := b.fn.Call(b.in)
	return callResult(out)
}

// selectOverload picks, among candidates, the first whose arity and
// parameter types accept args, converting args into a reflect call frame.
func selectOverload(candidates []reflect.Value, args []codec.Value) (boundCall, error) {
	for _, fn := range candidates {
		if in, ok := bindArgs(fn, args); ok {
			return boundCall{fn: fn, in: in}, nil
		}
	}
	return boundCall{}, fmt.Errorf("govalue: no overload accepts %d argument(s)", len(args))
}

// methodCandidates gathers the reflect.Value of every exported method named
// name on target (value or pointer receiver).
func methodCandidates(target interface{}, name string) ([]reflect.Value, bool) {
	rv := reflect.ValueOf(target)
	m := rv.MethodByName(name)
	if m.IsValid() {
		return []reflect.Value{m}, true
	}
	if rv.Kind() != reflect.Ptr {
		pv := reflect.New(rv.Type())
		pv.Elem().Set(rv)
		m = pv.MethodByName(name)
		if m.IsValid() {
			return []reflect.Value{m}, true
		}
	}
	return nil, false
}
