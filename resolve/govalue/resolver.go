package govalue

import (
	"fmt"
	"reflect"

	"github.com/mucharafal/py4j/codec"
	"github.com/mucharafal/py4j/resolve"
)

// Resolver implements resolve.Resolver over a Catalog, using stdlib reflect
// for overload resolution by argument-count and type compatibility.
type Resolver struct {
	catalog *Catalog
}

// NewResolver returns a Resolver bound to catalog.
func NewResolver(catalog *Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

func (r *Resolver) ResolveConstructor(fqn string, args []codec.Value) (resolve.Invocable, error) {
	ctors := r.catalog.ctorsFor(fqn)
	if len(ctors) == 0 {
		return nil, fmt.Errorf("govalue: no constructor registered for %s", fqn)
	}
	bound, err := selectOverload(ctors, args)
	if err != nil {
		return nil, fmt.Errorf("govalue: %s: %w", fqn, err)
	}
	return bound, nil
}

func (r *Resolver) ResolveMethod(target interface{}, name string, args []codec.Value) (resolve.Invocable, error) {
	candidates, ok := methodCandidates(target, name)
	if !ok {
		return nil, fmt.Errorf("govalue: no method named %s on %T", name, target)
	}
	bound, err := selectOverload(candidates, args)
	if err != nil {
		return nil, fmt.Errorf("govalue: %s.%s: %w", typeName(target), name, err)
	}
	return bound, nil
}

func (r *Resolver) ResolveField(target interface{}, name string) (resolve.Field, error) {
	f, ok := resolveField(target, name)
	if !ok {
		return nil, fmt.Errorf("govalue: no field named %s on %T", name, target)
	}
	return f, nil
}

// Classify reports whether name, resolved through viewResolve, denotes a
// registered class, a registered package prefix, or neither.
func (r *Resolver) Classify(viewResolve func(bare string) (string, bool), name string) resolve.Member {
	if fqn, ok := viewResolve(name); ok && r.catalog.isClass(fqn) {
		return resolve.MemberClass
	}
	if r.catalog.isClass(name) {
		return resolve.MemberClass
	}
	if r.catalog.isPackage(name) {
		return resolve.MemberPackage
	}
	return resolve.MemberUnknown
}

// Signatures lists constructors registered for target when target is a
// fully qualified class name string, or the exported methods of target's
// dynamic type otherwise.
func (r *Resolver) Signatures(target interface{}) ([]resolve.Signature, error) {
	if fqn, ok := target.(string); ok {
		ctors := r.catalog.ctorsFor(fqn)
		out := make([]resolve.Signature, 0, len(ctors))
		for _, c := range ctors {
			out = append(out, funcSignature("<init>", c.Type(), true))
		}
		return out, nil
	}

	rv := reflect.ValueOf(target)
	rt := rv.Type()
	out := make([]resolve.Signature, 0, rt.NumMethod())
	for i := 0; i < rt.NumMethod(); i++ {
		m := rt.Method(i)
		out = append(out, funcSignature(m.Name, m.Func.Type(), false))
	}
	return out, nil
}

func funcSignature(name string, ft reflect.Type, static bool) resolve.Signature {
	start := 0
	if !static && ft.NumIn() > 0 {
		start = 1 // receiver
	}
	params := make([]string, 0, ft.NumIn())
	for i := start; i < ft.NumIn(); i++ {
		params = append(params, ft.In(i).String())
	}
	ret := "void"
	if ft.NumOut() > 0 {
		ret = ft.Out(0).String()
	}
	return resolve.Signature{Name: name, ParamTypes: params, ReturnType: ret, Static: static}
}

func typeName(v interface{}) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}

var _ resolve.Resolver = (*Resolver)(nil)
