// Package resolve exposes the reflection facility as a pluggable capability,
// per §9: overload resolution by argument-type compatibility is external to
// the gateway's hard core, so it is expressed purely as an interface here.
// The govalue subpackage ships one concrete binding over a registered Go
// type catalog.
package resolve

import "github.com/mucharafal/py4j/codec"

// Member distinguishes what reflection.getUnknown / dir resolved a bare name
// to, mirroring the three-way classification of §4.4.
type Member int

const (
	MemberUnknown Member = iota
	MemberClass
	MemberPackage
	MemberField
	MemberMethod
)

// Signature describes one resolved constructor or method for "help"/"dir".
type Signature struct {
	Name       string
	ParamTypes []string
	ReturnType string
	Static     bool
}

// Resolver is the external reflection collaborator. Every method may return
// an error (wrapped by the caller into liberr.ReflectionError); Invoke
// additionally may return a non-nil error representing the invoked method
// itself failing (wrapped into liberr.InvocationError by the caller, not by
// the resolver).
type Resolver interface {
	// ResolveConstructor finds the best-matching constructor of fqn for the
	// given argument values and returns a bound invocable.
	ResolveConstructor(fqn string, args []codec.Value) (Invocable, error)

	// ResolveMethod finds the best-matching method named name on target
	// (an instance, or a class name if target is a static reference) for
	// the given argument values.
	ResolveMethod(target interface{}, name string, args []codec.Value) (Invocable, error)

	// ResolveField finds field name on target (instance or class).
	ResolveField(target interface{}, name string) (Field, error)

	// Classify tells call sites whether name denotes a class, a package, or
	// is simply unknown to this resolver, in the given import scope.
	Classify(viewResolve func(bare string) (string, bool), name string) Member

	// Signatures lists the constructors/methods of fqn (or of an instance's
	// dynamic type) for the help/dir commands.
	Signatures(target interface{}) ([]Signature, error)
}

// Invocable is a resolved, ready-to-call constructor or method.
type Invocable interface {
	Invoke() (interface{}, error)
}

// Field is a resolved, ready-to-access field.
type Field interface {
	Get() (interface{}, error)
	Set(value codec.Value) error
}
