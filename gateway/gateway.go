// Package gateway implements the command dispatcher and its command
// handlers (C4/C5): it owns the object registry and view table, consults a
// pluggable reflection resolver for constructors/methods/fields, and
// classifies every returned host value through the classify package before
// handing a codec.ReturnObject back to the caller.
package gateway

import (
	"context"
	"fmt"

	"github.com/mucharafal/py4j/classify"
	"github.com/mucharafal/py4j/codec"
	"github.com/mucharafal/py4j/liberr"
	"github.com/mucharafal/py4j/logger"
	"github.com/mucharafal/py4j/metrics"
	"github.com/mucharafal/py4j/registry"
	"github.com/mucharafal/py4j/resolve"
	"github.com/mucharafal/py4j/view"
)

// Gateway is the host-side façade: registry, views, and reflection bound
// together behind the command table.
type Gateway struct {
	reg      *registry.Registry
	views    *view.Table
	resolver resolve.Resolver
	log      logger.Logger
	metrics  *metrics.Metrics

	strictUnknown bool
	entryPoint    interface{}
}

// Option configures a Gateway at construction time.
type Option func(*Gateway)

// WithLogger overrides the default discarding logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

// WithResolver installs the reflection resolver used by call/constructor/
// field/reflection handlers. A Gateway with no resolver fails call,
// constructor, field, help and dir with ReflectionError, and answers
// reflection.getUnknown with UNKNOWN.
func WithResolver(r resolve.Resolver) Option {
	return func(g *Gateway) { g.resolver = r }
}

// WithStrictUnknownCommand makes the dispatcher reply with a protocol-error
// envelope for an unrecognized command name instead of silently logging and
// not responding (§9 resolved open question).
func WithStrictUnknownCommand(strict bool) Option {
	return func(g *Gateway) { g.strictUnknown = strict }
}

// WithMetrics wires m so every dispatched command updates the dispatched/
// error counters and the registry-size gauge (A6). A Gateway with no
// metrics installed simply skips these observations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// observeRegistrySize refreshes the registry-size gauge, if metrics are
// configured. Called after every operation that binds or releases an id.
func (g *Gateway) observeRegistrySize() {
	if g.metrics != nil {
		g.metrics.RegistrySize.Set(float64(g.reg.Len()))
	}
}

// New returns a Gateway. entryPoint, if non-nil, is bound under
// registry.EntryPoint once Startup runs.
func New(entryPoint interface{}, opts ...Option) *Gateway {
	g := &Gateway{
		reg:        registry.New(),
		views:      view.NewTable(),
		log:        logger.Discard(),
		entryPoint: entryPoint,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Startup installs the well-known ids (§3): ENTRY_POINT and DEFAULT_JVM_VIEW.
func (g *Gateway) Startup(ctx context.Context) error {
	if g.entryPoint != nil {
		g.reg.Put(registry.EntryPoint, g.entryPoint)
	}
	g.reg.Put(registry.DefaultView, g.views.Default())
	g.log.Info("gateway started")
	return nil
}

// Shutdown clears the registry (the view table is left as it is); in-flight
// commands referencing ids afterward fail with UnknownObject, per §3.
func (g *Gateway) Shutdown() error {
	g.reg.Clear()
	g.log.Info("gateway shut down")
	return nil
}

// PutNewObject binds obj under a freshly issued id.
func (g *Gateway) PutNewObject(obj interface{}) string {
	id := g.reg.PutNew(obj)
	g.observeRegistrySize()
	return id
}

// GetObject looks up id.
func (g *Gateway) GetObject(id string) (interface{}, bool) {
	return g.reg.Get(id)
}

// DeleteObject releases id; unknown ids are a silent no-op (§3).
func (g *Gateway) DeleteObject(id string) {
	g.reg.Delete(id)
	g.observeRegistrySize()
}

// Invoke resolves and calls methodName on targetID, classifying the result.
// It is the embedding-API shortcut for what the "call" command does over
// the wire.
func (g *Gateway) Invoke(methodName, targetID string, args ...codec.Value) codec.ReturnObject {
	return g.invoke(targetID, methodName, args)
}

// InvokeConstructor resolves and calls the best-matching constructor of fqn.
func (g *Gateway) InvokeConstructor(fqn string, args ...codec.Value) codec.ReturnObject {
	return g.construct(fqn, args)
}

// resolveTarget turns a wire id into the value the resolver should dispatch
// against: a live bound object for an instance id, or the bare class name
// for a static id.
func (g *Gateway) resolveTarget(id string) (interface{}, codec.ReturnObject, bool) {
	if registry.IsStatic(id) {
		return registry.ClassName(id), codec.ReturnObject{}, true
	}
	obj, ok := g.reg.Get(id)
	if !ok {
		return nil, codec.NoSuchObjectError(), false
	}
	return obj, codec.ReturnObject{}, true
}

func (g *Gateway) invoke(targetID, methodName string, args []codec.Value) codec.ReturnObject {
	target, errEnv, ok := g.resolveTarget(targetID)
	if !ok {
		return errEnv
	}
	return g.invokeOn(target, methodName, args)
}

func (g *Gateway) invokeOn(target interface{}, methodName string, args []codec.Value) (ro codec.ReturnObject) {
	if g.resolver == nil {
		return g.exceptionEnvelope(liberr.New(liberr.ReflectionError, "no resolver configured", nil))
	}

	defer func() {
		if r := recover(); r != nil {
			ro = g.exceptionEnvelope(liberr.New(liberr.InvocationError, fmt.Sprintf("panic: %v", r), nil))
		}
	}()

	inv, err := g.resolver.ResolveMethod(target, methodName, args)
	if err != nil {
		return g.exceptionEnvelope(liberr.Wrap(liberr.ReflectionError, err))
	}
	result, err := inv.Invoke()
	if err != nil {
		return g.exceptionEnvelope(liberr.Wrap(liberr.InvocationError, err))
	}
	ro = classify.Classify(g.reg, result)
	g.observeRegistrySize()
	return ro
}

func (g *Gateway) construct(fqn string, args []codec.Value) (ro codec.ReturnObject) {
	if g.resolver == nil {
		return g.exceptionEnvelope(liberr.New(liberr.ReflectionError, "no resolver configured", nil))
	}

	defer func() {
		if r := recover(); r != nil {
			ro = g.exceptionEnvelope(liberr.New(liberr.InvocationError, fmt.Sprintf("panic: %v", r), nil))
		}
	}()

	inv, err := g.resolver.ResolveConstructor(fqn, args)
	if err != nil {
		return g.exceptionEnvelope(liberr.Wrap(liberr.ReflectionError, err))
	}
	result, err := inv.Invoke()
	if err != nil {
		return g.exceptionEnvelope(liberr.Wrap(liberr.InvocationError, err))
	}
	ro = classify.Classify(g.reg, result)
	g.observeRegistrySize()
	return ro
}

// exceptionEnvelope binds err (a liberr.Error, so the peer can later recover
// its code/message/trace) in the registry and returns the matching error
// ReturnObject, per the "bind any throwable first" propagation policy (§7).
func (g *Gateway) exceptionEnvelope(err error) codec.ReturnObject {
	id := g.reg.PutNew(err)
	g.observeRegistrySize()
	return codec.ExceptionError(id)
}
