// Package registry implements the object registry (C2): a concurrent
// id -> live object map over sync.Map with monotonic id issuance from an
// atomic counter, keyed by the gateway's id scheme.
package registry

import (
	"strconv"
	"sync"
	"sync/atomic"
)

// InstancePrefix marks an instance id ("o0", "o1", ...).
const InstancePrefix = "o"

// StaticPrefix marks a static (class-reference) id; static ids are never
// bound in the registry, they are resolved on demand by the reflection
// resolver from the class name that follows the prefix.
const StaticPrefix = "z:"

// EntryPoint and DefaultView are the two well-known ids installed at
// startup when present (§3).
const (
	EntryPoint  = "t"
	DefaultView = "j"
)

// Registry maps object ids to live host objects.
type Registry struct {
	next atomic.Int64
	m    sync.Map // string -> any
}

// New returns an empty Registry with id issuance starting at 0.
func New() *Registry {
	return &Registry{}
}

// IsStatic reports whether id names a class reference rather than a bound
// instance.
func IsStatic(id string) bool {
	return len(id) >= len(StaticPrefix) && id[:len(StaticPrefix)] == StaticPrefix
}

// ClassName strips the static marker from a static id.
func ClassName(id string) string {
	return id[len(StaticPrefix):]
}

// PutNew allocates the next id, binds obj under it, and returns the id.
// Id issuance is strictly monotonic and ids are never reused (§3 invariant).
func (r *Registry) PutNew(obj interface{}) string {
	n := r.next.Add(1) - 1
	id := InstancePrefix + strconv.FormatInt(n, 10)
	r.m.Store(id, obj)
	return id
}

// Put binds obj under the given id, returning the previous binding if any.
func (r *Registry) Put(id string, obj interface{}) (prev interface{}, had bool) {
	old, loaded := r.m.Swap(id, obj)
	if !loaded {
		return nil, false
	}
	return old, true
}

// Get looks up id. A static id always misses (it is never registered).
func (r *Registry) Get(id string) (interface{}, bool) {
	if IsStatic(id) {
		return nil, false
	}
	return r.m.Load(id)
}

// Delete removes id if present; deleting an unknown id is a silent no-op.
func (r *Registry) Delete(id string) {
	r.m.Delete(id)
}

// Clear drops every binding, as happens on gateway shutdown.
func (r *Registry) Clear() {
	r.m.Range(func(k, _ interface{}) bool {
		r.m.Delete(k)
		return true
	})
}

// Walk calls fn for every (id, obj) pair currently bound. fn returning false
// stops the walk early. Walk has sync.Map.Range semantics: it is not a
// point-in-time snapshot, and concurrent mutation may or may not be observed
// for a given key.
func (r *Registry) Walk(fn func(id string, obj interface{}) bool) {
	r.m.Range(func(k, v interface{}) bool {
		return fn(k.(string), v)
	})
}

// Len returns a snapshot count of bound ids; it is O(n) and intended for
// diagnostics/metrics, not hot paths.
func (r *Registry) Len() int {
	n := 0
	r.Walk(func(string, interface{}) bool {
		n++
		return true
	})
	return n
}
