// Package view implements the named import scope (jvmview): a view records
// package-prefix and single-class imports, used to resolve a bare class name
// to a fully qualified one in insertion order.
package view

import "sync"

// DefaultName is the view that is always present (DEFAULT_JVM_VIEW).
const DefaultName = "default"

// View is a named, mutable import scope.
type View struct {
	mu       sync.RWMutex
	name     string
	classes  []string // single-class imports, e.g. "java.util.ArrayList"
	packages []string // wildcard package imports, e.g. "java.util"
}

// New returns an empty view with the given name.
func New(name string) *View {
	return &View{name: name}
}

func (v *View) Name() string {
	return v.name
}

// ImportClass records a single fully qualified class import.
func (v *View) ImportClass(fqn string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, c := range v.classes {
		if c == fqn {
			return
		}
	}
	v.classes = append(v.classes, fqn)
}

// ImportPackage records a wildcard package import (e.g. "java.util.*" minus
// the trailing ".*").
func (v *View) ImportPackage(pkg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, p := range v.packages {
		if p == pkg {
			return
		}
	}
	v.packages = append(v.packages, pkg)
}

// RemoveImport undoes a previous ImportClass or ImportPackage for the given
// name, whichever matches; it is a no-op if name was never imported.
func (v *View) RemoveImport(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.classes = removeString(v.classes, name)
	v.packages = removeString(v.packages, name)
}

func removeString(s []string, target string) []string {
	out := s[:0]
	for _, e := range s {
		if e != target {
			out = append(out, e)
		}
	}
	return out
}

// Resolve returns the fully qualified class name for a bare name, trying
// single-class imports first, then package imports, both in insertion order.
// A name already containing a "." is returned unchanged (it's already
// qualified).
func (v *View) Resolve(name string) (string, bool) {
	if containsDot(name) {
		return name, true
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	for _, c := range v.classes {
		if classSimpleName(c) == name {
			return c, true
		}
	}
	for _, p := range v.packages {
		return p + "." + name, true
	}
	return "", false
}

func containsDot(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return true
		}
	}
	return false
}

func classSimpleName(fqn string) string {
	last := 0
	for i := 0; i < len(fqn); i++ {
		if fqn[i] == '.' {
			last = i + 1
		}
	}
	return fqn[last:]
}

// Table owns the set of named views, including the always-present default.
type Table struct {
	mu sync.RWMutex
	m  map[string]*View
}

// NewTable returns a Table pre-populated with the default view.
func NewTable() *Table {
	t := &Table{m: map[string]*View{}}
	t.m[DefaultName] = New(DefaultName)
	return t
}

// Create allocates a new, empty view under name, replacing any existing view
// of the same name.
func (t *Table) Create(name string) *View {
	t.mu.Lock()
	defer t.mu.Unlock()
	v := New(name)
	t.m[name] = v
	return v
}

// Get returns the view named name, if any.
func (t *Table) Get(name string) (*View, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.m[name]
	return v, ok
}

// Default returns the always-present default view.
func (t *Table) Default() *View {
	v, _ := t.Get(DefaultName)
	return v
}

// Destroy drops a non-default view; destroying the default view or an
// unknown name is a no-op.
func (t *Table) Destroy(name string) {
	if name == DefaultName {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.m, name)
}
