package evaluator

import (
	"sync"
)

// variable is one declaration record in a namespace.
type variable struct {
	value   Object
	mutable bool
	inited  bool
}

// Namespace is a scope: a map from identifier to declaration record plus an
// optional enclosing (lexical parent) namespace and a fully qualified name.
// Globals are the root namespace; blocks, function activations, classes and
// instances are all namespaces.
type Namespace struct {
	mu    sync.RWMutex
	name  string
	store map[string]*variable
	outer *Namespace
}

func NewNamespace(name string) *Namespace {
	return &Namespace{name: name, store: make(map[string]*variable)}
}

func NewEnclosedNamespace(name string, outer *Namespace) *Namespace {
	ns := NewNamespace(name)
	ns.outer = outer
	return ns
}

// FullName returns the dot-joined qualified name of this namespace.
func (ns *Namespace) FullName() string {
	if ns.outer == nil || ns.outer.name == "" {
		return ns.name
	}
	return ns.outer.FullName() + "." + ns.name
}

func (ns *Namespace) Outer() *Namespace { return ns.outer }

// Define installs a declaration record, replacing any previous one with the
// same name. Duplicate declarations inside block scopes are rejected by the
// resolver before evaluation starts.
func (ns *Namespace) Define(name string, value Object, mutable, inited bool) {
	ns.mu.Lock()
	ns.store[name] = &variable{value: value, mutable: mutable, inited: inited}
	ns.mu.Unlock()
}

// GetLocal reads a name from this namespace only. An uninitialized variable
// reads as null.
func (ns *Namespace) GetLocal(name string) (Object, bool) {
	ns.mu.RLock()
	v, ok := ns.store[name]
	ns.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !v.inited || v.value == nil {
		return NULL, true
	}
	return v.value, true
}

// Get walks the enclosure chain until the name is found or the root is
// exhausted.
func (ns *Namespace) Get(name string) (Object, bool) {
	if obj, ok := ns.GetLocal(name); ok {
		return obj, true
	}
	if ns.outer != nil {
		return ns.outer.Get(name)
	}
	return nil, false
}

// GetAt walks distance enclosures outward, then looks the name up from there.
func (ns *Namespace) GetAt(distance int, name string) (Object, bool) {
	target := ns
	for i := 0; i < distance && target != nil; i++ {
		target = target.outer
	}
	if target == nil {
		return nil, false
	}
	return target.Get(name)
}

// AssignLocal writes to a name declared in this namespace. Writing to an
// immutable variable that already holds its value fails.
func (ns *Namespace) AssignLocal(name string, value Object) (bool, *Error) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	v, ok := ns.store[name]
	if !ok {
		return false, nil
	}
	if !v.mutable && v.inited {
		return true, newError("cannot assign to immutable variable '%s'", name)
	}
	v.value = value
	v.inited = true
	return true, nil
}

// Assign walks the enclosure chain and writes where the name is declared.
func (ns *Namespace) Assign(name string, value Object) (bool, *Error) {
	found, err := ns.AssignLocal(name, value)
	if found || err != nil {
		return found, err
	}
	if ns.outer != nil {
		return ns.outer.Assign(name, value)
	}
	return false, nil
}

// AssignAt walks distance enclosures outward, then assigns from there.
func (ns *Namespace) AssignAt(distance int, name string, value Object) (bool, *Error) {
	target := ns
	for i := 0; i < distance && target != nil; i++ {
		target = target.outer
	}
	if target == nil {
		return false, nil
	}
	return target.Assign(name, value)
}

// Names returns the identifiers declared directly in this namespace.
func (ns *Namespace) Names() []string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	names := make([]string, 0, len(ns.store))
	for name := range ns.store {
		names = append(names, name)
	}
	return names
}
