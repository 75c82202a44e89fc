package storage

import (
	"maps"
	"slices"
)

// Registry maps backend names to adapters.
type Registry struct {
	adapters map[string]Adapter
}

// builtins is the built-in registry. It is only ever copied, never handed out.
var builtins = map[string]Adapter{
	LocalStorage:   itemAdapter{},
	SessionStorage: itemAdapter{},
	Cookie:         cookieAdapter{path: "/"},
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

// DefaultRegistry returns a fresh copy of the built-in registry.
func DefaultRegistry() *Registry {
	return &Registry{adapters: maps.Clone(builtins)}
}

// Register adds or replaces the adapter for name.
func (r *Registry) Register(name string, adapter Adapter) {
	if r.adapters == nil {
		r.adapters = make(map[string]Adapter)
	}
	r.adapters[name] = adapter
}

// Adapter returns the adapter registered under name.
func (r *Registry) Adapter(name string) (Adapter, bool) {
	if r == nil {
		return nil, false
	}
	a, ok := r.adapters[name]
	return a, ok
}

// Names returns the registered backend names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.adapters))
}

// Len returns the number of registered backends.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.adapters)
}

// Clone returns a copy of r. Adapters are stateless values, so copying the
// mapping is a deep copy.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return NewRegistry()
	}
	return &Registry{adapters: maps.Clone(r.adapters)}
}

// BuildAdapter returns a one-entry registry fragment for a caller-defined backend.
func BuildAdapter(name string, set SetFunc, get GetFunc, remove RemoveFunc) *Registry {
	r := NewRegistry()
	r.Register(name, AdapterFuncs{Set: set, Get: get, Remove: remove})
	return r
}

// MergeRegistry returns a new registry holding base's entries overlaid with
// fragment's. Neither input is modified. A nil base stands for the built-in
// registry.
func MergeRegistry(base, fragment *Registry) *Registry {
	var merged *Registry
	if base == nil {
		merged = DefaultRegistry()
	} else {
		merged = base.Clone()
	}
	if fragment != nil {
		for name, a := range fragment.Clone().adapters {
			merged.Register(name, a)
		}
	}
	return merged
}
