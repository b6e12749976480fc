package pipeline

import "maps"

// Registry is the shared name→value argument store for one run. Values are
// seeded from the initial arguments and updated by each step's public
// returns; entries are never removed, and a later write silently replaces an
// earlier value of the same name.
type Registry struct {
	values map[string]any
}

// NewRegistry seeds a registry with a copy of initial.
func NewRegistry(initial map[string]any) *Registry {
	values := make(map[string]any, len(initial))
	maps.Copy(values, initial)
	return &Registry{values: values}
}

// Get looks up a named argument.
func (r *Registry) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Set stores a named argument, overwriting any existing value.
func (r *Registry) Set(name string, value any) {
	r.values[name] = value
}

// Len reports the number of stored arguments.
func (r *Registry) Len() int { return len(r.values) }
