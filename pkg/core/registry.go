package core

import "fmt"

// Registry maps module names to modules and remembers insertion order.
//
// The indexer fills one registry in declaration order; the inliner fills a
// second one in inline order. Neither is safe for concurrent writers.
type Registry struct {
	order []string
	mods  map[string]*Module
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{mods: make(map[string]*Module)}
}

// Add appends m. Adding a name twice is an error.
func (r *Registry) Add(m *Module) error {
	if prev, ok := r.mods[m.Name]; ok {
		return fmt.Errorf("%w: %s (first defined in %s)", ErrDuplicateModule, m.Name, displayFile(prev.File))
	}
	r.mods[m.Name] = m
	r.order = append(r.order, m.Name)
	return nil
}

// Get returns the module with the given name.
func (r *Registry) Get(name string) (*Module, bool) {
	m, ok := r.mods[name]
	return m, ok
}

// Has reports whether a module with the given name exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.mods[name]
	return ok
}

// Len returns the number of modules.
func (r *Registry) Len() int {
	return len(r.order)
}

// Names returns module names in insertion order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Modules returns modules in insertion order.
func (r *Registry) Modules() []*Module {
	out := make([]*Module, len(r.order))
	for i, name := range r.order {
		out[i] = r.mods[name]
	}
	return out
}

// Lookup returns the named modules in the given order, failing with
// ErrUnknownModule on the first name that is not registered.
func (r *Registry) Lookup(names ...string) ([]*Module, error) {
	out := make([]*Module, 0, len(names))
	for _, name := range names {
		m, ok := r.mods[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownModule, name)
		}
		out = append(out, m)
	}
	return out, nil
}

func displayFile(file string) string {
	if file == "" {
		return "<input>"
	}
	return file
}
