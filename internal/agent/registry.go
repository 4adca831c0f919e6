package agent

import (
	"fmt"
	"sort"
)

// Registry is a statically constructed map of capability name to
// Capability, built once at process start and injected into the
// orchestrator. It is immutable after construction, which keeps the set of
// available capabilities visible at a single call site and safe for
// concurrent reads without locking.
type Registry struct {
	caps map[string]Capability
}

// NewRegistry builds a registry from the given capabilities.
// Duplicate names are a programming error.
func NewRegistry(caps ...Capability) (*Registry, error) {
	m := make(map[string]Capability, len(caps))
	for _, c := range caps {
		if c == nil {
			return nil, fmt.Errorf("nil capability")
		}
		if _, exists := m[c.Name()]; exists {
			return nil, fmt.Errorf("duplicate capability %q", c.Name())
		}
		m[c.Name()] = c
	}
	return &Registry{caps: m}, nil
}

// Get returns the capability registered under name.
func (r *Registry) Get(name string) (Capability, bool) {
	c, ok := r.caps[name]
	return c, ok
}

// Names returns all registered capability names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.caps))
	for name := range r.caps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered capabilities.
func (r *Registry) Len() int {
	return len(r.caps)
}
