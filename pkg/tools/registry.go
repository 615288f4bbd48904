package tools

import (
	"sort"

	"github.com/pkg/errors"
)

// Registry is a read-only name-to-tool mapping built once per run and
// injected into the orchestrator. Build it fully before handing it out;
// there is no registration after construction and no global instance.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry builds a registry from the given tools. Duplicate names
// are rejected.
func NewRegistry(ts ...Tool) (*Registry, error) {
	m := make(map[string]Tool, len(ts))
	for _, t := range ts {
		if t == nil {
			continue
		}
		name := t.Name()
		if name == "" {
			return nil, errors.New("tool with empty name")
		}
		if _, exists := m[name]; exists {
			return nil, errors.Errorf("duplicate tool name: %s", name)
		}
		m[name] = t
	}
	return &Registry{tools: m}, nil
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Has reports whether a tool is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// List returns all tools sorted by name.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	return len(r.tools)
}
