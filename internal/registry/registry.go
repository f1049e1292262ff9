// Package registry holds the static tool catalog advertised to clients.
//
// A Registry is built once from a fixed list of descriptors and is read-only
// afterwards, so it needs no locking. Handlers are not stored here: the
// dispatcher pairs names with handlers, and a descriptor without a handler
// only fails when it is called.
package registry

import (
	"errors"
	"fmt"

	"github.com/jpl-au/hubtools/internal/tool"
)

var (
	// ErrDuplicateTool is returned when two descriptors share a name.
	ErrDuplicateTool = errors.New("duplicate tool")
	// ErrEmptyName is returned for a descriptor without a name.
	ErrEmptyName = errors.New("tool name is empty")
)

// Registry is an ordered, immutable set of tool descriptors.
type Registry struct {
	order []tool.Descriptor
	index map[string]int
}

// New builds a registry, preserving the given order.
func New(descs ...tool.Descriptor) (*Registry, error) {
	r := &Registry{
		order: make([]tool.Descriptor, 0, len(descs)),
		index: make(map[string]int, len(descs)),
	}
	for _, d := range descs {
		if d.Name == "" {
			return nil, ErrEmptyName
		}
		if _, exists := r.index[d.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, d.Name)
		}
		r.index[d.Name] = len(r.order)
		r.order = append(r.order, d)
	}
	return r, nil
}

// MustNew is like New but panics on error. For catalogs fixed at compile time.
func MustNew(descs ...tool.Descriptor) *Registry {
	r, err := New(descs...)
	if err != nil {
		panic("registry: " + err.Error())
	}
	return r
}

// List returns the descriptors in registration order. The slice is a copy.
func (r *Registry) List() []tool.Descriptor {
	out := make([]tool.Descriptor, len(r.order))
	copy(out, r.order)
	return out
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (tool.Descriptor, bool) {
	i, ok := r.index[name]
	if !ok {
		return tool.Descriptor{}, false
	}
	return r.order[i], true
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	for i, d := range r.order {
		names[i] = d.Name
	}
	return names
}

// Position returns the registration index of name, or -1.
func (r *Registry) Position(name string) int {
	if i, ok := r.index[name]; ok {
		return i
	}
	return -1
}

// Len returns the number of tools.
func (r *Registry) Len() int { return len(r.order) }
