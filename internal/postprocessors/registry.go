// Package postprocessors builds the text processors used by the indexing pipeline.
package postprocessors

import (
	"fmt"
	"maps"
	"slices"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
)

// BuilderFunc creates a processor from flattened config values, as read
// from settings or a TOML table.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

type entry struct {
	build BuilderFunc
	keys  []string
}

// Registry maps processor names to their builders.
type Registry struct {
	entries map[string]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a builder under name. keys lists the config keys the
// builder understands; Build rejects any other key. A later registration
// with the same name wins.
func (r *Registry) Register(name string, build BuilderFunc, keys ...string) {
	r.entries[name] = entry{build: build, keys: keys}
}

// Build creates the named processor. Unknown names and unknown config keys
// fail with domain.ErrInvalidConfiguration.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown processor %q", domain.ErrInvalidConfiguration, name)
	}
	for k := range cfg {
		if !slices.Contains(e.keys, k) {
			return nil, fmt.Errorf("%w: processor %q has no setting %q", domain.ErrInvalidConfiguration, name, k)
		}
	}
	return e.build(cfg)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.entries))
}
