package postprocessors

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// BuilderFunc creates a PostProcessor from an option bag such as
// domain.ChunkOptions.Config() or a [chunker] table from config.toml.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry maps processor names to builders. It is safe for concurrent use;
// the index service builds a fresh chunker for every reindex.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]BuilderFunc
}

var _ driven.PostProcessorFactory = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]BuilderFunc)}
}

// Register adds a builder under name, replacing any previous one.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[name] = builder
}

// Build creates the processor registered under name.
// Unknown names wrap domain.ErrUnsupportedType.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	r.mu.RLock()
	builder, ok := r.builders[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: post-processor %q", domain.ErrUnsupportedType, name)
	}

	p, err := builder(cfg)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	return p, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builders[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
