package format

import (
	"slices"
	"sync"
)

// Factory builds a fresh strategy for one export.
type Factory func() Strategy

// Settings groups the per-format options used by DefaultRegistry.
type Settings struct {
	CSV  CSVOptions  `yaml:"csv" json:"csv"`
	JSON JSONOptions `yaml:"json" json:"json"`
	XML  XMLOptions  `yaml:"xml" json:"xml"`
}

// Registry maps format identifiers to strategy factories. Lookups build a
// new strategy every time so concurrent exports never share state.
type Registry struct {
	mu        sync.RWMutex
	factories map[Format]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Format]Factory)}
}

// DefaultRegistry returns a registry with the CSV, JSON and XML strategies
// configured from s.
func DefaultRegistry(s Settings) *Registry {
	r := NewRegistry()
	r.Register(CSV, func() Strategy { return NewCSV(s.CSV) })
	r.Register(JSON, func() Strategy { return NewJSON(s.JSON) })
	r.Register(XML, func() Strategy { return NewXML(s.XML) })
	return r
}

// Register adds or replaces the factory for f.
func (r *Registry) Register(f Format, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[Normalize(string(f))] = fn
}

// Strategy returns a new strategy for f. The lookup is case-insensitive.
func (r *Registry) Strategy(f Format) (Strategy, error) {
	r.mu.RLock()
	fn, ok := r.factories[Normalize(string(f))]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnsupportedFormatError{Format: string(f), Supported: r.Formats()}
	}
	return fn(), nil
}

// Has reports whether a strategy is registered for f.
func (r *Registry) Has(f Format) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[Normalize(string(f))]
	return ok
}

// Formats returns the registered formats in sorted order.
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Format, 0, len(r.factories))
	for f := range r.factories {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}
