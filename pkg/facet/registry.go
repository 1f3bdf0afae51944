package facet

import (
	"log/slog"
	"sort"
	"sync"
)

// Registry maps string identifiers to value cells. It is the ingestion
// entry point for the backend channel and the place UI code looks facets
// up by name. Identifiers are flat strings agreed out-of-band with the
// backend; the observed convention is dot-separated hierarchical names
// such as "data.user".
//
// Registries are explicit objects, not ambient globals: tests and embedded
// hosts create isolated instances without cross-contamination.
//
// Cell values are untyped because the backend pushes dynamic, serialized
// state; locally owned typed state belongs in a standalone NewFacet, not
// in a registry.
type Registry struct {
	mu     sync.RWMutex
	cells  map[string]*Facet[any]
	logger *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for ingestion diagnostics.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		cells:  make(map[string]*Facet[any]),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Define registers the cell for name seeded with initial, or returns the
// existing cell. Definition is idempotent, not a reset: a cell that already
// holds a value keeps it, and a previously declared-but-unset cell adopts
// the initial value until the backend's first write.
func (r *Registry) Define(name string, initial any) *Facet[any] {
	r.mu.Lock()
	cell, ok := r.cells[name]
	if !ok {
		cell = NewEmptyFacet[any]()
		r.cells[name] = cell
	}
	r.mu.Unlock()

	cell.seed(initial)
	return cell
}

// Declare registers the cell for name without a value, creating it lazily
// on first reference. Read on the returned cell reports ErrNotReady until
// a definition seeds it or the backend writes it.
func (r *Registry) Declare(name string) *Facet[any] {
	r.mu.Lock()
	defer r.mu.Unlock()

	cell, ok := r.cells[name]
	if !ok {
		cell = NewEmptyFacet[any]()
		r.cells[name] = cell
	}
	return cell
}

// Facet looks up the cell for name without creating it.
func (r *Registry) Facet(name string) (*Facet[any], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cell, ok := r.cells[name]
	return cell, ok
}

// Write stores next into the named cell, advances its version, and
// synchronously notifies subscribers. A write to an identifier that was
// never referenced is a silent no-op: backends may push updates before the
// consuming side has mounted the corresponding definition, and late
// registration simply picks up the next push. Returns whether the write
// was applied.
func (r *Registry) Write(name string, next any) bool {
	r.mu.RLock()
	cell, ok := r.cells[name]
	r.mu.RUnlock()

	if !ok {
		r.logger.Debug("dropping write to unknown facet", "facet", name)
		return false
	}

	cell.Set(next)
	return true
}

// Names returns the sorted identifiers of all referenced cells.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.cells))
	for name := range r.cells {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Len reports the number of referenced cells.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cells)
}
