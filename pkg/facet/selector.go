package facet

import (
	"errors"
	"sync"
)

// DeriveFunc computes a selector value from its dependency values, passed
// in the exact order the dependencies were given at construction. It must
// be a pure function of its inputs. A returned error (or a panic) surfaces
// to the caller of Read as *DerivationFault.
type DeriveFunc[T any] func(vals []any) (T, error)

// Selector is a lazy, memoized derivation over an ordered dependency list.
//
// The cached value is valid exactly while the recorded version of every
// dependency matches its current version; any mismatch forces a full
// recompute on the next Read. A selector subscribed to its dependencies
// forwards their notifications to its own subscribers without recomputing,
// so an unread selector costs nothing no matter how often upstream churns.
type Selector[T any] struct {
	id   uint64
	subs subscriberSet

	deps   []Source
	derive DeriveFunc[T]

	mu          sync.Mutex
	cached      T
	hasCached   bool
	depVersions []uint64
	version     uint64
	computing   bool

	equal   func(T, T) bool
	initial *T
}

// NewSelector creates a selector over deps. The dependency list is
// validated eagerly: it panics on an empty list, a nil entry, or a cycle
// in the transitive graph (wrapping ErrCyclicDependency).
func NewSelector[T any](deps []Source, derive DeriveFunc[T]) *Selector[T] {
	assertUsableDeps(deps)

	s := &Selector[T]{
		id:     nextID(),
		deps:   append([]Source(nil), deps...),
		derive: derive,
	}
	for _, dep := range s.deps {
		dep.Subscribe(s)
	}
	return s
}

// WithEquals configures an equality predicate. When a recompute produces a
// value the predicate considers equal to the cached one, the selector keeps
// its current version, so downstream caches stay valid and no spurious
// recomputation cascades. Configure before the selector is shared.
func (s *Selector[T]) WithEquals(fn func(T, T) bool) *Selector[T] {
	s.mu.Lock()
	s.equal = fn
	s.mu.Unlock()
	return s
}

// WithInitial configures a fallback returned by Read while the dependency
// chain reports ErrNotReady. The derive function is skipped in that case.
func (s *Selector[T]) WithInitial(v T) *Selector[T] {
	s.mu.Lock()
	s.initial = &v
	s.mu.Unlock()
	return s
}

// Read returns the selector's value, recomputing only when a dependency
// version moved since the last read.
func (s *Selector[T]) Read() (T, error) {
	var zero T

	s.mu.Lock()
	if s.computing {
		s.mu.Unlock()
		return zero, &DerivationFault{Err: ErrCyclicDependency}
	}
	if s.hasCached && s.freshLocked() {
		v := s.cached
		s.mu.Unlock()
		return v, nil
	}
	s.computing = true
	initial := s.initial
	s.mu.Unlock()

	vals, versions, err := s.readDeps()
	if err != nil {
		s.mu.Lock()
		s.computing = false
		s.mu.Unlock()

		if errors.Is(err, ErrNotReady) && initial != nil {
			return *initial, nil
		}
		return zero, err
	}

	value, err := s.invoke(vals)

	s.mu.Lock()
	s.computing = false
	if err != nil {
		s.mu.Unlock()
		return zero, err
	}
	if s.hasCached && s.equal != nil && s.equal(s.cached, value) {
		// Same value in the sense that matters: refresh the vector but keep
		// the cached value and version so downstream stays settled.
		s.depVersions = versions
		v := s.cached
		s.mu.Unlock()
		return v, nil
	}
	s.cached = value
	s.hasCached = true
	s.depVersions = versions
	s.version++
	s.mu.Unlock()

	return value, nil
}

// freshLocked checks the version-vector invariant: the cache is reusable
// iff every dependency still reports the version recorded when the cache
// was filled, checked in dependency order.
func (s *Selector[T]) freshLocked() bool {
	if len(s.depVersions) != len(s.deps) {
		return false
	}
	for i, dep := range s.deps {
		if dep.Version() != s.depVersions[i] {
			return false
		}
	}
	return true
}

// readDeps reads every dependency's version and value in order. Versions
// are captured before values so a write racing the read can only make the
// recorded vector stale (forcing one extra recompute), never mask a change.
func (s *Selector[T]) readDeps() ([]any, []uint64, error) {
	vals := make([]any, len(s.deps))
	versions := make([]uint64, len(s.deps))
	for i, dep := range s.deps {
		versions[i] = dep.Version()
		v, err := dep.readAny()
		if err != nil {
			return nil, nil, err
		}
		vals[i] = v
	}
	return vals, versions, nil
}

// invoke runs the derive function, converting panics and returned errors
// into *DerivationFault.
func (s *Selector[T]) invoke(vals []any) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicFault(r)
		}
	}()

	value, deriveErr := s.derive(vals)
	if deriveErr != nil {
		var zero T
		return zero, &DerivationFault{Err: deriveErr}
	}
	return value, nil
}

// Version revalidates the cache and reports the selector's change counter.
// The counter only advances when a recompute produced a value that was not
// suppressed by the equality predicate.
func (s *Selector[T]) Version() uint64 {
	// Revalidate so the reported version matches what Read would return.
	// ErrNotReady and faults leave the counter untouched.
	_, _ = s.Read()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// MarkDirty implements Listener: a dependency changed, so anything watching
// this selector may need to re-read. No recompute happens here.
func (s *Selector[T]) MarkDirty() {
	s.subs.notify()
}

// ID returns the unique identifier for this node.
func (s *Selector[T]) ID() uint64 { return s.id }

// Subscribe attaches a listener notified whenever upstream churn may have
// changed this selector's value. Wrap the selector in NewDistinct to filter
// notifications down to actual value changes.
func (s *Selector[T]) Subscribe(l Listener) { s.subs.add(l) }

// Unsubscribe detaches a listener.
func (s *Selector[T]) Unsubscribe(l Listener) { s.subs.remove(l) }

// detach unsubscribes the selector from all dependencies. Used when a
// dynamic cache entry is disposed.
func (s *Selector[T]) detach() {
	for _, dep := range s.deps {
		dep.Unsubscribe(s)
	}
}

func (s *Selector[T]) readAny() (any, error) {
	v, err := s.Read()
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Selector[T]) upstream() []Source { return s.deps }

var (
	_ Node[int] = (*Selector[int])(nil)
	_ Listener  = (*Selector[int])(nil)
)
