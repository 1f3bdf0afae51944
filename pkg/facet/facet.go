package facet

import "sync"

// Facet is a value cell terminating remotely owned state. The backend
// channel writes into it; selectors and UI bindings read from it.
//
// A cell never compares values: every Set advances the version counter and
// notifies subscribers, even when the same value object is written back
// after in-place mutation. That keeps the sanctioned
// "mutate in place, then signal" fast path observable.
type Facet[T any] struct {
	id   uint64
	subs subscriberSet

	mu       sync.RWMutex
	value    T
	hasValue bool
	version  uint64
}

// NewFacet creates a cell seeded with an initial value. The initial value
// is served until the backend performs its first write.
func NewFacet[T any](initial T) *Facet[T] {
	return &Facet[T]{
		id:       nextID(),
		value:    initial,
		hasValue: true,
		version:  1,
	}
}

// NewEmptyFacet creates a cell with no value. Read reports ErrNotReady
// until the first Set.
func NewEmptyFacet[T any]() *Facet[T] {
	return &Facet[T]{id: nextID()}
}

// Read returns the current value, or ErrNotReady if nothing was ever
// written or seeded.
func (f *Facet[T]) Read() (T, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.hasValue {
		var zero T
		return zero, ErrNotReady
	}
	return f.value, nil
}

// Set stores the next value, advances the version, and synchronously
// notifies every direct subscriber. Subscribed selectors only mark
// themselves dirty; recomputation is deferred to their next Read.
func (f *Facet[T]) Set(next T) {
	f.mu.Lock()
	f.value = next
	f.hasValue = true
	f.version++
	f.mu.Unlock()

	f.subs.notify()
}

// seed stores a value only if the cell is still unset. Used by idempotent
// registry definitions: an existing value is authoritative.
func (f *Facet[T]) seed(initial T) {
	f.mu.Lock()
	if f.hasValue {
		f.mu.Unlock()
		return
	}
	f.value = initial
	f.hasValue = true
	f.version++
	f.mu.Unlock()

	f.subs.notify()
}

// Version reports the cell's change counter. It is 0 while the cell is
// unset and strictly increases with every write.
func (f *Facet[T]) Version() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.version
}

// Subscribe attaches a listener notified after every write.
func (f *Facet[T]) Subscribe(l Listener) { f.subs.add(l) }

// Unsubscribe detaches a listener.
func (f *Facet[T]) Unsubscribe(l Listener) { f.subs.remove(l) }

// ID returns the unique identifier for this node.
func (f *Facet[T]) ID() uint64 { return f.id }

func (f *Facet[T]) readAny() (any, error) {
	v, err := f.Read()
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (f *Facet[T]) upstream() []Source { return nil }

var _ Node[int] = (*Facet[int])(nil)
