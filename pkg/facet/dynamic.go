package facet

import (
	"fmt"
	"sync"
)

// Factory builds the dependency list and derive function for one argument
// of a dynamic selector. It runs once per distinct argument; the derive
// function it returns typically closes over the argument.
type Factory[K comparable, T any] func(arg K) (deps []Source, derive DeriveFunc[T])

// Dynamic caches one selector instance per argument, giving parameterized
// derivations a stable identity: two calls with equal arguments return the
// identical node, so subscriptions attach to one place.
//
// Argument normalization is Go map key equality over a comparable type.
// Composite arguments must be pre-normalized by the caller into a
// comparable key (for example a formatted string); the cache never does
// structural normalization itself.
//
// Entries live until explicitly disposed. For high-cardinality arguments
// (indices into an ever-growing list) the caller owns eviction via Dispose.
type Dynamic[K comparable, T any] struct {
	factory Factory[K, T]
	equal   func(T, T) bool
	initial *T

	mu        sync.Mutex
	instances map[K]*Selector[T]
	building  map[buildKey[K]]bool
}

// buildKey identifies one in-flight factory call. The goroutine ID is part
// of the key so only same-goroutine re-entrancy reads as a cycle; separate
// goroutines may build the same argument concurrently and converge on the
// first stored instance.
type buildKey[K comparable] struct {
	arg K
	gid uint64
}

// NewDynamic creates a dynamic selector cache around factory.
func NewDynamic[K comparable, T any](factory Factory[K, T]) *Dynamic[K, T] {
	return &Dynamic[K, T]{
		factory:   factory,
		instances: make(map[K]*Selector[T]),
		building:  make(map[buildKey[K]]bool),
	}
}

// WithEquals configures the equality predicate applied to every instance,
// independently per argument. Configure before the first For call.
func (d *Dynamic[K, T]) WithEquals(fn func(T, T) bool) *Dynamic[K, T] {
	d.equal = fn
	return d
}

// WithInitial configures the fallback value applied to every instance.
// Configure before the first For call.
func (d *Dynamic[K, T]) WithInitial(v T) *Dynamic[K, T] {
	d.initial = &v
	return d
}

// For returns the selector instance for arg, constructing it on first use.
// Repeated calls with an equal argument return the same instance without
// re-invoking the factory.
//
// A factory that, for the same argument, reaches back into this cache
// would loop forever at construction; that re-entrancy panics wrapping
// ErrCyclicDependency instead.
func (d *Dynamic[K, T]) For(arg K) *Selector[T] {
	bk := buildKey[K]{arg: arg, gid: goroutineID()}

	d.mu.Lock()
	if node, ok := d.instances[arg]; ok {
		d.mu.Unlock()
		return node
	}
	if d.building[bk] {
		d.mu.Unlock()
		panic(fmt.Errorf("facet: dynamic selector for argument %v depends on itself: %w", arg, ErrCyclicDependency))
	}
	d.building[bk] = true
	d.mu.Unlock()

	// Cleared even when the factory panics, so a recovered failure does not
	// poison the key for later calls.
	defer func() {
		d.mu.Lock()
		delete(d.building, bk)
		d.mu.Unlock()
	}()

	// The factory may call For with other arguments, so it runs unlocked.
	deps, derive := d.factory(arg)
	node := NewSelector(deps, derive)
	if d.equal != nil {
		node.WithEquals(d.equal)
	}
	if d.initial != nil {
		node.WithInitial(*d.initial)
	}

	d.mu.Lock()
	if existing, ok := d.instances[arg]; ok {
		// Lost a construction race; the first stored instance wins so
		// identities stay stable.
		d.mu.Unlock()
		node.detach()
		return existing
	}
	d.instances[arg] = node
	d.mu.Unlock()
	return node
}

// Dispose evicts the instance for arg, detaching it from its dependencies.
// Holders of the old node keep a working but no longer cached selector;
// the next For(arg) builds a fresh instance.
func (d *Dynamic[K, T]) Dispose(arg K) {
	d.mu.Lock()
	node, ok := d.instances[arg]
	if ok {
		delete(d.instances, arg)
	}
	d.mu.Unlock()

	if ok {
		node.detach()
	}
}

// Len reports the number of cached instances.
func (d *Dynamic[K, T]) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.instances)
}
