package facet

import (
	"fmt"
	"reflect"
)

// Source is the type-erased view of a reactive node. It is what selectors
// accept as a dependency, so facets, selectors, and wrappers of any value
// type can feed the same derivation.
//
// The read methods are unexported: all node implementations live in this
// package, which keeps the version and notification invariants in one place.
type Source interface {
	// Version reports the monotonically increasing change counter for this
	// node's externally visible value. For derived nodes this revalidates
	// the cache first, so the reported version matches the value a
	// subsequent read would return.
	Version() uint64

	// Subscribe attaches a listener notified on every version advance.
	Subscribe(Listener)

	// Unsubscribe detaches a previously attached listener.
	Unsubscribe(Listener)

	// readAny returns the node's current value untyped.
	readAny() (any, error)

	// upstream returns the node's direct dependencies, if any.
	upstream() []Source
}

// Node is a readable reactive value of type T. All concrete node types
// (Facet, Selector, Distinct) implement it.
type Node[T any] interface {
	Source

	// Read returns the node's current value. It reports ErrNotReady while
	// no value is available and *DerivationFault when a derive function
	// failed.
	Read() (T, error)
}

// assertUsableDeps validates a selector dependency list at construction:
// it must be non-empty, contain no nils, and the transitive graph below it
// must be acyclic. Violations are programming errors and panic with a
// wrapped sentinel so they surface at the construction site, not as an
// infinite loop at read time.
func assertUsableDeps(deps []Source) {
	if len(deps) == 0 {
		panic(fmt.Errorf("facet: selector requires at least one dependency"))
	}
	for i, dep := range deps {
		if dep == nil {
			panic(fmt.Errorf("facet: selector dependency %d is nil", i))
		}
	}

	visited := make(map[Source]bool)
	onPath := make(map[Source]bool)
	for _, dep := range deps {
		walkDeps(dep, visited, onPath)
	}
}

// walkDeps runs a depth-first walk over the dependency graph, panicking
// when a node appears on its own downstream path.
func walkDeps(node Source, visited, onPath map[Source]bool) {
	if onPath[node] {
		panic(fmt.Errorf("%w", ErrCyclicDependency))
	}
	if visited[node] {
		return
	}
	visited[node] = true
	onPath[node] = true
	for _, dep := range node.upstream() {
		walkDeps(dep, visited, onPath)
	}
	onPath[node] = false
}

// defaultEquals is the equality predicate used when none is supplied.
// Comparable values compare with ==; everything else falls back to
// reflect.DeepEqual. For facet values mutated in place this reports
// "unchanged", which is exactly why the version counter, not equality,
// drives change detection in the cells themselves.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case string:
		bv, ok := any(b).(string)
		return ok && av == bv
	case int:
		bv, ok := any(b).(int)
		return ok && av == bv
	case int64:
		bv, ok := any(b).(int64)
		return ok && av == bv
	case float64:
		bv, ok := any(b).(float64)
		return ok && av == bv
	case bool:
		bv, ok := any(b).(bool)
		return ok && av == bv
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.IsValid() && rb.IsValid() && ra.Comparable() && rb.Comparable() {
		return ra.Equal(rb)
	}
	return reflect.DeepEqual(a, b)
}
