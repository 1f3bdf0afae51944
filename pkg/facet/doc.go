// Package facet provides the reactive data-binding core for ore-ui.
//
// A facet is a named value cell whose contents are owned by a remote
// backend (typically a game engine) and pushed into the process through an
// ingestion channel. UI code never owns facet data; it binds to it. The
// package tracks fine-grained change versions so that a consumer re-reads
// and re-paints only the fragment bound to a value that actually changed.
//
// # Core Types
//
// Facet[T] is a value cell with a version counter:
//
//	user := facet.NewFacet(User{Name: "Alex"})
//	v, err := user.Read() // current value, or facet.ErrNotReady
//	user.Set(User{Name: "Sam"}) // bumps the version, notifies subscribers
//
// Registry maps string identifiers to cells and is the entry point used by
// the backend channel:
//
//	reg := facet.NewRegistry()
//	reg.Define("data.user", map[string]any{"username": "Alex"})
//	reg.Write("data.user", map[string]any{"username": "Sam"})
//
// Selector[T] is a lazy, memoized derivation over an ordered list of
// dependencies. It recomputes only when a dependency's version moved since
// the last read:
//
//	name := facet.NewSelector([]facet.Source{user}, func(vals []any) (string, error) {
//	    return vals[0].(map[string]any)["username"].(string), nil
//	})
//
// Distinct[T] wraps any node and forwards notifications only when the value
// changed under an equality predicate, decoupling recomputation cost from
// notification cost.
//
// Dynamic[K, T] caches one selector instance per argument so that
// parameterized derivations have a stable identity to subscribe to.
//
// # Versions, not identity
//
// A cell write always advances the version, even when the same value object
// is written back after in-place mutation. The version counter is the sole
// source of truth for "did this change"; equality-based suppression happens
// one layer up, in Selector.WithEquals or Distinct, never inside the cell.
//
// # Errors
//
// Read reports ErrNotReady while a dependency chain has no value and no
// fallback; UI code renders a placeholder. A derive function that returns an
// error or panics surfaces as *DerivationFault to the caller of Read and is
// never retried by the engine.
//
// # Thread Safety
//
// All nodes are safe for concurrent use. Writes and their synchronous
// notifications are serialized per cell; derivations stay lazy and run on
// the reading goroutine.
package facet
