package facet

import (
	"errors"
	"fmt"
)

// ErrNotReady is reported by Read when a dependency chain has no value and
// no fallback was supplied. It means "no data yet", not failure: the backend
// has not pushed a value for some facet in the chain. UI code should render
// a pending or placeholder state and wait for the next notification.
var ErrNotReady = errors.New("facet: value not ready")

// ErrCyclicDependency is reported when a selector would depend, directly or
// transitively, on itself. Cycles are a programming error and are detected
// at construction time rather than looping at read time.
var ErrCyclicDependency = errors.New("facet: cyclic dependency")

// DerivationFault wraps a failure inside a selector's derive function,
// either an error it returned or a panic it raised. Unlike ErrNotReady this
// indicates a bug in the selector definition, so it is surfaced to the
// caller of Read unchanged and never retried by the engine.
type DerivationFault struct {
	Err error
}

// Error implements the error interface.
func (f *DerivationFault) Error() string {
	return "facet: derivation fault: " + f.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As support.
func (f *DerivationFault) Unwrap() error {
	return f.Err
}

// newPanicFault wraps a recovered panic value as a DerivationFault.
func newPanicFault(r any) *DerivationFault {
	if err, ok := r.(error); ok {
		return &DerivationFault{Err: fmt.Errorf("panic: %w", err)}
	}
	return &DerivationFault{Err: fmt.Errorf("panic: %v", r)}
}
