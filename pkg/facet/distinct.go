package facet

import "sync"

// Distinct wraps a node and suppresses notifications (and version
// advances) when the freshly derived value is equivalent to the last one
// it emitted. Read is delegated unchanged: the wrapper throttles
// notification, never computation.
//
// This decouples recompute cost from notification cost. A selector over a
// large container recomputes cheaply whenever an unrelated sibling field
// bumps the container's version; a Distinct wrapper keeps that churn from
// reaching subscribers that only care about one field.
type Distinct[T any] struct {
	id   uint64
	subs subscriberSet

	inner Node[T]
	equal func(T, T) bool

	mu      sync.Mutex
	last    T
	hasLast bool
	inError bool
	version uint64
}

// NewDistinct wraps inner with an equality predicate. A nil predicate uses
// the default: == for comparable values, reflect.DeepEqual otherwise.
func NewDistinct[T any](inner Node[T], equal func(T, T) bool) *Distinct[T] {
	if equal == nil {
		equal = defaultEquals[T]
	}
	d := &Distinct[T]{
		id:    nextID(),
		inner: inner,
		equal: equal,
	}
	inner.Subscribe(d)
	return d
}

// Read delegates to the inner node unchanged.
func (d *Distinct[T]) Read() (T, error) {
	return d.inner.Read()
}

// MarkDirty implements Listener. Unlike a selector, the wrapper re-derives
// eagerly here: deciding whether to forward the notification requires the
// fresh value. The notification propagates only on the first value or when
// the predicate reports a difference.
func (d *Distinct[T]) MarkDirty() {
	v, err := d.inner.Read()
	if err != nil {
		// Not ready or faulted: notify on the transition into the error
		// state, then stay quiet while it persists.
		d.mu.Lock()
		if d.inError {
			d.mu.Unlock()
			return
		}
		d.inError = true
		d.mu.Unlock()

		d.subs.notify()
		return
	}

	d.mu.Lock()
	recovered := d.inError
	d.inError = false
	same := d.hasLast && d.equal(d.last, v)
	if same && !recovered {
		d.mu.Unlock()
		return
	}
	if !same {
		d.last = v
		d.hasLast = true
		d.version++
	}
	d.mu.Unlock()

	// Recovering to an equal value notifies without a version advance:
	// subscribers saw the error state and need the all-clear.
	d.subs.notify()
}

// Version reports the wrapper's externally observed change counter, which
// advances only on emissions that passed the equality filter.
func (d *Distinct[T]) Version() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version
}

// ID returns the unique identifier for this node.
func (d *Distinct[T]) ID() uint64 { return d.id }

// Subscribe attaches a listener notified only on filtered changes.
func (d *Distinct[T]) Subscribe(l Listener) { d.subs.add(l) }

// Unsubscribe detaches a listener.
func (d *Distinct[T]) Unsubscribe(l Listener) { d.subs.remove(l) }

func (d *Distinct[T]) readAny() (any, error) {
	v, err := d.Read()
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (d *Distinct[T]) upstream() []Source { return []Source{d.inner} }

var (
	_ Node[int] = (*Distinct[int])(nil)
	_ Listener  = (*Distinct[int])(nil)
)
