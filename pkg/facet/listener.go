package facet

import (
	"sync"
	"sync/atomic"
)

// Listener is anything that can be notified when a node changes.
// Selectors implement it to propagate dirtiness through the graph;
// UI bindings implement it to schedule a re-read and re-paint.
type Listener interface {
	// MarkDirty notifies the listener that a node it subscribed to has
	// advanced its version. Selectors forward the notification without
	// recomputing; recompute is deferred to the next Read.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication in subscriber sets.
	ID() uint64
}

// globalIDCounter is the source of unique IDs for nodes and listeners.
var globalIDCounter uint64

// nextID returns the next unique ID.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}

// subscriberSet provides deduplicated subscriber management.
// It is embedded in every node type to share subscription logic.
type subscriberSet struct {
	mu   sync.RWMutex
	subs []Listener
}

// add registers a listener, deduplicating by listener ID.
func (s *subscriberSet) add(l Listener) {
	if l == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lid := l.ID()
	for _, existing := range s.subs {
		if existing.ID() == lid {
			return
		}
	}
	s.subs = append(s.subs, l)
}

// remove drops a listener by ID. Order is not preserved.
func (s *subscriberSet) remove(l Listener) {
	if l == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lid := l.ID()
	for i, existing := range s.subs {
		if existing.ID() == lid {
			s.subs[i] = s.subs[len(s.subs)-1]
			s.subs = s.subs[:len(s.subs)-1]
			return
		}
	}
}

// notify invokes MarkDirty on every subscriber.
// Subscribers are copied first so no lock is held during notification.
func (s *subscriberSet) notify() {
	s.mu.RLock()
	subs := make([]Listener, len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, sub := range subs {
		sub.MarkDirty()
	}
}

// funcListener adapts a plain function to the Listener interface.
type funcListener struct {
	id uint64
	fn func()
}

func (l *funcListener) MarkDirty() { l.fn() }
func (l *funcListener) ID() uint64 { return l.id }

// Observe attaches fn as a listener on node and returns a function that
// detaches it. fn runs synchronously whenever the node reports a change;
// it should re-read the node and schedule whatever repaint it needs.
func Observe(node Source, fn func()) (stop func()) {
	l := &funcListener{id: nextID(), fn: fn}
	node.Subscribe(l)
	return func() { node.Unsubscribe(l) }
}
