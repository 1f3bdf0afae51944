package facet

import (
	"errors"
	"testing"
)

func TestDistinctAlwaysEqualNeverNotifiesAfterFirst(t *testing.T) {
	f := NewEmptyFacet[any]()
	sel := NewSelector([]Source{f}, func(vals []any) (any, error) {
		return vals[0], nil
	})

	wrapped := NewDistinct[any](sel, func(a, b any) bool { return true })
	l := newTestListener()
	wrapped.Subscribe(l)

	f.Set("first")
	if got := l.dirtyCount(); got != 1 {
		t.Fatalf("expected exactly one notification for the first value, got %d", got)
	}

	for i := 0; i < 5; i++ {
		f.Set(i)
	}
	if got := l.dirtyCount(); got != 1 {
		t.Errorf("always-true predicate must swallow every later notification, got %d", got)
	}
}

func TestDistinctFiltersByValue(t *testing.T) {
	f := NewFacet[any](map[string]any{"hp": 10, "mana": 5})
	hp := NewSelector([]Source{f}, func(vals []any) (int, error) {
		return vals[0].(map[string]any)["hp"].(int), nil
	})

	wrapped := NewDistinct(hp, nil)
	l := newTestListener()
	wrapped.Subscribe(l)

	f.Set(map[string]any{"hp": 10, "mana": 6}) // hp unchanged
	f.Set(map[string]any{"hp": 10, "mana": 7}) // hp unchanged
	if got := l.dirtyCount(); got != 1 {
		// The first dirty seeds lastEmitted and notifies once.
		t.Fatalf("expected 1 notification while hp is steady, got %d", got)
	}

	f.Set(map[string]any{"hp": 4, "mana": 7})
	if got := l.dirtyCount(); got != 2 {
		t.Errorf("expected notification on hp change, got %d", got)
	}

	v, err := wrapped.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 4 {
		t.Errorf("Read must delegate unchanged, got %d", v)
	}
}

func TestDistinctVersionAdvancesOnEmission(t *testing.T) {
	f := NewFacet(1)
	sel := NewSelector([]Source{f}, func(vals []any) (int, error) {
		return vals[0].(int) % 2, nil
	})
	wrapped := NewDistinct(sel, nil)

	if wrapped.Version() != 0 {
		t.Fatalf("expected version 0 before any emission, got %d", wrapped.Version())
	}

	f.Set(3) // parity unchanged: 1 -> 1... first dirty still emits (lastEmitted unset)
	v1 := wrapped.Version()
	f.Set(5) // parity 1, suppressed
	v2 := wrapped.Version()
	f.Set(6) // parity 0, emits
	v3 := wrapped.Version()

	if v1 != 1 || v2 != 1 || v3 != 2 {
		t.Errorf("expected versions 1,1,2, got %d,%d,%d", v1, v2, v3)
	}
}

func TestDistinctNotifiesOncePerErrorState(t *testing.T) {
	f := NewFacet[any](map[string]any{"hp": 1})
	hp := NewSelector([]Source{f}, func(vals []any) (int, error) {
		v, ok := vals[0].(map[string]any)["hp"].(int)
		if !ok {
			return 0, errors.New("hp missing")
		}
		return v, nil
	})

	wrapped := NewDistinct(hp, func(a, b int) bool { return true })
	l := newTestListener()
	wrapped.Subscribe(l)

	f.Set(map[string]any{"hp": 2}) // first value emits
	if got := l.dirtyCount(); got != 1 {
		t.Fatalf("expected 1 notification, got %d", got)
	}

	f.Set(map[string]any{})          // derive faults: transition notifies
	f.Set(map[string]any{})          // still faulting: quiet
	f.Set(map[string]any{"mana": 1}) // still faulting: quiet
	if got := l.dirtyCount(); got != 2 {
		t.Fatalf("expected a single notification while the fault persists, got %d", got)
	}

	f.Set(map[string]any{"hp": 2}) // recovery notifies, even to an equal value
	if got := l.dirtyCount(); got != 3 {
		t.Fatalf("expected a notification on recovery, got %d", got)
	}
	if wrapped.Version() != 1 {
		t.Errorf("recovering to an equal value must not advance the version, got %d", wrapped.Version())
	}

	f.Set(map[string]any{"hp": 9}) // suppressed again by the predicate
	if got := l.dirtyCount(); got != 3 {
		t.Errorf("expected suppression to resume after recovery, got %d", got)
	}
}

func TestDefaultEquals(t *testing.T) {
	if !defaultEquals("a", "a") || defaultEquals("a", "b") {
		t.Error("string equality broken")
	}
	if !defaultEquals(3, 3) || defaultEquals(3, 4) {
		t.Error("int equality broken")
	}
	if !defaultEquals(any(map[string]int{"a": 1}), any(map[string]int{"a": 1})) {
		t.Error("deep equality fallback broken")
	}
	if defaultEquals(any(1), any("1")) {
		t.Error("mixed dynamic types must not compare equal")
	}
}
