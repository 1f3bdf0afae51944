package facet

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSelectorDerives(t *testing.T) {
	user := NewFacet[any](map[string]any{"username": "Alex"})

	name := NewSelector([]Source{user}, func(vals []any) (string, error) {
		return vals[0].(map[string]any)["username"].(string), nil
	})

	v, err := name.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "Alex" {
		t.Errorf("expected Alex, got %q", v)
	}

	user.Set(map[string]any{"username": "Sam"})
	v, err = name.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "Sam" {
		t.Errorf("expected Sam, got %q", v)
	}
}

func TestSelectorMemoizes(t *testing.T) {
	f := NewFacet(2)

	derives := 0
	doubled := NewSelector([]Source{f}, func(vals []any) (int, error) {
		derives++
		return vals[0].(int) * 2, nil
	})

	for i := 0; i < 3; i++ {
		if v, _ := doubled.Read(); v != 4 {
			t.Fatalf("expected 4, got %d", v)
		}
	}
	if derives != 1 {
		t.Errorf("expected 1 derive for repeated reads, got %d", derives)
	}

	f.Set(5)
	if v, _ := doubled.Read(); v != 10 {
		t.Errorf("expected 10, got %d", v)
	}
	if derives != 2 {
		t.Errorf("expected 2 derives after write, got %d", derives)
	}
}

func TestSelectorTransitiveMemoization(t *testing.T) {
	a := NewFacet(1)
	b := NewFacet(10)

	sumDerives := 0
	sum := NewSelector([]Source{a, b}, func(vals []any) (int, error) {
		sumDerives++
		return vals[0].(int) + vals[1].(int), nil
	})

	labelDerives := 0
	label := NewSelector([]Source{sum}, func(vals []any) (string, error) {
		labelDerives++
		return fmt.Sprintf("total=%d", vals[0].(int)), nil
	})

	if v, _ := label.Read(); v != "total=11" {
		t.Fatalf("expected total=11, got %q", v)
	}
	if _, err := label.Read(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sumDerives != 1 || labelDerives != 1 {
		t.Errorf("expected 1 derive each while upstream is quiet, got sum=%d label=%d", sumDerives, labelDerives)
	}

	b.Set(20)
	if v, _ := label.Read(); v != "total=21" {
		t.Errorf("expected total=21, got %q", v)
	}
	if sumDerives != 2 || labelDerives != 2 {
		t.Errorf("expected 2 derives each after write, got sum=%d label=%d", sumDerives, labelDerives)
	}
}

func TestSelectorDependencyOrder(t *testing.T) {
	first := NewFacet("a")
	second := NewFacet("b")
	third := NewFacet("c")

	joined := NewSelector([]Source{first, second, third}, func(vals []any) (string, error) {
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = v.(string)
		}
		return strings.Join(parts, ""), nil
	})

	if v, _ := joined.Read(); v != "abc" {
		t.Errorf("dependency values must arrive in construction order, got %q", v)
	}
}

func TestSelectorNotReadyPropagates(t *testing.T) {
	empty := NewEmptyFacet[string]()
	sel := NewSelector([]Source{empty}, func(vals []any) (string, error) {
		t.Fatal("derive must not run without dependency values")
		return "", nil
	})

	if _, err := sel.Read(); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady, got %v", err)
	}
}

func TestSelectorInitialValue(t *testing.T) {
	empty := NewEmptyFacet[map[string]any]()

	name := NewSelector([]Source{empty}, func(vals []any) (string, error) {
		return vals[0].(map[string]any)["username"].(string), nil
	}).WithInitial("Anonymous")

	v, err := name.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "Anonymous" {
		t.Errorf("expected fallback Anonymous, got %q", v)
	}

	empty.Set(map[string]any{"username": "Steve"})
	v, err = name.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "Steve" {
		t.Errorf("expected Steve after first write, got %q", v)
	}
}

func TestSelectorDerivationFault(t *testing.T) {
	f := NewFacet(1)

	boom := errors.New("boom")
	sel := NewSelector([]Source{f}, func(vals []any) (int, error) {
		return 0, boom
	})

	_, err := sel.Read()
	var fault *DerivationFault
	if !errors.As(err, &fault) {
		t.Fatalf("expected DerivationFault, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("fault must unwrap to the derive error, got %v", err)
	}
}

func TestSelectorPanicBecomesFault(t *testing.T) {
	f := NewFacet[any](map[string]any{})

	sel := NewSelector([]Source{f}, func(vals []any) (string, error) {
		return vals[0].(map[string]any)["missing"].(string), nil // panics
	})

	_, err := sel.Read()
	var fault *DerivationFault
	if !errors.As(err, &fault) {
		t.Fatalf("expected DerivationFault from panic, got %v", err)
	}

	// Faults are not cached; a later read retries the derivation.
	f.Set(map[string]any{"missing": "found"})
	v, err := sel.Read()
	if err != nil {
		t.Fatalf("unexpected error after data arrived: %v", err)
	}
	if v != "found" {
		t.Errorf("expected found, got %q", v)
	}
}

func TestSelectorEqualitySuppressesVersion(t *testing.T) {
	f := NewFacet[any](map[string]any{"hp": 10, "mana": 5})

	hp := NewSelector([]Source{f}, func(vals []any) (int, error) {
		return vals[0].(map[string]any)["hp"].(int), nil
	}).WithEquals(func(a, b int) bool { return a == b })

	downstream := 0
	bar := NewSelector([]Source{hp}, func(vals []any) (string, error) {
		downstream++
		return fmt.Sprintf("%d hp", vals[0].(int)), nil
	})

	if v, _ := bar.Read(); v != "10 hp" {
		t.Fatalf("expected 10 hp, got %q", v)
	}

	// A sibling field changes: hp recomputes but its version holds, so the
	// downstream cache stays valid.
	f.Set(map[string]any{"hp": 10, "mana": 99})
	if _, err := bar.Read(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if downstream != 1 {
		t.Errorf("expected downstream derive suppressed, got %d derives", downstream)
	}

	f.Set(map[string]any{"hp": 3, "mana": 99})
	if v, _ := bar.Read(); v != "3 hp" {
		t.Errorf("expected 3 hp, got %q", v)
	}
	if downstream != 2 {
		t.Errorf("expected downstream recompute on real change, got %d derives", downstream)
	}
}

func TestSelectorForwardsDirty(t *testing.T) {
	f := NewFacet(0)
	sel := NewSelector([]Source{f}, func(vals []any) (int, error) {
		return vals[0].(int), nil
	})

	l := newTestListener()
	sel.Subscribe(l)

	f.Set(1)
	if got := l.dirtyCount(); got != 1 {
		t.Errorf("expected dirty notification to propagate, got %d", got)
	}
}

func TestNewSelectorValidatesDeps(t *testing.T) {
	expectPanic := func(name string, fn func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic", name)
			}
		}()
		fn()
	}

	expectPanic("empty deps", func() {
		NewSelector(nil, func(vals []any) (int, error) { return 0, nil })
	})
	expectPanic("nil dep", func() {
		NewSelector([]Source{nil}, func(vals []any) (int, error) { return 0, nil })
	})
}
