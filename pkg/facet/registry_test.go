package facet

import (
	"errors"
	"testing"
)

func TestRegistryDefineWriteRead(t *testing.T) {
	reg := NewRegistry()

	user := reg.Define("data.user", map[string]any{"username": "Alex"})
	name := NewSelector([]Source{user}, func(vals []any) (string, error) {
		return vals[0].(map[string]any)["username"].(string), nil
	})

	if v, _ := name.Read(); v != "Alex" {
		t.Errorf("expected Alex, got %q", v)
	}

	reg.Write("data.user", map[string]any{"username": "Sam"})
	if v, _ := name.Read(); v != "Sam" {
		t.Errorf("expected Sam after write, got %q", v)
	}
}

func TestRegistryDefineIdempotent(t *testing.T) {
	reg := NewRegistry()

	first := reg.Define("data.settings", map[string]any{"volume": 10})
	reg.Write("data.settings", map[string]any{"volume": 3})

	second := reg.Define("data.settings", map[string]any{"volume": 99})
	if first != second {
		t.Fatal("define must return the existing cell")
	}

	v, err := second.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(map[string]any)["volume"] != 3 {
		t.Errorf("existing value is authoritative over a later initial, got %v", v)
	}
}

func TestRegistryDeclareThenDefineSeeds(t *testing.T) {
	reg := NewRegistry()

	cell := reg.Declare("data.profile")
	if _, err := cell.Read(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("declared cell must be unset, got %v", err)
	}

	reg.Define("data.profile", "guest")
	if v, _ := cell.Read(); v != "guest" {
		t.Errorf("definition must seed a declared-but-unset cell, got %v", v)
	}
}

func TestRegistryWriteUnknownIsSilent(t *testing.T) {
	reg := NewRegistry()

	// Backends may push before the consuming side mounts the definition.
	if reg.Write("data.never.defined", 42) {
		t.Error("write to an unreferenced identifier must report not-applied")
	}
	if reg.Len() != 0 {
		t.Errorf("tolerated write must not create cells, got %d", reg.Len())
	}

	// Late registration picks up the next push, not the dropped one.
	reg.Define("data.never.defined", "initial")
	if v, _ := reg.Define("data.never.defined", "x").Read(); v != "initial" {
		t.Errorf("expected initial after late registration, got %v", v)
	}
}

func TestRegistryNames(t *testing.T) {
	reg := NewRegistry()
	reg.Define("data.b", 1)
	reg.Declare("data.a")

	names := reg.Names()
	if len(names) != 2 || names[0] != "data.a" || names[1] != "data.b" {
		t.Errorf("expected sorted names, got %v", names)
	}
}
