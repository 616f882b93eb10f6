package goap

import (
	"reflect"
	"testing"
)

func TestWorldState_IsSubsetOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ws    WorldState
		other WorldState
		want  bool
	}{
		{"empty in empty", WorldState{}, WorldState{}, true},
		{"nil in nil", nil, nil, true},
		{"empty in populated", WorldState{}, WorldState{"a": true}, true},
		{"exact match", WorldState{"a": true}, WorldState{"a": true}, true},
		{"extra keys in other ignored", WorldState{"a": true}, WorldState{"a": true, "b": 1}, true},
		{"value mismatch", WorldState{"a": true}, WorldState{"a": false}, false},
		{"missing key", WorldState{"a": false}, WorldState{"b": false}, false},
		{"missing key in nil", WorldState{"a": true}, nil, false},
		{"type mismatch", WorldState{"n": 1}, WorldState{"n": int64(1)}, false},
		{"string values", WorldState{"mode": "attack"}, WorldState{"mode": "attack", "hp": 3}, true},
		{"partial match", WorldState{"a": true, "b": 2}, WorldState{"a": true, "b": 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.ws.IsSubsetOf(tt.other); got != tt.want {
				t.Errorf("%v.IsSubsetOf(%v) = %v, want %v", tt.ws, tt.other, got, tt.want)
			}
		})
	}
}

func TestWorldState_Apply_DoesNotMutate(t *testing.T) {
	t.Parallel()

	base := WorldState{"a": true, "b": 1}
	changes := WorldState{"b": 2, "c": "x"}

	got := base.Apply(changes)

	want := WorldState{"a": true, "b": 2, "c": "x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Apply() = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(base, WorldState{"a": true, "b": 1}) {
		t.Errorf("base was mutated: %v", base)
	}
	if !reflect.DeepEqual(changes, WorldState{"b": 2, "c": "x"}) {
		t.Errorf("changes were mutated: %v", changes)
	}

	got["a"] = false
	if base["a"] != true {
		t.Error("result aliases base")
	}
}

func TestWorldState_Apply_Nil(t *testing.T) {
	t.Parallel()

	var base WorldState
	got := base.Apply(WorldState{"a": true})
	if !got.Equal(WorldState{"a": true}) {
		t.Errorf("Apply() on nil = %v", got)
	}
	if got := (WorldState{"a": true}).Apply(nil); !got.Equal(WorldState{"a": true}) {
		t.Errorf("Apply(nil) = %v", got)
	}
}

func TestWorldState_Overlay(t *testing.T) {
	t.Parallel()

	ws := NewWorldState().Set("a", 1).Set("b", 2)
	ws.Overlay(WorldState{"b": 3, "c": 4})

	if want := (WorldState{"a": 1, "b": 3, "c": 4}); !ws.Equal(want) {
		t.Errorf("Overlay() = %v, want %v", ws, want)
	}
}

func TestWorldState_Copy(t *testing.T) {
	t.Parallel()

	src := WorldState{"a": true}
	dst := src.Copy()
	dst.Set("a", false)
	dst.Set("b", true)

	if src["a"] != true || src.Has("b") {
		t.Errorf("source mutated through copy: %v", src)
	}

	var nilState WorldState
	if c := nilState.Copy(); c == nil || c.Len() != 0 {
		t.Errorf("Copy() of nil = %#v, want empty non-nil", c)
	}
}

func TestWorldState_Accessors(t *testing.T) {
	t.Parallel()

	ws := WorldState{"b": 2, "a": 1}

	if v, ok := ws.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v", v, ok)
	}
	if _, ok := ws.Get("z"); ok {
		t.Error("Get(z) reported present")
	}
	if !ws.Has("b") || ws.Has("z") {
		t.Error("Has() mismatch")
	}
	if ws.Len() != 2 {
		t.Errorf("Len() = %d", ws.Len())
	}
	if got := ws.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Keys() = %v", got)
	}
}

func TestWorldState_Equal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b WorldState
		want bool
	}{
		{nil, WorldState{}, true},
		{WorldState{"a": 1}, WorldState{"a": 1}, true},
		{WorldState{"a": 1}, WorldState{"a": 1, "b": 2}, false},
		{WorldState{"a": 1, "b": 2}, WorldState{"a": 1}, false},
		{WorldState{"a": 1}, WorldState{"a": 2}, false},
	}
	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%v.Equal(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestWorldState_Diff(t *testing.T) {
	t.Parallel()

	a := WorldState{"same": 1, "changed": 1, "onlyA": true}
	b := WorldState{"same": 1, "changed": 2, "onlyB": true}

	want := []string{"changed", "onlyA", "onlyB"}
	if got := a.Diff(b); !reflect.DeepEqual(got, want) {
		t.Errorf("Diff() = %v, want %v", got, want)
	}
	if got := a.Diff(a.Copy()); len(got) != 0 {
		t.Errorf("Diff() of equal states = %v", got)
	}
}

func TestWorldState_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ws   WorldState
		want string
	}{
		{nil, "{}"},
		{WorldState{}, "{}"},
		{WorldState{"b": false, "a": true}, "{a: true, b: false}"},
		{WorldState{"mode": "idle", "hp": 3}, "{hp: 3, mode: idle}"},
	}
	for _, tt := range tests {
		if got := tt.ws.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
