package goap

import (
	"fmt"
	"sort"
	"strings"
)

// WorldState is a snapshot of named facts, used for precondition, effect and
// goal matching. Values are compared with ==, and so must be comparable
// (bool, string, numeric, or similar small values).
//
// A nil WorldState is valid for every read operation, and behaves as an
// empty state. Search code never mutates a state once it has been shared,
// instead deriving new snapshots via Apply.
type WorldState map[string]any

// NewWorldState returns an empty WorldState.
func NewWorldState() WorldState {
	return make(WorldState)
}

// Copy returns an independent WorldState with the same facts.
func (ws WorldState) Copy() WorldState {
	out := make(WorldState, len(ws))
	for k, v := range ws {
		out[k] = v
	}
	return out
}

// Set stores or overwrites one fact, returning the receiver for chaining.
// Panics if the receiver is nil, like any write to a nil map.
func (ws WorldState) Set(key string, value any) WorldState {
	ws[key] = value
	return ws
}

// Get returns the value of a fact, and whether it is present.
func (ws WorldState) Get(key string) (any, bool) {
	v, ok := ws[key]
	return v, ok
}

// Has reports whether the fact is present, regardless of value.
func (ws WorldState) Has(key string) bool {
	_, ok := ws[key]
	return ok
}

// Len returns the number of facts.
func (ws WorldState) Len() int {
	return len(ws)
}

// Keys returns the fact names, sorted.
func (ws WorldState) Keys() []string {
	keys := make([]string, 0, len(ws))
	for k := range ws {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsSubsetOf reports whether every fact in the receiver is also present in
// other, with an equal value. Facts of other that are absent from the
// receiver are ignored. An empty receiver is a subset of anything.
func (ws WorldState) IsSubsetOf(other WorldState) bool {
	for k, v := range ws {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Overlay writes every fact of changes on top of the receiver, overwriting
// on collision. It mutates the receiver, and must only be used on a state
// that has not been shared yet (see Apply).
func (ws WorldState) Overlay(changes WorldState) {
	for k, v := range changes {
		ws[k] = v
	}
}

// Apply returns a new state equal to the receiver overlaid with changes.
// The receiver is never mutated.
func (ws WorldState) Apply(changes WorldState) WorldState {
	out := make(WorldState, len(ws)+len(changes))
	for k, v := range ws {
		out[k] = v
	}
	out.Overlay(changes)
	return out
}

// Equal reports whether both states hold exactly the same facts.
func (ws WorldState) Equal(other WorldState) bool {
	return len(ws) == len(other) && ws.IsSubsetOf(other)
}

// Diff returns the sorted names of facts that are missing from, or hold a
// different value in, one of the two states.
func (ws WorldState) Diff(other WorldState) []string {
	var keys []string
	for k, v := range ws {
		if ov, ok := other[k]; !ok || ov != v {
			keys = append(keys, k)
		}
	}
	for k := range other {
		if _, ok := ws[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// String renders the facts in sorted key order, e.g. {hasAxe: true}.
func (ws WorldState) String() string {
	if len(ws) == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range ws.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		_, _ = fmt.Fprintf(&b, "%s: %v", k, ws[k])
	}
	b.WriteByte('}')
	return b.String()
}
