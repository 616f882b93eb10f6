package agent

import (
	"sort"
	"sync"

	"github.com/joeycumines/goap/internal/goap"
)

// Blackboard provides a thread-safe fact store backing an agent's view of
// the world. Planning reads it through State snapshots, and plan execution
// writes action effects back through Apply.
//
// Usage: Create with new(Blackboard). The internal map is lazily initialized
// on the first write operation via the init() method.
type Blackboard struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewBlackboard returns a blackboard seeded with the given facts.
func NewBlackboard(facts goap.WorldState) *Blackboard {
	b := new(Blackboard)
	b.Apply(facts)
	return b
}

// init initializes the blackboard's internal map if needed.
// Called automatically on write operations, with the lock held.
func (b *Blackboard) init() {
	if b.data == nil {
		b.data = make(map[string]any)
	}
}

// Get retrieves a value from the blackboard.
// Returns nil if the key doesn't exist.
func (b *Blackboard) Get(key string) any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.data == nil {
		return nil
	}
	return b.data[key]
}

// Set stores a value in the blackboard.
func (b *Blackboard) Set(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.init()
	b.data[key] = value
}

// Has returns true if the key exists in the blackboard.
func (b *Blackboard) Has(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.data == nil {
		return false
	}
	_, ok := b.data[key]
	return ok
}

// Delete removes a key from the blackboard.
func (b *Blackboard) Delete(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return
	}
	delete(b.data, key)
}

// Keys returns all keys in the blackboard, sorted.
func (b *Blackboard) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.data == nil {
		return nil
	}
	keys := make([]string, 0, len(b.data))
	for k := range b.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clear removes all entries from the blackboard.
func (b *Blackboard) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = make(map[string]any)
}

// Len returns the number of keys in the blackboard.
func (b *Blackboard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Snapshot returns a shallow copy of the blackboard data, suitable as an
// expression environment.
func (b *Blackboard) Snapshot() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make(map[string]any, len(b.data))
	for k, v := range b.data {
		result[k] = v
	}
	return result
}

// State returns the current facts as an independent WorldState.
func (b *Blackboard) State() goap.WorldState {
	return goap.WorldState(b.Snapshot())
}

// Apply writes every fact of changes, atomically with respect to other
// blackboard operations.
func (b *Blackboard) Apply(changes goap.WorldState) {
	if len(changes) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.init()
	for k, v := range changes {
		b.data[k] = v
	}
}
