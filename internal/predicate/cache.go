package predicate

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/expr-lang/expr/vm"
)

// DefaultCacheSize is the default maximum number of compiled programs held
// by a ProgramCache.
const DefaultCacheSize = 1000

// ProgramCache is a thread-safe LRU cache of compiled expr-lang programs,
// keyed by expression source.
type ProgramCache struct {
	mu        sync.Mutex
	cache     map[string]*list.Element
	lru       *list.List
	maxSize   int
	hitCount  int64
	missCount int64
}

// NewProgramCache creates a cache holding at most maxSize programs. A
// maxSize below 1 uses DefaultCacheSize.
func NewProgramCache(maxSize int) *ProgramCache {
	if maxSize < 1 {
		maxSize = DefaultCacheSize
	}
	return &ProgramCache{
		cache:   make(map[string]*list.Element, maxSize),
		lru:     list.New(),
		maxSize: maxSize,
	}
}

type entry struct {
	expression string
	program    *vm.Program
}

// Get returns the program compiled from expression, marking it as most
// recently used.
func (c *ProgramCache) Get(expression string) (*vm.Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.cache[expression]
	if !ok {
		c.missCount++
		return nil, false
	}
	c.hitCount++
	c.lru.MoveToFront(elem)
	return elem.Value.(*entry).program, true
}

// Put stores program, evicting the least recently used entry when full. An
// existing entry for expression is replaced.
func (c *ProgramCache) Put(expression string, program *vm.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[expression]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*entry).program = program
		return
	}

	c.cache[expression] = c.lru.PushFront(&entry{
		expression: expression,
		program:    program,
	})
	c.evictLocked()
}

func (c *ProgramCache) evictLocked() {
	for c.lru.Len() > c.maxSize {
		elem := c.lru.Back()
		delete(c.cache, elem.Value.(*entry).expression)
		c.lru.Remove(elem)
	}
}

// Clear removes all entries. Statistics are kept.
func (c *ProgramCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*list.Element)
	c.lru.Init()
}

// Len returns the number of cached programs.
func (c *ProgramCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns cache statistics for monitoring.
func (c *ProgramCache) Stats() (size int, hits, misses int64, ratio float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if total := c.hitCount + c.missCount; total > 0 {
		ratio = float64(c.hitCount) / float64(total)
	}
	return c.lru.Len(), c.hitCount, c.missCount, ratio
}

func (c *ProgramCache) String() string {
	size, hits, misses, ratio := c.Stats()
	return fmt.Sprintf("ProgramCache{size=%d, hits=%d, misses=%d, hit_ratio=%.2f%%}",
		size, hits, misses, ratio*100)
}
