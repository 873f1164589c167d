package cache

import (
	"sync"
	"time"
)

// DefaultLRUCapacity bounds each in-process map.
const DefaultLRUCapacity = 1000

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// lru is a bounded in-process map with FIFO eviction and per-map expiry.
// Insertion order is tracked; when the map is full the oldest key is
// dropped. Reads do not promote entries. Entries older than the ttl are
// treated as misses so the in-process layer never outlives the Redis layer
// behind it.
type lru[V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	entries  map[string]entry[V]
	order    []string
}

func newLRU[V any](capacity int, ttl time.Duration) *lru[V] {
	if capacity <= 0 {
		capacity = DefaultLRUCapacity
	}
	return &lru[V]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]entry[V], capacity),
	}
}

func (l *lru[V]) Get(key string) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if l.ttl > 0 && l.now().Sub(e.storedAt) >= l.ttl {
		delete(l.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (l *lru[V]) Set(key string, value V) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := entry[V]{value: value, storedAt: l.now()}

	if _, exists := l.entries[key]; exists {
		l.entries[key] = e
		return
	}

	// Expired keys may linger in order after Get deleted them from the
	// map; the loop re-checks until the map is under capacity.
	for len(l.entries) >= l.capacity && len(l.order) > 0 {
		oldest := l.order[0]
		l.order = l.order[1:]
		delete(l.entries, oldest)
	}

	l.entries[key] = e
	l.order = append(l.order, key)
}

func (l *lru[V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
