// Package storage provides a small generic compare-and-set map used to
// hold per-replica mutable state (adaptive health, leadership, and any
// user-defined weight modifier's own bookkeeping). It is grounded in the
// teacher's sync.RWMutex-guarded maps (distributed-kvstore/internal/store
// and internal/cluster.Ring both follow the same "lock, mutate, unlock"
// shape); here a single mutex gives every operation linearizable
// semantics per key, which is all the compare-and-set contract needs.
package storage

import "sync"

// Map is a concurrent K -> V map with CAS-like operations. V must be
// comparable so TryUpdate can check "is the stored value still what the
// caller last observed" without a separate version counter.
type Map[K comparable, V comparable] struct {
	mu sync.Mutex
	m  map[K]V
}

// New returns an empty Map.
func New[K comparable, V comparable]() *Map[K, V] {
	return &Map[K, V]{m: make(map[K]V)}
}

// Get returns the value stored for k, if any.
func (s *Map[K, V]) Get(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[k]
	return v, ok
}

// TryAdd installs v for k only if k is not already present. It reports
// whether the install happened.
func (s *Map[K, V]) TryAdd(k K, v V) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[k]; ok {
		return false
	}
	s.m[k] = v
	return true
}

// TryUpdate installs newV for k only if the currently stored value is
// still expectedOld. A failed CAS means another goroutine raced ahead;
// the caller must re-read and retry its decision.
func (s *Map[K, V]) TryUpdate(k K, newV, expectedOld V) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.m[k]
	if !ok || cur != expectedOld {
		return false
	}
	s.m[k] = newV
	return true
}

// GetOrAdd returns the existing value for k, or installs and returns the
// result of factory if absent. factory may run more than once under
// contention, but exactly one produced value is ever installed.
func (s *Map[K, V]) GetOrAdd(k K, factory func() V) V {
	s.mu.Lock()
	if v, ok := s.m[k]; ok {
		s.mu.Unlock()
		return v
	}
	s.mu.Unlock()

	v := factory()

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.m[k]; ok {
		return existing
	}
	s.m[k] = v
	return v
}

// Len returns the number of entries currently stored.
func (s *Map[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
