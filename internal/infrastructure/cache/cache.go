// Package cache provides a concurrency-safe in-process key/value store.
//
// It exists so components that need fast lookups (device reads on the hot
// scene-execution path) hold an explicitly injected cache instead of
// package-level mutable state. Each test constructs its own instance, so
// nothing leaks between tests, and the interface leaves room for a shared
// implementation if the service is ever scaled horizontally.
package cache

import "sync"

// Store is a minimal cache contract. Implementations must be safe for
// concurrent use from multiple goroutines.
type Store interface {
	// Get returns the cached value for key, or (nil, false) on a miss.
	Get(key string) (any, bool)

	// Set stores a value under key, replacing any existing entry.
	Set(key string, value any)

	// Delete removes the entry for key. Deleting a missing key is a no-op.
	Delete(key string)

	// Clear removes all entries.
	Clear()
}

// Memory is an in-process Store backed by a mutex-guarded map.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]any)}
}

// Get returns the cached value for key, or (nil, false) on a miss.
func (m *Memory) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

// Set stores a value under key, replacing any existing entry.
func (m *Memory) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

// Delete removes the entry for key.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Clear removes all entries.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]any)
}

// Len returns the number of cached entries. Mostly useful in tests.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
