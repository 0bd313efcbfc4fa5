package routecache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	blob    []byte
	expires time.Time
}

// Memory is an in-process store. It is useful for tests and for processes
// that rebuild several routers from the same definitions.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory returns an empty store. A zero ttl keeps entries forever.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the blob stored under key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || (!entry.expires.IsZero() && !m.now().Before(entry.expires)) {
		return nil, ErrMiss
	}

	out := make([]byte, len(entry.blob))
	copy(out, entry.blob)
	return out, nil
}

// Put stores a copy of blob under key.
func (m *Memory) Put(_ context.Context, key string, blob []byte) error {
	entry := memoryEntry{blob: make([]byte, len(blob))}
	copy(entry.blob, blob)
	if m.ttl > 0 {
		entry.expires = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
