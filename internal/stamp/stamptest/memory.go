// Package stamptest provides test doubles for the stamp package.
package stamptest

import (
	"sync"

	"github.com/kosiew/duecron/internal/stamp"
)

// MemoryStore is an in-memory stamp.Store for tests.
type MemoryStore struct {
	mu     sync.Mutex
	stamps map[string]int64

	// WriteFunc, when set, intercepts Write calls (e.g. to simulate a
	// store that silently loses writes).
	WriteFunc func(key string, epoch int64)

	reads  int
	writes int
}

// Compile-time interface checks.
var (
	_ stamp.Store  = (*MemoryStore)(nil)
	_ stamp.Lister = (*MemoryStore)(nil)
)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{stamps: make(map[string]int64)}
}

// Read implements stamp.Store.
func (m *MemoryStore) Read(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	return m.stamps[key]
}

// Write implements stamp.Store.
func (m *MemoryStore) Write(key string, epoch int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.WriteFunc != nil {
		m.WriteFunc(key, epoch)
		return
	}
	m.stamps[key] = epoch
}

// List implements stamp.Lister.
func (m *MemoryStore) List() ([]stamp.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]stamp.Entry, 0, len(m.stamps))
	for k, v := range m.stamps {
		entries = append(entries, stamp.Entry{Key: k, Epoch: v})
	}
	return entries, nil
}

// Delete implements stamp.Lister.
func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stamps, key)
	return nil
}

// ReadCount returns how many Reads have happened.
func (m *MemoryStore) ReadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// WriteCount returns how many Writes have happened.
func (m *MemoryStore) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
