package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data    Data
	expires time.Time
}

// MemoryStore keeps sessions in a process-local map.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memoryEntry), now: time.Now}
}

// Load implements [Store].
func (m *MemoryStore) Load(_ context.Context, id string) (*Data, error) {
	m.mu.RLock()
	entry, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok || !m.now().Before(entry.expires) {
		return nil, ErrNoSession
	}
	data := entry.data
	if entry.data.Flash != nil {
		flash := *entry.data.Flash
		data.Flash = &flash
	}
	return &data, nil
}

// Save implements [Store].
func (m *MemoryStore) Save(_ context.Context, id string, data *Data, ttl time.Duration) error {
	entry := memoryEntry{data: *data, expires: m.now().Add(ttl)}
	if data.Flash != nil {
		flash := *data.Flash
		entry.data.Flash = &flash
	}

	m.mu.Lock()
	m.sessions[id] = entry
	m.mu.Unlock()
	return nil
}

// Delete implements [Store].
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, entry := range m.sessions {
		if !now.Before(entry.expires) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
