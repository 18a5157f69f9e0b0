package store

import (
	"context"
	"sync"
)

// Memory keeps snapshots in process memory.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Load returns a copy of the user's snapshot.
func (m *Memory) Load(_ context.Context, user string) ([]byte, error) {
	if err := ValidateUser(user); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[user]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save stores a copy of data.
func (m *Memory) Save(_ context.Context, user string, data []byte) error {
	if err := ValidateUser(user); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[user] = append([]byte(nil), data...)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
