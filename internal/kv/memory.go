package kv

import (
	"context"
	"sync"
)

// Memory is an in-process Store used by tests and ephemeral sessions.
type Memory struct {
	mu     sync.Mutex
	slots  map[string]string
	putErr error
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{slots: make(map[string]string)}
}

// Get returns the blob stored under slot.
func (m *Memory) Get(_ context.Context, slot string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.slots[slot]
	return blob, ok, nil
}

// Put replaces the blob stored under slot.
func (m *Memory) Put(_ context.Context, slot, blob string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.slots[slot] = blob
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// FailPuts makes every subsequent Put return err (nil restores writes).
// Tests use this to exercise flush-failure handling.
func (m *Memory) FailPuts(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putErr = err
}

// Len returns the number of populated slots.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}
