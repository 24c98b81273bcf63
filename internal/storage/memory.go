package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrWriteFailed is returned by a MemoryStore configured to fail.
var ErrWriteFailed = errors.New("storage write failed")

// MemoryStore is an in-memory AudioStore used in tests and local development.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailWrites makes every Upload return ErrWriteFailed.
	FailWrites bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Upload stores the payload under the object name and returns a mem:// URL.
func (m *MemoryStore) Upload(_ context.Context, objectName string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites {
		return "", ErrWriteFailed
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[objectName] = buf

	return fmt.Sprintf("mem://%s", objectName), nil
}

// Get returns a stored object's bytes.
func (m *MemoryStore) Get(objectName string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.objects[objectName]
	return data, ok
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
