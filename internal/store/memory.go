package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/serroba/shorter/internal/shortener"
)

// MemoryBackend is an in-memory implementation of ObjectBackend.
type MemoryBackend struct {
	mu      sync.RWMutex
	objects map[string][]byte // id -> content
	refs    map[string]string // ref -> commit id
}

// NewMemoryBackend creates a new in-memory object backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		objects: make(map[string][]byte),
		refs:    make(map[string]string),
	}
}

func (m *MemoryBackend) PutObject(_ context.Context, id string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[id]; ok {
		return nil
	}

	m.objects[id] = append([]byte(nil), data...)

	return nil
}

func (m *MemoryBackend) GetObject(_ context.Context, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[id]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", id, shortener.ErrNotFound)
	}

	return append([]byte(nil), data...), nil
}

func (m *MemoryBackend) GetRef(_ context.Context, name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	target, ok := m.refs[name]
	if !ok {
		return "", fmt.Errorf("ref %s: %w", name, shortener.ErrNotFound)
	}

	return target, nil
}

func (m *MemoryBackend) SwapRef(_ context.Context, name, expected, next string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.refs[name]
	if ok != (expected != "") || current != expected {
		return false, nil
	}

	m.refs[name] = next

	return true, nil
}
