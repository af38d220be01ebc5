package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/serroba/shorter/internal/expiration"
)

// ExpirationMemoryStore is an in-memory implementation of expiration.DueStore.
// It does not survive restarts and is meant for tests and local runs.
type ExpirationMemoryStore struct {
	mu       sync.Mutex
	messages map[string]expiration.Message
}

// NewExpirationMemoryStore creates a new in-memory due store.
func NewExpirationMemoryStore() *ExpirationMemoryStore {
	return &ExpirationMemoryStore{
		messages: make(map[string]expiration.Message),
	}
}

func (s *ExpirationMemoryStore) Add(_ context.Context, msg *expiration.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[msg.ID] = *msg

	return nil
}

func (s *ExpirationMemoryStore) Due(_ context.Context, now time.Time, limit int) ([]*expiration.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]*expiration.Message, 0)

	for _, msg := range s.messages {
		if !msg.NotBefore.After(now) {
			m := msg
			due = append(due, &m)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].NotBefore.Before(due[j].NotBefore)
	})

	if len(due) > limit {
		due = due[:limit]
	}

	return due, nil
}

func (s *ExpirationMemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.messages, id)

	return nil
}

// Len returns the number of scheduled messages.
func (s *ExpirationMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.messages)
}
