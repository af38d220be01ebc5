package audit

import (
	"context"

	"github.com/serroba/shorter/internal/messaging"
)

// Store defines the interface for persisting audit events.
type Store interface {
	SaveCommit(ctx context.Context, event *CommitEvent) error
}

// NewHandler returns the consumer handler that persists commit events.
func NewHandler(store Store) messaging.Handler[CommitEvent] {
	return func(ctx context.Context, event *CommitEvent) error {
		return store.SaveCommit(ctx, event)
	}
}
