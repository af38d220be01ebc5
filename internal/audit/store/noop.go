package store

import (
	"context"

	"github.com/serroba/shorter/internal/audit"
	"go.uber.org/zap"
)

// Noop is a no-op implementation of audit.Store that logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op audit store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveCommit(_ context.Context, event *audit.CommitEvent) error {
	n.logger.Info("shortlink commit recorded",
		zap.String("commit", event.CommitRef),
		zap.String("alias", event.Alias),
		zap.Bool("removal", event.Removal),
		zap.String("actor", event.ActorTag),
		zap.Time("committedAt", event.CommittedAt),
	)

	return nil
}
