package messaging

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Runnable represents a component that can be started and shutdown.
type Runnable interface {
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup manages multiple runnables with unified lifecycle.
type ConsumerGroup struct {
	runnables []Runnable
	closers   []io.Closer
	logger    *zap.Logger
}

// NewConsumerGroup creates a new consumer group. The closers (typically the shared
// subscriber) are closed after every runnable has shut down.
func NewConsumerGroup(logger *zap.Logger, closers ...io.Closer) *ConsumerGroup {
	return &ConsumerGroup{
		closers: closers,
		logger:  logger,
	}
}

// Add registers runnables with the group.
func (g *ConsumerGroup) Add(runnables ...Runnable) {
	g.runnables = append(g.runnables, runnables...)
}

// Start starts all runnables in registration order.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	for i, r := range g.runnables {
		if err := r.Start(ctx); err != nil {
			// Shutdown already started runnables on failure
			for j := i - 1; j >= 0; j-- {
				_ = g.runnables[j].Shutdown()
			}

			return fmt.Errorf("failed to start runnable %d: %w", i, err)
		}
	}

	g.logger.Info("consumer group started", zap.Int("count", len(g.runnables)))

	return nil
}

// Shutdown stops all runnables in reverse order, then releases the closers.
// Every runnable is stopped even if an earlier one fails; the first error is returned.
func (g *ConsumerGroup) Shutdown() error {
	g.logger.Info("shutting down consumer group")

	var firstErr error

	for i := len(g.runnables) - 1; i >= 0; i-- {
		if err := g.runnables[i].Shutdown(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, c := range g.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
