package expiration

import (
	"context"
	"time"

	"github.com/serroba/shorter/internal/messaging"
	"go.uber.org/zap"
)

// pump periodically publishes due messages and removes them from the store once
// published. A crash between the two steps republishes the message on the next run,
// which is what makes delivery at-least-once rather than at-most-once.
type pump struct {
	store    DueStore
	publish  messaging.Publish[Message]
	now      func() time.Time
	interval time.Duration
	batch    int
	logger   *zap.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func (p *pump) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})

	go p.loop(ctx)

	return nil
}

func (p *pump) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.drain(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// drain publishes due messages until the store has no more or a step fails.
func (p *pump) drain(ctx context.Context) {
	for ctx.Err() == nil {
		due, err := p.store.Due(ctx, p.now(), p.batch)
		if err != nil {
			p.logger.Error("failed to read due expirations", zap.Error(err))

			return
		}

		for _, msg := range due {
			if err := p.publish(ctx, msg); err != nil {
				p.logger.Error("failed to publish expiration",
					zap.String("id", msg.ID),
					zap.String("alias", msg.Alias),
					zap.Error(err),
				)

				return
			}

			if err := p.store.Remove(ctx, msg.ID); err != nil {
				p.logger.Error("failed to remove published expiration, it will be delivered again",
					zap.String("id", msg.ID),
					zap.Error(err),
				)

				return
			}
		}

		if len(due) < p.batch {
			return
		}
	}
}

func (p *pump) Shutdown() error {
	if p.cancel != nil {
		p.cancel()
		<-p.done
	}

	return nil
}
