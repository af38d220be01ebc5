package container

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/samber/do"
	"github.com/serroba/shorter/internal/audit"
	"github.com/serroba/shorter/internal/expiration"
	"github.com/serroba/shorter/internal/messaging"
	"github.com/serroba/shorter/internal/shortener"
	"go.uber.org/zap"
)

// ConsumerGroupPackage provides the consumer process: the expiration listener, which
// removes aliases once due, and the audit consumer persisting commit events.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		subscriber := do.MustInvoke[message.Subscriber](i)
		queue := do.MustInvoke[*expiration.Queue](i)
		applier := do.MustInvoke[shortener.Applier](i)
		auditStore := do.MustInvoke[audit.Store](i)

		listener, err := queue.Listen(expiration.NewDeleteHandler(applier, opts.Branch, opts.LinksPath, logger))
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(logger, subscriber)
		group.Add(
			listener,
			messaging.NewConsumer(subscriber, audit.TopicCommitted, audit.NewHandler(auditStore), logger),
		)

		return group, nil
	})
}
