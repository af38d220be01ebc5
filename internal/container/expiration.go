package container

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jaevor/go-nanoid"
	"github.com/samber/do"
	"github.com/serroba/shorter/internal/expiration"
	"github.com/serroba/shorter/internal/messaging"
	"github.com/serroba/shorter/internal/store"
	"go.uber.org/zap"
)

const handleLength = 21

// ExpirationPackage provides the expiration queue over the Redis due store. The server
// only schedules; the consumer also listens, which needs SubscriberPackage.
func ExpirationPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*expiration.Queue, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		redisClient := do.MustInvoke[*RedisConn](i)
		publishers := do.MustInvoke[*messaging.PublisherGroup](i)

		pollInterval, _, err := opts.Durations()
		if err != nil {
			return nil, err
		}

		newID, err := nanoid.Standard(handleLength)
		if err != nil {
			return nil, err
		}

		// The server never listens and has no subscriber.
		subscriber, _ := do.Invoke[message.Subscriber](i)

		return expiration.NewQueue(
			store.NewExpirationRedisStore(redisClient.Client),
			publishers.Publisher(),
			subscriber,
			newID,
			expiration.Config{PollInterval: pollInterval},
			logger.Named("expiration"),
		), nil
	})
}
