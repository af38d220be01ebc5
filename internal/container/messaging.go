package container

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/samber/do"
	"github.com/serroba/shorter/internal/audit"
	"github.com/serroba/shorter/internal/messaging"
)

const consumerGroup = "shorter"

// PublisherGroupPackage provides the Redis Streams publisher and the typed publish
// functions built on it.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		redisClient := do.MustInvoke[*RedisConn](i)
		logger := do.MustInvoke[watermill.LoggerAdapter](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     redisClient.Client,
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, logger)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (messaging.Publish[audit.CommitEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[audit.CommitEvent](group.Publisher(), audit.TopicCommitted), nil
	})
}

// SubscriberPackage provides the Redis Streams subscriber shared by every consumer.
// Instances in the same consumer group split the stream between them.
func SubscriberPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (message.Subscriber, error) {
		redisClient := do.MustInvoke[*RedisConn](i)
		logger := do.MustInvoke[watermill.LoggerAdapter](i)

		return redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        redisClient.Client,
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: consumerGroup,
		}, logger)
	})
}
