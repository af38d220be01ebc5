package expiration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/shorter/internal/messaging"
	"go.uber.org/zap"
)

// ErrNotListening is returned by Listen on a queue built without a transport.
var ErrNotListening = errors.New("expiration queue has no publisher or subscriber")

// Config tunes delivery.
type Config struct {
	// PollInterval is how often the due store is checked.
	PollInterval time.Duration
	// BatchSize caps how many due messages are published per poll.
	BatchSize int
}

// Queue schedules expiration messages and delivers them at least once, no earlier than
// their delay. Scheduled messages live in the DueStore; a pump moves due ones onto the
// message transport, where a single consumer hands them to the registered handler.
type Queue struct {
	store      DueStore
	publisher  message.Publisher
	subscriber message.Subscriber
	newID      func() string
	now        func() time.Time
	config     Config
	logger     *zap.Logger
}

// NewQueue creates a queue. publisher and subscriber may be nil for a queue that only schedules.
func NewQueue(
	store DueStore,
	publisher message.Publisher,
	subscriber message.Subscriber,
	newID func() string,
	config Config,
	logger *zap.Logger,
) *Queue {
	if config.PollInterval <= 0 {
		config.PollInterval = time.Second
	}

	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}

	return &Queue{
		store:      store,
		publisher:  publisher,
		subscriber: subscriber,
		newID:      newID,
		now:        time.Now,
		config:     config,
		logger:     logger,
	}
}

// Schedule stores msg for delivery no earlier than now+delay. A non-positive delay makes
// the message due immediately.
func (q *Queue) Schedule(ctx context.Context, msg Message, delay time.Duration) (Handle, error) {
	if delay < 0 {
		delay = 0
	}

	msg.ID = q.newID()
	msg.NotBefore = q.now().Add(delay).UTC()

	if err := q.store.Add(ctx, &msg); err != nil {
		return Handle{}, fmt.Errorf("scheduling expiration of `/%s`: %w", msg.Alias, err)
	}

	q.logger.Info("expiration scheduled",
		zap.String("id", msg.ID),
		zap.String("alias", msg.Alias),
		zap.Time("notBefore", msg.NotBefore),
	)

	return Handle{ID: msg.ID, DeliverAt: msg.NotBefore}, nil
}

// Listen registers the delivery handler. The returned runnable owns the pump and the
// consumer; nothing is delivered until it is started.
func (q *Queue) Listen(handler messaging.Handler[Message]) (messaging.Runnable, error) {
	if q.publisher == nil || q.subscriber == nil {
		return nil, ErrNotListening
	}

	return &listener{
		consumer: messaging.NewConsumer(q.subscriber, TopicExpired, handler, q.logger),
		pump: &pump{
			store:    q.store,
			publish:  messaging.NewPublishFunc[Message](q.publisher, TopicExpired),
			now:      q.now,
			interval: q.config.PollInterval,
			batch:    q.config.BatchSize,
			logger:   q.logger,
		},
	}, nil
}

type listener struct {
	consumer messaging.Runnable
	pump     messaging.Runnable
}

// Start subscribes before pumping so that nothing is published to a topic without a reader.
func (l *listener) Start(ctx context.Context) error {
	if err := l.consumer.Start(ctx); err != nil {
		return err
	}

	if err := l.pump.Start(ctx); err != nil {
		_ = l.consumer.Shutdown()

		return err
	}

	return nil
}

func (l *listener) Shutdown() error {
	pumpErr := l.pump.Shutdown()
	consumerErr := l.consumer.Shutdown()

	return errors.Join(pumpErr, consumerErr)
}
