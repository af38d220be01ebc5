package audit

import (
	"context"
	"time"

	"github.com/serroba/shorter/internal/messaging"
	"github.com/serroba/shorter/internal/shortener"
	"go.uber.org/zap"
)

// RecordingApplier publishes a CommitEvent for every mutation that produced a commit.
// Publishing failures are logged and never fail the mutation, which has already landed.
type RecordingApplier struct {
	next    shortener.Applier
	publish messaging.Publish[CommitEvent]
	now     func() time.Time
	logger  *zap.Logger
}

// NewRecordingApplier wraps next with commit event publishing.
func NewRecordingApplier(
	next shortener.Applier,
	publish messaging.Publish[CommitEvent],
	logger *zap.Logger,
) *RecordingApplier {
	return &RecordingApplier{
		next:    next,
		publish: publish,
		now:     time.Now,
		logger:  logger,
	}
}

func (a *RecordingApplier) Apply(
	ctx context.Context, baseRef, path string, req shortener.MutationRequest,
) (*shortener.MutationResult, error) {
	result, err := a.next.Apply(ctx, baseRef, path, req)
	if err != nil || !result.Changed {
		return result, err
	}

	event := &CommitEvent{
		CommitRef:   result.CommitRef,
		Ref:         baseRef,
		Path:        path,
		Alias:       req.Alias,
		Removal:     req.IsRemoval(),
		Message:     result.Message,
		ActorTag:    req.Actor.Tag,
		ActorNick:   req.Actor.Nick,
		CommittedAt: a.now().UTC(),
	}

	if req.Destination != nil {
		event.Destination = *req.Destination
	}

	if err := a.publish(ctx, event); err != nil {
		a.logger.Error("failed to publish commit event",
			zap.String("alias", event.Alias),
			zap.String("commit", event.CommitRef),
			zap.Error(err),
		)
	}

	return result, nil
}

// Compile-time check.
var _ shortener.Applier = (*RecordingApplier)(nil)
