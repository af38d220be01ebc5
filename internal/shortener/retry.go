package shortener

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryingApplier re-runs the whole mutation protocol when it loses a ref race.
// Only ErrConcurrentModification is retried: nothing was persisted in that case. Any other
// failure, including an update with unknown outcome, is returned as is.
type RetryingApplier struct {
	next     Applier
	attempts uint64
	initial  time.Duration
	logger   *zap.Logger
}

// NewRetryingApplier wraps next with up to attempts extra runs.
func NewRetryingApplier(next Applier, attempts int, initial time.Duration, logger *zap.Logger) *RetryingApplier {
	if attempts < 0 {
		attempts = 0
	}

	return &RetryingApplier{
		next:     next,
		attempts: uint64(attempts),
		initial:  initial,
		logger:   logger,
	}
}

func (r *RetryingApplier) Apply(ctx context.Context, baseRef, path string, req MutationRequest) (*MutationResult, error) {
	var result *MutationResult

	operation := func() error {
		res, err := r.next.Apply(ctx, baseRef, path, req)
		if err != nil {
			if errors.Is(err, ErrConcurrentModification) {
				return err
			}

			return backoff.Permanent(err)
		}

		result = res

		return nil
	}

	notify := func(err error, wait time.Duration) {
		r.logger.Warn("lost ref race, retrying mutation",
			zap.String("alias", req.Alias),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(operation, r.policy(ctx), notify); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *RetryingApplier) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initial
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(b, r.attempts), ctx)
}

// Compile-time checks.
var (
	_ Applier = (*Mutator)(nil)
	_ Applier = (*RetryingApplier)(nil)
)
