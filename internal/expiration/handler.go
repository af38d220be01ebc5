package expiration

import (
	"context"
	"errors"

	"github.com/serroba/shorter/internal/messaging"
	"github.com/serroba/shorter/internal/shortener"
	"go.uber.org/zap"
)

// NewDeleteHandler returns the delivery handler that removes an expired alias.
// Expiration is best effort: losing a ref race or failing to reach the store is logged and
// the message acknowledged. Only failures that another delivery might fix are returned.
func NewDeleteHandler(applier shortener.Applier, ref, path string, logger *zap.Logger) messaging.Handler[Message] {
	return func(ctx context.Context, msg *Message) error {
		req := shortener.MutationRequest{
			Alias: msg.Alias,
			Actor: msg.Actor,
		}

		result, err := applier.Apply(ctx, ref, path, req)

		switch {
		case err == nil:
			logger.Info("shortlink expired",
				zap.String("id", msg.ID),
				zap.String("alias", msg.Alias),
				zap.String("commit", result.CommitRef),
				zap.Bool("changed", result.Changed),
			)

			return nil
		case errors.Is(err, shortener.ErrConcurrentModification), errors.Is(err, shortener.ErrNetworkFailure):
			logger.Warn("shortlink expiration abandoned",
				zap.String("id", msg.ID),
				zap.String("alias", msg.Alias),
				zap.Error(err),
			)

			return nil
		case errors.Is(err, shortener.ErrInvalidInput):
			return messaging.Drop(err)
		default:
			return err
		}
	}
}
