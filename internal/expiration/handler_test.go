package expiration_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/serroba/shorter/internal/expiration"
	"github.com/serroba/shorter/internal/messaging"
	"github.com/serroba/shorter/internal/shortener"
	"github.com/serroba/shorter/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubApplier struct {
	err  error
	reqs []shortener.MutationRequest
}

func (a *stubApplier) Apply(_ context.Context, _, _ string, req shortener.MutationRequest) (*shortener.MutationResult, error) {
	a.reqs = append(a.reqs, req)
	if a.err != nil {
		return nil, a.err
	}

	return &shortener.MutationResult{CommitRef: "c1", Changed: true}, nil
}

func TestNewDeleteHandler(t *testing.T) {
	ctx := context.Background()
	msg := &expiration.Message{ID: "exp-1", Alias: "docs", Actor: shortener.Actor{Tag: "ethan"}}

	t.Run("removes the alias", func(t *testing.T) {
		documents := store.NewMemoryDocumentStore()
		mutator := shortener.NewMutator(documents, "", zap.NewNop())

		destination := "https://example.com/docs"
		_, err := mutator.Apply(ctx, "main", "shortlinks.json", shortener.MutationRequest{
			Alias: "docs", Destination: &destination, Actor: msg.Actor,
		})
		require.NoError(t, err)

		handler := expiration.NewDeleteHandler(mutator, "main", "shortlinks.json", zap.NewNop())
		require.NoError(t, handler(ctx, msg))

		tip, err := documents.ResolveRef(ctx, "main")
		require.NoError(t, err)

		text, err := documents.ReadText(ctx, tip, "shortlinks.json")
		require.NoError(t, err)
		assert.Equal(t, shortener.EmptyDocument, text)

		require.NoError(t, handler(ctx, msg), "redelivery of an applied expiration is a no-op")
	})

	t.Run("sends a removal as the scheduling actor", func(t *testing.T) {
		applier := &stubApplier{}
		handler := expiration.NewDeleteHandler(applier, "main", "shortlinks.json", zap.NewNop())

		require.NoError(t, handler(ctx, msg))
		require.Len(t, applier.reqs, 1)
		assert.True(t, applier.reqs[0].IsRemoval())
		assert.Equal(t, "docs", applier.reqs[0].Alias)
		assert.Equal(t, "ethan", applier.reqs[0].Actor.Tag)
	})

	t.Run("abandons lost races and unreachable stores", func(t *testing.T) {
		for _, cause := range []error{shortener.ErrConcurrentModification, shortener.ErrNetworkFailure} {
			applier := &stubApplier{err: fmt.Errorf("%w: boom", cause)}
			handler := expiration.NewDeleteHandler(applier, "main", "shortlinks.json", zap.NewNop())

			assert.NoError(t, handler(ctx, msg))
		}
	})

	t.Run("drops invalid messages", func(t *testing.T) {
		applier := &stubApplier{err: fmt.Errorf("%w: alias is required", shortener.ErrInvalidInput)}
		handler := expiration.NewDeleteHandler(applier, "main", "shortlinks.json", zap.NewNop())

		err := handler(ctx, msg)

		require.Error(t, err)
		assert.True(t, messaging.IsDropped(err))
	})

	t.Run("other failures are redelivered", func(t *testing.T) {
		applier := &stubApplier{err: fmt.Errorf("%w: not json", shortener.ErrMalformedDocument)}
		handler := expiration.NewDeleteHandler(applier, "main", "shortlinks.json", zap.NewNop())

		err := handler(ctx, msg)

		require.ErrorIs(t, err, shortener.ErrMalformedDocument)
		assert.False(t, messaging.IsDropped(err))
		assert.False(t, errors.Is(err, shortener.ErrInvalidInput))
	})
}
