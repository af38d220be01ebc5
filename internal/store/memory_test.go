package store_test

import (
	"context"
	"testing"

	"github.com/serroba/shorter/internal/shortener"
	"github.com/serroba/shorter/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("objects are write once", func(t *testing.T) {
		backend := store.NewMemoryBackend()

		require.NoError(t, backend.PutObject(ctx, "id", []byte("first")))
		require.NoError(t, backend.PutObject(ctx, "id", []byte("second")))

		data, err := backend.GetObject(ctx, "id")
		require.NoError(t, err)
		assert.Equal(t, []byte("first"), data)

		_, err = backend.GetObject(ctx, "missing")
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("swap ref", func(t *testing.T) {
		backend := store.NewMemoryBackend()

		swapped, err := backend.SwapRef(ctx, "main", "c0", "c1")
		require.NoError(t, err)
		assert.False(t, swapped, "a missing ref only matches an empty expectation")

		swapped, err = backend.SwapRef(ctx, "main", "", "c1")
		require.NoError(t, err)
		assert.True(t, swapped)

		swapped, err = backend.SwapRef(ctx, "main", "", "c2")
		require.NoError(t, err)
		assert.False(t, swapped, "an existing ref cannot be created again")

		swapped, err = backend.SwapRef(ctx, "main", "c1", "c2")
		require.NoError(t, err)
		assert.True(t, swapped)

		target, err := backend.GetRef(ctx, "main")
		require.NoError(t, err)
		assert.Equal(t, "c2", target)
	})
}
