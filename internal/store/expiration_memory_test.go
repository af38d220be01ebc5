package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/shorter/internal/expiration"
	"github.com/serroba/shorter/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpirationMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	s := store.NewExpirationMemoryStore()

	for i, id := range []string{"late", "early", "future"} {
		offset := []time.Duration{-time.Second, -time.Minute, time.Minute}[i]
		require.NoError(t, s.Add(ctx, &expiration.Message{ID: id, Alias: id, NotBefore: now.Add(offset)}))
	}

	due, err := s.Due(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "early", due[0].ID)
	assert.Equal(t, "late", due[1].ID)

	due, err = s.Due(ctx, now, 1)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "early", due[0].ID)
	assert.Equal(t, 3, s.Len(), "due messages stay until removed")

	require.NoError(t, s.Remove(ctx, "early"))
	require.NoError(t, s.Remove(ctx, "unknown"))

	due, err = s.Due(ctx, now.Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "late", due[0].ID)
	assert.Equal(t, "future", due[1].ID)
}
