package health_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/shorter/internal/health"
	"github.com/serroba/shorter/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChecker struct {
	err error
}

func (m *mockChecker) Ping(_ context.Context) error {
	return m.err
}

func TestHandler_Check(t *testing.T) {
	t.Run("returns ok when every dependency is healthy", func(t *testing.T) {
		handler := health.NewHandler(map[string]health.Checker{
			"redis":    &mockChecker{},
			"postgres": &mockChecker{},
		})

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Body.Status)
		assert.Equal(t, map[string]string{"redis": "healthy", "postgres": "healthy"}, resp.Body.Checks)
	})

	t.Run("returns degraded when one dependency is unhealthy", func(t *testing.T) {
		handler := health.NewHandler(map[string]health.Checker{
			"redis":     &mockChecker{err: errors.New("connection refused")},
			"documents": &mockChecker{},
		})

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "degraded", resp.Body.Status)
		assert.Equal(t, "unhealthy", resp.Body.Checks["redis"])
		assert.Equal(t, "healthy", resp.Body.Checks["documents"])
	})

	t.Run("serves the route", func(t *testing.T) {
		_, api := humatest.New(t)
		health.RegisterRoutes(api, health.NewHandler(map[string]health.Checker{"redis": &mockChecker{}}))

		resp := api.Get("/health")

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"status":"ok"`)
		assert.Contains(t, resp.Body.String(), `"checks":{"redis":"healthy"}`)
	})
}

func TestDocumentChecker(t *testing.T) {
	t.Run("unborn branch is healthy", func(t *testing.T) {
		checker := health.NewDocumentChecker(store.NewMemoryDocumentStore(), "main")

		assert.NoError(t, checker.Ping(context.Background()))
	})

	t.Run("store errors are unhealthy", func(t *testing.T) {
		backend := &unreachableBackend{}
		checker := health.NewDocumentChecker(store.NewDocumentStore(backend), "main")

		assert.Error(t, checker.Ping(context.Background()))
	})
}

type unreachableBackend struct {
	store.ObjectBackend
}

func (*unreachableBackend) GetRef(context.Context, string) (string, error) {
	return "", errors.New("dial tcp: connection refused")
}

func TestRedisChecker(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", addr, err)
	}

	checker := health.NewRedisChecker(client)

	assert.NoError(t, checker.Ping(ctx))
}
