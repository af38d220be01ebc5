package container

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/do"
	"github.com/serroba/shorter/internal/audit"
	"github.com/serroba/shorter/internal/github"
	"github.com/serroba/shorter/internal/messaging"
	"github.com/serroba/shorter/internal/shortener"
	"github.com/serroba/shorter/internal/store"
	"go.uber.org/zap"
)

const (
	retryInitialInterval = 50 * time.Millisecond
	schemaTimeout        = 10 * time.Second
)

// DocumentStorePackage provides the shortener.DocumentStore selected by Options.Store.
func DocumentStorePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.DocumentStore, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		switch opts.Store {
		case StoreGitHub:
			client, err := github.NewClient(github.Config{
				BaseURL: opts.GitHubBaseURL,
				Token:   opts.GitHubToken,
				Logger:  logger.Named("github"),
			})
			if err != nil {
				return nil, err
			}

			return github.NewDocumentStore(client, opts.GitHubOwner, opts.GitHubRepo), nil
		case StoreRedis:
			redisClient := do.MustInvoke[*RedisConn](i)

			return store.NewDocumentStore(store.NewRedisBackend(redisClient.Client)), nil
		case StorePostgres:
			backend, err := postgresBackend(i)
			if err != nil {
				return nil, err
			}

			return store.NewDocumentStore(backend), nil
		case StoreMemory:
			return store.NewMemoryDocumentStore(), nil
		default:
			return nil, fmt.Errorf("unknown store %q", opts.Store)
		}
	})
}

// postgresBackend opens the object tables, fronted by the Redis object cache when enabled.
func postgresBackend(i *do.Injector) (store.ObjectBackend, error) {
	opts := do.MustInvoke[*Options](i)

	pool, err := do.Invoke[*PostgresConn](i)
	if err != nil {
		return nil, err
	}

	backend := store.NewPostgresBackend(pool.Pool)

	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()

	if err := backend.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("creating object tables: %w", err)
	}

	_, cacheTTL, err := opts.Durations()
	if err != nil {
		return nil, err
	}

	if cacheTTL <= 0 {
		return backend, nil
	}

	redisClient := do.MustInvoke[*RedisConn](i)

	return store.NewRedisCacheBackend(backend, redisClient.Client, cacheTTL), nil
}

// MutatorPackage provides the shortener.Applier used by commands and expirations: the
// mutator, retried when configured, with every commit published as an audit event.
func MutatorPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.Applier, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		documents := do.MustInvoke[shortener.DocumentStore](i)

		var applier shortener.Applier = shortener.NewMutator(documents, opts.AuthorDomain, logger)

		if opts.RetryAttempts > 1 {
			applier = shortener.NewRetryingApplier(applier, opts.RetryAttempts-1, retryInitialInterval, logger)
		}

		publish := do.MustInvoke[messaging.Publish[audit.CommitEvent]](i)

		return audit.NewRecordingApplier(applier, publish, logger), nil
	})
}
