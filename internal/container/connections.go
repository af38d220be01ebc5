package container

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
)

var ErrNoDatabase = errors.New("no database URL configured")

// RedisConn is the shared Redis client, closed on injector shutdown.
type RedisConn struct {
	*redis.Client
}

func (c *RedisConn) Shutdown() error {
	return c.Close()
}

// PostgresConn is the shared PostgreSQL pool, closed on injector shutdown.
type PostgresConn struct {
	*pgxpool.Pool
}

func (c *PostgresConn) Shutdown() error {
	c.Close()

	return nil
}

// RedisPackage provides the Redis connection.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisConn, error) {
		opts := do.MustInvoke[*Options](i)

		return &RedisConn{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// PostgresPackage provides the PostgreSQL pool. Invoking it without a database URL fails.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*PostgresConn, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.DatabaseURL == "" {
			return nil, ErrNoDatabase
		}

		pool, err := pgxpool.New(context.Background(), opts.DatabaseURL)
		if err != nil {
			return nil, err
		}

		return &PostgresConn{Pool: pool}, nil
	})
}
