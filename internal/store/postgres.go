package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shorter/internal/shortener"
)

const objectSchema = `
	CREATE TABLE IF NOT EXISTS git_objects (
		id         TEXT PRIMARY KEY,
		data       BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS git_refs (
		name       TEXT PRIMARY KEY,
		target     TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
`

// PostgresBackend is a PostgreSQL implementation of ObjectBackend.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend creates a new PostgreSQL-backed object backend.
func NewPostgresBackend(pool *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{pool: pool}
}

// EnsureSchema creates the object and ref tables if they do not exist.
func (p *PostgresBackend) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, objectSchema)

	return err
}

func (p *PostgresBackend) PutObject(ctx context.Context, id string, data []byte) error {
	query := `
		INSERT INTO git_objects (id, data)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query, id, data)

	return err
}

func (p *PostgresBackend) GetObject(ctx context.Context, id string) ([]byte, error) {
	var data []byte

	err := p.pool.QueryRow(ctx, `SELECT data FROM git_objects WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("object %s: %w", id, shortener.ErrNotFound)
		}

		return nil, err
	}

	return data, nil
}

func (p *PostgresBackend) GetRef(ctx context.Context, name string) (string, error) {
	var target string

	err := p.pool.QueryRow(ctx, `SELECT target FROM git_refs WHERE name = $1`, name).Scan(&target)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("ref %s: %w", name, shortener.ErrNotFound)
		}

		return "", err
	}

	return target, nil
}

// SwapRef relies on the row-level atomicity of a single conditional statement.
func (p *PostgresBackend) SwapRef(ctx context.Context, name, expected, next string) (bool, error) {
	if expected == "" {
		tag, err := p.pool.Exec(ctx, `
			INSERT INTO git_refs (name, target)
			VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
		`, name, next)
		if err != nil {
			return false, err
		}

		return tag.RowsAffected() == 1, nil
	}

	tag, err := p.pool.Exec(ctx, `
		UPDATE git_refs
		SET target = $3, updated_at = now()
		WHERE name = $1 AND target = $2
	`, name, expected, next)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// Shutdown is a no-op for PostgresBackend (pool managed externally).
func (p *PostgresBackend) Shutdown() error {
	return nil
}
