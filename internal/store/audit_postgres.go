package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shorter/internal/audit"
)

const auditSchema = `
	CREATE TABLE IF NOT EXISTS shortlink_commits (
		commit_ref   TEXT PRIMARY KEY,
		ref          TEXT NOT NULL,
		path         TEXT NOT NULL,
		alias        TEXT NOT NULL,
		destination  TEXT,
		removal      BOOLEAN NOT NULL,
		message      TEXT NOT NULL,
		actor_tag    TEXT NOT NULL,
		actor_nick   TEXT,
		committed_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS shortlink_commits_alias_idx ON shortlink_commits (alias, committed_at);
`

// AuditPostgresStore is a PostgreSQL implementation of audit.Store.
type AuditPostgresStore struct {
	pool *pgxpool.Pool
}

// NewAuditPostgresStore creates a new PostgreSQL-backed audit store.
func NewAuditPostgresStore(pool *pgxpool.Pool) *AuditPostgresStore {
	return &AuditPostgresStore{pool: pool}
}

// EnsureSchema creates the audit table if it does not exist.
func (p *AuditPostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, auditSchema)

	return err
}

// SaveCommit is idempotent on the commit ref, so redelivered events are harmless.
func (p *AuditPostgresStore) SaveCommit(ctx context.Context, event *audit.CommitEvent) error {
	query := `
		INSERT INTO shortlink_commits
			(commit_ref, ref, path, alias, destination, removal, message, actor_tag, actor_nick, committed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (commit_ref) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query,
		event.CommitRef,
		event.Ref,
		event.Path,
		event.Alias,
		nullableString(event.Destination),
		event.Removal,
		event.Message,
		event.ActorTag,
		nullableString(event.ActorNick),
		event.CommittedAt,
	)

	return err
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// Compile-time check.
var _ audit.Store = (*AuditPostgresStore)(nil)
