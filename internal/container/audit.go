package container

import (
	"context"
	"fmt"

	"github.com/samber/do"
	"github.com/serroba/shorter/internal/audit"
	auditstore "github.com/serroba/shorter/internal/audit/store"
	"github.com/serroba/shorter/internal/store"
	"go.uber.org/zap"
)

// AuditPackage provides where commit events are persisted: PostgreSQL when a database is
// configured, otherwise the log.
func AuditPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (audit.Store, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.DatabaseURL == "" {
			return auditstore.NewNoop(logger.Named("audit")), nil
		}

		pool := do.MustInvoke[*PostgresConn](i)
		auditStore := store.NewAuditPostgresStore(pool.Pool)

		ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
		defer cancel()

		if err := auditStore.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("creating audit table: %w", err)
		}

		return auditStore, nil
	})
}
