package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/shorter/internal/command"
	"github.com/serroba/shorter/internal/expiration"
	"github.com/serroba/shorter/internal/handlers"
	"github.com/serroba/shorter/internal/health"
	"github.com/serroba/shorter/internal/middleware"
	"github.com/serroba/shorter/internal/ratelimit"
	"github.com/serroba/shorter/internal/shortener"
	"go.uber.org/zap"
)

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (*command.Translator, error) {
		opts := do.MustInvoke[*Options](i)

		// The consumer cannot see a memory document, so its expirations would never land.
		var scheduler command.Scheduler
		if opts.Store != StoreMemory {
			scheduler = do.MustInvoke[*expiration.Queue](i)
		}

		return command.NewTranslator(
			do.MustInvoke[shortener.Applier](i),
			scheduler,
			command.Config{
				Ref:       opts.Branch,
				Path:      opts.LinksPath,
				CommitURL: opts.CommitURL,
			},
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		limiter := do.MustInvoke[*ratelimit.PolicyLimiter](i)

		api := humachi.New(router, huma.DefaultConfig("Shorter", "1.0.0"))
		api.UseMiddleware(middleware.PolicyRateLimiter(api, limiter, ratelimit.NewOperationScopeResolver(), logger))

		health.RegisterRoutes(api, health.NewHandler(healthChecks(i)))
		handlers.RegisterRoutes(api, handlers.NewShortlinkHandler(do.MustInvoke[*command.Translator](i)))

		return api, nil
	})
}

func healthChecks(i *do.Injector) map[string]health.Checker {
	opts := do.MustInvoke[*Options](i)

	checks := map[string]health.Checker{
		"redis":     health.NewRedisChecker(do.MustInvoke[*RedisConn](i).Client),
		"documents": health.NewDocumentChecker(do.MustInvoke[shortener.DocumentStore](i), opts.Branch),
	}

	if opts.DatabaseURL != "" {
		checks["postgres"] = health.NewPostgresChecker(do.MustInvoke[*PostgresConn](i).Pool)
	}

	return checks
}
