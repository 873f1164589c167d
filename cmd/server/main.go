// Package main provides the entry point for the Stagedoor search API server
package main

import (
	"context"
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/stagedoor-labs/stagedoor/domain/catalog"
	"github.com/stagedoor-labs/stagedoor/domain/favorites"
	"github.com/stagedoor-labs/stagedoor/domain/health"
	"github.com/stagedoor-labs/stagedoor/domain/profile"
	"github.com/stagedoor-labs/stagedoor/domain/quota"
	"github.com/stagedoor-labs/stagedoor/domain/search"
	"github.com/stagedoor-labs/stagedoor/internal/cache"
	"github.com/stagedoor-labs/stagedoor/internal/config"
	"github.com/stagedoor-labs/stagedoor/internal/database"
	"github.com/stagedoor-labs/stagedoor/internal/jobs"
	"github.com/stagedoor-labs/stagedoor/internal/migrate"
	"github.com/stagedoor-labs/stagedoor/internal/server"
	"github.com/stagedoor-labs/stagedoor/pkg/auth"
	"github.com/stagedoor-labs/stagedoor/pkg/embeddings"
	"github.com/stagedoor-labs/stagedoor/pkg/llm"
	"github.com/stagedoor-labs/stagedoor/pkg/logger"
)

func main() {
	// Load .env files if present (for local development)
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	fx.New(
		// Logging
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure modules
		logger.Module,
		config.Module,
		database.Module,
		migrate.Module,
		cache.Module,
		server.Module,

		// Auth module
		auth.Module,

		// AI collaborators
		embeddings.Module,
		llm.Module,

		// Domain modules
		health.Module,
		catalog.Module,
		profile.Module,
		favorites.Module,
		quota.Module,
		search.Module,

		// Scheduled jobs (cache warming)
		jobs.Module,

		// Run pending migrations before the server accepts traffic
		fx.Invoke(func(lc fx.Lifecycle, m *migrate.Migrator) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return m.Up(ctx)
				},
			})
		}),
	).Run()
}
