package app

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rqwannn/Moodiary/internal/auth"
	"github.com/Rqwannn/Moodiary/internal/database"
	"github.com/Rqwannn/Moodiary/internal/migration"
	"github.com/Rqwannn/Moodiary/internal/server"
)

// Module combines all application modules
func Module() fx.Option {
	return fx.Options(
		// Logger
		fx.Provide(newLogger),

		// Configuration
		fx.Provide(server.LoadConfig),

		// Metrics registry
		fx.Provide(server.NewRegistry),

		// Persistence
		database.Module(),
		migration.Module(),

		// Auth Module
		auth.NewModule(),

		// Servers
		fx.Provide(server.NewServer),
		fx.Provide(server.NewMetricsServer),

		// Start the servers
		fx.Invoke(registerHooks),
	)
}

func newLogger() (*zap.Logger, error) {
	env := os.Getenv("APP_ENV")
	return server.NewLogger(env)
}

func registerHooks(
	lifecycle fx.Lifecycle,
	srv *server.Server,
	metrics *server.MetricsServer,
	log *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					log.Error("failed to start server", zap.Error(err))
				}
			}()
			if metrics.Enabled() {
				go func() {
					if err := metrics.Start(); err != nil {
						log.Error("failed to start metrics server", zap.Error(err))
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server...")
			srv.Stop()
			if metrics.Enabled() {
				return metrics.Stop(ctx)
			}
			return nil
		},
	})
}
