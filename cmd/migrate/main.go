package main

import (
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/Rqwannn/Moodiary/internal/migration"
	"github.com/Rqwannn/Moodiary/internal/server"
)

func main() {
	command := flag.String("command", "up", "migration command (up/down/status/version/reset)")
	flag.Parse()

	if os.Getenv("APP_ENV") == "" {
		os.Setenv("APP_ENV", server.EnvDevelopment)
	}

	logger, err := server.NewLogger(os.Getenv("APP_ENV"))
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := server.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	migrator, err := migration.NewMigrator(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to create migrator", zap.Error(err))
	}
	defer migrator.Close()

	switch *command {
	case "up":
		if err := migrator.Up(); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
		logger.Info("successfully ran migrations")

	case "down":
		if err := migrator.Down(); err != nil {
			logger.Fatal("failed to rollback migrations", zap.Error(err))
		}
		logger.Info("successfully rolled back migrations")

	case "status":
		if err := migrator.Status(); err != nil {
			logger.Fatal("failed to get migration status", zap.Error(err))
		}

	case "version":
		version, err := migrator.Version()
		if err != nil {
			logger.Fatal("failed to get migration version", zap.Error(err))
		}
		logger.Info("current migration version", zap.Int64("version", version))

	case "reset":
		if err := migrator.Reset(); err != nil {
			logger.Fatal("failed to reset migrations", zap.Error(err))
		}
		logger.Info("successfully reset migrations")

	default:
		logger.Fatal("unknown command", zap.String("command", *command))
	}
}
