package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rqwannn/Moodiary/internal/config"
)

// NewModule returns the auth module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			// Provide repository
			fx.Annotate(
				func(db *gorm.DB) Repository {
					return NewRepository(db)
				},
			),
			// Provide metrics
			fx.Annotate(
				func(reg *prometheus.Registry) *Metrics {
					return NewMetrics(reg)
				},
			),
			// Provide service
			fx.Annotate(
				func(config *config.AppConfig, log *zap.Logger, repo Repository, metrics *Metrics) (*Service, error) {
					return NewService(&config.Auth, log, repo, metrics)
				},
			),
			// Provide handler
			fx.Annotate(
				func(svc *Service, log *zap.Logger) *Handler {
					return NewHandler(svc, log)
				},
			),
			// Provide middleware
			fx.Annotate(
				func(svc *Service) *AuthMiddleware {
					return NewAuthMiddleware(svc.Tokens())
				},
			),
		),
	)
}
