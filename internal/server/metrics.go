package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Rqwannn/Moodiary/internal/config"
)

// NewRegistry returns a private registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// MetricsServer serves /metrics and /healthz on its own listener.
type MetricsServer struct {
	config     *config.MetricsConfig
	log        *zap.Logger
	httpServer *http.Server
}

func NewMetricsServer(cfg *config.AppConfig, reg *prometheus.Registry, log *zap.Logger) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &MetricsServer{
		config: &cfg.Metrics,
		log:    log,
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(cfg.Metrics.Host, cfg.Metrics.Port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *MetricsServer) Enabled() bool {
	return s.config.Enabled
}

func (s *MetricsServer) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *MetricsServer) Start() error {
	s.log.Info("Starting metrics server", zap.String("address", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *MetricsServer) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
