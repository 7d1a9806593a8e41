package observability

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leafsense/leafsense-go/internal/logging"
)

// Endpoint serves the Prometheus metrics over HTTP.
type Endpoint struct {
	server *http.Server
	logger *slog.Logger
}

// NewEndpoint creates a telemetry endpoint on the given listen address.
func NewEndpoint(listen string, m *Metrics) *Endpoint {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))

	return &Endpoint{
		server: &http.Server{
			Addr:              listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logging.ForService("telemetry"),
	}
}

// Start serves the endpoint in a background goroutine.
func (e *Endpoint) Start() {
	go func() {
		e.logger.Info("telemetry endpoint listening", "addr", e.server.Addr)
		if err := e.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			e.logger.Error("telemetry endpoint failed", "error", err)
		}
	}()
}

// Stop shuts the endpoint down gracefully.
func (e *Endpoint) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := e.server.Shutdown(ctx); err != nil {
		e.logger.Warn("telemetry endpoint shutdown", "error", err)
	}
}
