package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/teemow/gdrive-mcp/internal/instrumentation"
)

const (
	DefaultMetricsAddr = ":9090"

	metricsReadHeaderTimeout = 10 * time.Second
	metricsWriteTimeout      = 10 * time.Second
	metricsIdleTimeout       = 60 * time.Second
)

type MetricsServerConfig struct {
	// Addr defaults to DefaultMetricsAddr.
	Addr string

	// InstrumentationProvider must be enabled and use the prometheus exporter.
	InstrumentationProvider *instrumentation.Provider
}

// MetricsServer serves the provider's Prometheus registry on its own
// listener, apart from the MCP endpoint.
type MetricsServer struct {
	httpServer *http.Server
	addr       string
	metrics    http.Handler
}

func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	provider := config.InstrumentationProvider
	switch {
	case provider == nil:
		return nil, fmt.Errorf("instrumentation provider is required for metrics server")
	case !provider.Enabled():
		return nil, fmt.Errorf("instrumentation provider is not enabled")
	case provider.PrometheusHandler() == nil:
		return nil, fmt.Errorf("metrics server requires the prometheus exporter")
	}

	addr := config.Addr
	if addr == "" {
		addr = DefaultMetricsAddr
	}
	return &MetricsServer{addr: addr, metrics: provider.PrometheusHandler()}, nil
}

// Handler routes GET /metrics and GET /healthz.
func (s *MetricsServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", s.metrics)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// StartWithReadySignal binds the listener, closes ready and serves until
// Shutdown. Addr reports the bound address afterwards, so ":0" works.
func (s *MetricsServer) StartWithReadySignal(ready chan<- struct{}) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.addr = listener.Addr().String()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: metricsReadHeaderTimeout,
		WriteTimeout:      metricsWriteTimeout,
		IdleTimeout:       metricsIdleTimeout,
	}

	close(ready)
	return s.httpServer.Serve(listener)
}

// Shutdown is a no-op before StartWithReadySignal.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *MetricsServer) Addr() string {
	return s.addr
}
