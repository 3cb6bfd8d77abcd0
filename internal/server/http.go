package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrive-mcp/internal/instrumentation"
)

// DefaultMCPEndpoint is where the streamable HTTP transport is mounted.
const DefaultMCPEndpoint = "/mcp"

// HTTPServerConfig configures the streamable HTTP transport.
type HTTPServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// DisableStreaming makes /mcp answer with plain JSON instead of SSE streams.
	DisableStreaming bool

	// ForwardedTokens configures the header token middleware on /mcp.
	ForwardedTokens ForwardedTokenConfig

	// Version is reported by /healthz/detailed.
	Version string

	// Metrics is optional.
	Metrics *instrumentation.Metrics

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// HTTPServer serves the MCP server over streamable HTTP next to the health endpoints.
type HTTPServer struct {
	config     HTTPServerConfig
	mcpHTTP    *mcpserver.StreamableHTTPServer
	health     *HealthChecker
	router     chi.Router
	httpServer *http.Server
}

// NewHTTPServer builds the router for an MCP server.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext, config HTTPServerConfig) *HTTPServer {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	s := &HTTPServer{
		config: config,
		mcpHTTP: mcpserver.NewStreamableHTTPServer(mcpServer,
			mcpserver.WithEndpointPath(DefaultMCPEndpoint),
			mcpserver.WithDisableStreaming(config.DisableStreaming),
		),
		health: NewHealthChecker(sc, config.Version),
	}
	s.setupRoutes()
	return s
}

func (s *HTTPServer) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpMetricsMiddleware(s.config.Metrics))

	s.health.RegisterHealthEndpoints(r)

	tokenConfig := s.config.ForwardedTokens
	if tokenConfig.Logger == nil {
		tokenConfig.Logger = s.config.Logger
	}
	if tokenConfig.Metrics == nil && s.config.Metrics != nil {
		tokenConfig.Metrics = s.config.Metrics
	}
	r.Group(func(r chi.Router) {
		r.Use(ForwardedTokenMiddleware(tokenConfig))
		r.Handle(DefaultMCPEndpoint, s.mcpHTTP)
	})

	s.router = r
}

// Handler returns the HTTP handler, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Health returns the health checker so callers can flip readiness.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Start listens on the configured address and blocks until shutdown.
func (s *HTTPServer) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.config.Logger.Info("starting HTTP server",
		"addr", s.config.Addr,
		"endpoint", DefaultMCPEndpoint,
		"streaming", !s.config.DisableStreaming)
	return s.httpServer.ListenAndServe()
}

// Shutdown marks the server not ready and stops the listener.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// httpMetricsMiddleware records request counts and durations. The route
// pattern is used as the path label to keep cardinality bounded.
func httpMetricsMiddleware(metrics *instrumentation.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if metrics == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metrics.RecordHTTPRequest(r.Context(), r.Method, path, status, time.Since(start))
		})
	}
}
