package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giantswarm/mcp-oauth/storage/memory"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/gdrive-mcp/internal/google"
	"github.com/teemow/gdrive-mcp/internal/instrumentation"
	"github.com/teemow/gdrive-mcp/internal/logging"
	"github.com/teemow/gdrive-mcp/internal/server"
	"github.com/teemow/gdrive-mcp/internal/tools/auth_tools"
	"github.com/teemow/gdrive-mcp/internal/tools/docs_tools"
	"github.com/teemow/gdrive-mcp/internal/tools/drive_tools"
	"github.com/teemow/gdrive-mcp/internal/tools/sheets_tools"
)

const (
	metricsStartupTimeout = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
)

func newServeCmd() *cobra.Command {
	var configPath string
	defaults := defaultServeConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server that gives AI assistants
access to Google Docs, Drive and Sheets.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport on /mcp

Safety Mode:
  By default, the server operates in read-only mode and requests read-only
  Google scopes. Use --yolo to enable write operations (document edits,
  file deletion, spreadsheet updates, etc.)

Configuration:
  Values are resolved in this order: explicit flags, environment variables,
  the YAML file given with --config, built-in defaults.

  GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET   OAuth client for the auth flow
  GDRIVE_MCP_YOLO                           enable write tools
  GDRIVE_MCP_INCLUDE_TABLES                 extract text inside tables
  METRICS_ENABLED / METRICS_ADDR            Prometheus endpoint (HTTP only)

HTTP Transport:
  A gateway may forward a Google token per request with the
  X-Google-Access-Token header (plus optional X-Google-Refresh-Token,
  X-Google-Token-Expiry and X-Google-Account). Tokens saved with
  google_save_auth_code are used otherwise.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveServeConfig(cmd, configPath, os.Getenv)
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().String("transport", defaults.Transport, "Transport type: stdio or streamable-http")
	cmd.Flags().String("http-addr", defaults.HTTPAddr, "HTTP server address (for streamable-http transport)")
	cmd.Flags().Bool("yolo", defaults.Yolo, "Enable write operations (default is read-only mode)")
	cmd.Flags().Bool("debug", defaults.Debug, "Enable debug logging")
	cmd.Flags().Bool("disable-streaming", defaults.DisableStreaming, "Answer /mcp with plain JSON instead of SSE streams")
	cmd.Flags().Bool("metrics-enabled", defaults.MetricsEnabled, "Serve Prometheus metrics (streamable-http only)")
	cmd.Flags().String("metrics-addr", defaults.MetricsAddr, "Metrics server address")
	cmd.Flags().String("google-client-id", "", "Google OAuth client ID (or GOOGLE_CLIENT_ID)")
	cmd.Flags().String("google-client-secret", "", "Google OAuth client secret (or GOOGLE_CLIENT_SECRET)")
	cmd.Flags().Bool("include-tables", defaults.IncludeTables, "Extract text from table cells in docs_get_content")

	return cmd
}

func runServe(cfg serveConfig) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout belongs to the protocol in stdio mode, so logs always go to stderr.
	logger := logging.NewLogger(os.Stderr, cfg.Debug)
	slog.SetDefault(logger)

	readOnly := !cfg.Yolo

	google.Configure(google.OAuthSettings{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		ReadOnly:     readOnly,
	})
	if err := google.MigrateDefaultToken(); err != nil {
		logger.Warn("Failed to migrate legacy token", logging.Err(err))
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if cfg.Transport == transportStdio {
		if instrConfig.MetricsExporter == instrumentation.ExporterStdout {
			logger.Warn("stdout metrics exporter conflicts with stdio transport, using prometheus")
			instrConfig.MetricsExporter = instrumentation.ExporterPrometheus
		}
		if instrConfig.TracingExporter == instrumentation.ExporterStdout {
			logger.Warn("stdout tracing exporter conflicts with stdio transport, disabling tracing")
			instrConfig.TracingExporter = instrumentation.ExporterNone
		}
	}

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("Error during instrumentation shutdown", logging.Err(err))
		}
	}()

	metrics := provider.Metrics()
	auditLogger := instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)

	if cfg.Transport != transportStdio && cfg.MetricsEnabled && provider.PrometheusHandler() != nil {
		metricsServer, err := startMetricsServer(cfg.MetricsAddr, provider, logger)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("Error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	// HTTP clients may forward tokens that are kept in memory. Tokens saved
	// through the auth tools live on disk and are shared by both transports.
	tokenStore := memory.New()
	var tokenProvider google.TokenProvider = google.NewFileTokenProvider()
	if cfg.Transport == transportStreamableHTTP {
		tokenProvider = google.NewChainTokenProvider(
			google.NewStoreTokenProvider(tokenStore),
			google.NewFileTokenProvider(),
		)
	}

	serverContext, err := server.NewServerContext(shutdownCtx,
		server.WithTokenProvider(tokenProvider),
		server.WithReadOnly(readOnly),
		server.WithIncludeTables(cfg.IncludeTables),
		server.WithInstrumentation(metrics, auditLogger),
		server.WithLogger(logging.NewSlogAdapter(logger)),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("Error during server context shutdown", logging.Err(err))
		}
	}()

	hooks := &mcpserver.Hooks{}
	hooks.AddOnRegisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		metrics.IncrementActiveSessions(ctx)
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		metrics.DecrementActiveSessions(ctx)
	})

	mcpSrv := mcpserver.NewMCPServer("gdrive-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithHooks(hooks),
		mcpserver.WithRecovery(),
	)

	if readOnly {
		logger.Info("Starting server in READ-ONLY mode (use --yolo to enable write operations)")
	} else {
		logger.Info("Starting server with WRITE operations enabled (--yolo flag is set)")
	}

	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	switch cfg.Transport {
	case transportStdio:
		return runStdioServer(mcpSrv)
	case transportStreamableHTTP:
		httpServer := server.NewHTTPServer(mcpSrv, serverContext, server.HTTPServerConfig{
			Addr:             cfg.HTTPAddr,
			DisableStreaming: cfg.DisableStreaming,
			ForwardedTokens: server.ForwardedTokenConfig{
				Store:   tokenStore,
				Logger:  logger,
				Metrics: metrics,
			},
			Version: version,
			Metrics: metrics,
			Logger:  logger,
		})
		return runStreamableHTTPServer(shutdownCtx, httpServer, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.Transport)
	}
}

func startMetricsServer(addr string, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		logger.Info("Metrics server started", "addr", metricsServer.Addr())
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(metricsStartupTimeout):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers every tool group on the MCP server.
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Docs",
			register: func() error {
				return docs_tools.RegisterDocsTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Drive",
			register: func() error {
				return drive_tools.RegisterDriveTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Sheets",
			register: func() error {
				return sheets_tools.RegisterSheetsTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Auth",
			register: func() error {
				return auth_tools.RegisterAuthTools(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", reg.name, err)
		}
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, httpServer *server.HTTPServer, logger *slog.Logger) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
