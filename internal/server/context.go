package server

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/gdrive-mcp/internal/docs"
	"github.com/teemow/gdrive-mcp/internal/drive"
	"github.com/teemow/gdrive-mcp/internal/google"
	"github.com/teemow/gdrive-mcp/internal/instrumentation"
	"github.com/teemow/gdrive-mcp/internal/logging"
	"github.com/teemow/gdrive-mcp/internal/sheets"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx           context.Context
	cancel        context.CancelFunc
	tokenProvider google.TokenProvider
	docsClients   map[string]*docs.Client   // Maps account name to Docs client
	driveClients  map[string]*drive.Client  // Maps account name to Drive client
	sheetsClients map[string]*sheets.Client // Maps account name to Sheets client
	readOnly      bool
	includeTables bool
	metrics       *instrumentation.Metrics
	auditLogger   *instrumentation.AuditLogger
	logger        logging.Logger
	mu            sync.RWMutex
	shutdown      bool
}

// Option configures a ServerContext
type Option func(*ServerContext)

// WithTokenProvider sets where cached clients get their tokens.
// The default reads token files from disk.
func WithTokenProvider(provider google.TokenProvider) Option {
	return func(sc *ServerContext) {
		if provider != nil {
			sc.tokenProvider = provider
		}
	}
}

// WithReadOnly disables the write tools
func WithReadOnly(readOnly bool) Option {
	return func(sc *ServerContext) {
		sc.readOnly = readOnly
	}
}

// WithIncludeTables makes table cell text part of extracted document content by default
func WithIncludeTables(include bool) Option {
	return func(sc *ServerContext) {
		sc.includeTables = include
	}
}

// WithInstrumentation sets the metrics recorder and audit logger used by tool handlers
func WithInstrumentation(metrics *instrumentation.Metrics, auditLogger *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) {
		sc.metrics = metrics
		sc.auditLogger = auditLogger
	}
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) Option {
	return func(sc *ServerContext) {
		if logger != nil {
			sc.logger = logger
		}
	}
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:           shutdownCtx,
		cancel:        cancel,
		tokenProvider: google.NewFileTokenProvider(),
		docsClients:   make(map[string]*docs.Client),
		driveClients:  make(map[string]*drive.Client),
		sheetsClients: make(map[string]*sheets.Client),
		logger:        logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(sc)
	}

	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// TokenProvider returns the provider used for cached clients
func (sc *ServerContext) TokenProvider() google.TokenProvider {
	return sc.tokenProvider
}

// ReadOnly reports whether write tools are disabled
func (sc *ServerContext) ReadOnly() bool {
	return sc.readOnly
}

// IncludeTables reports the default for surfacing table text in extracted content
func (sc *ServerContext) IncludeTables() bool {
	return sc.includeTables
}

// Metrics returns the metrics recorder, or nil when metrics are disabled
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil when auditing is disabled
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// Logger returns the server logger
func (sc *ServerContext) Logger() logging.Logger {
	return sc.logger
}

// DocsClient returns the Docs client for an account.
// A token forwarded in ctx takes precedence and yields an uncached client.
func (sc *ServerContext) DocsClient(ctx context.Context, account string) (*docs.Client, error) {
	return clientFor(ctx, sc, account, "Docs", sc.docsClients, docs.NewClientWithToken)
}

// DriveClient returns the Drive client for an account.
// A token forwarded in ctx takes precedence and yields an uncached client.
func (sc *ServerContext) DriveClient(ctx context.Context, account string) (*drive.Client, error) {
	return clientFor(ctx, sc, account, "Drive", sc.driveClients, drive.NewClientWithToken)
}

// SheetsClient returns the Sheets client for an account.
// A token forwarded in ctx takes precedence and yields an uncached client.
func (sc *ServerContext) SheetsClient(ctx context.Context, account string) (*sheets.Client, error) {
	return clientFor(ctx, sc, account, "Sheets", sc.sheetsClients, sheets.NewClientWithToken)
}

type clientFactory[T any] func(ctx context.Context, account string, token *oauth2.Token) (T, error)

func clientFor[T any](ctx context.Context, sc *ServerContext, account, service string, cache map[string]T, newClient clientFactory[T]) (T, error) {
	var zero T

	if token, ok := google.AccessTokenFromContext(ctx); ok {
		if forwarded, ok := google.AccountFromContext(ctx); ok {
			account = forwarded
		}
		return newClient(ctx, account, token)
	}

	if sc.IsShutdown() {
		return zero, fmt.Errorf("server is shutting down")
	}

	sc.mu.RLock()
	client, ok := cache[account]
	sc.mu.RUnlock()
	if ok {
		return client, nil
	}

	if !sc.tokenProvider.HasTokenForAccount(account) {
		return zero, fmt.Errorf("%w: %s", google.ErrNoToken, google.GetAuthenticationErrorMessage(account))
	}

	token, err := sc.tokenProvider.GetTokenForAccount(sc.ctx, account)
	if err != nil {
		return zero, fmt.Errorf("failed to get token for account %s: %w", account, err)
	}

	client, err = newClient(sc.ctx, account, token)
	if err != nil {
		sc.logger.Warn("failed to create client",
			"service", service,
			"account", account,
			"error", err)
		return zero, err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	// Another request may have won the race; keep the first client.
	if existing, ok := cache[account]; ok {
		return existing, nil
	}
	cache[account] = client
	return client, nil
}

// SetDocsClient sets the Docs client for a specific account
func (sc *ServerContext) SetDocsClient(account string, client *docs.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.docsClients[account] = client
}

// SetDriveClient sets the Drive client for a specific account
func (sc *ServerContext) SetDriveClient(account string, client *drive.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.driveClients[account] = client
}

// SetSheetsClient sets the Sheets client for a specific account
func (sc *ServerContext) SetSheetsClient(account string, client *sheets.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.sheetsClients[account] = client
}

// ForgetAccount drops cached clients so the next call picks up a new token
func (sc *ServerContext) ForgetAccount(account string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	delete(sc.docsClients, account)
	delete(sc.driveClients, account)
	delete(sc.sheetsClients, account)
}

// CachedAccounts returns the number of accounts with at least one cached client
func (sc *ServerContext) CachedAccounts() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	accounts := make(map[string]struct{})
	for account := range sc.docsClients {
		accounts[account] = struct{}{}
	}
	for account := range sc.driveClients {
		accounts[account] = struct{}{}
	}
	for account := range sc.sheetsClients {
		accounts[account] = struct{}{}
	}
	return len(accounts)
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
