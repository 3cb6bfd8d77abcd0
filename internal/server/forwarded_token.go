package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/giantswarm/mcp-oauth/storage"
	"golang.org/x/oauth2"

	"github.com/teemow/gdrive-mcp/internal/google"
	"github.com/teemow/gdrive-mcp/internal/instrumentation"
	"github.com/teemow/gdrive-mcp/internal/logging"
)

const (
	// AccessTokenHeader carries a Google access token forwarded by the MCP host
	// or a gateway in front of it.
	AccessTokenHeader = "X-Google-Access-Token"

	// RefreshTokenHeader optionally carries the matching refresh token.
	RefreshTokenHeader = "X-Google-Refresh-Token"

	// TokenExpiryHeader optionally carries the access token expiry in RFC3339.
	// Without it a lifetime of one hour is assumed.
	TokenExpiryHeader = "X-Google-Token-Expiry"

	// AccountHeader names the account the forwarded token belongs to.
	AccountHeader = "X-Google-Account"

	defaultAccessTokenExpiry = 1 * time.Hour

	tokenStoreTimeout = 5 * time.Second

	maxAccountLength = 254
)

// ForwardedTokenRecorder records forwarded token outcomes.
type ForwardedTokenRecorder interface {
	RecordForwardedTokenInjection(ctx context.Context, result string)
}

// ForwardedTokenConfig configures ForwardedTokenMiddleware.
type ForwardedTokenConfig struct {
	// Store keeps forwarded tokens so later requests for the same account
	// without headers can still reach Google. Optional.
	Store storage.TokenStore

	// Logger defaults to slog.Default.
	Logger *slog.Logger

	// Metrics is optional.
	Metrics ForwardedTokenRecorder
}

// ForwardedTokenMiddleware reads a Google token forwarded in request headers,
// stores it and attaches it to the request context. Requests without the
// access token header pass through untouched. A malformed account header is
// rejected with 400.
func ForwardedTokenMiddleware(config ForwardedTokenConfig) func(http.Handler) http.Handler {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	recordMetric := func(ctx context.Context, result string) {
		if config.Metrics != nil {
			config.Metrics.RecordForwardedTokenInjection(ctx, result)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			accessToken := strings.TrimSpace(r.Header.Get(AccessTokenHeader))
			if accessToken == "" {
				recordMetric(ctx, instrumentation.ForwardedTokenResultNoToken)
				next.ServeHTTP(w, r)
				return
			}

			account := strings.TrimSpace(r.Header.Get(AccountHeader))
			if account == "" {
				account = google.DefaultAccount
			}
			if !validForwardedAccount(account) {
				recordMetric(ctx, instrumentation.ForwardedTokenResultInvalid)
				http.Error(w, "invalid "+AccountHeader+" header", http.StatusBadRequest)
				return
			}

			token := &oauth2.Token{
				AccessToken:  accessToken,
				RefreshToken: r.Header.Get(RefreshTokenHeader),
				TokenType:    "Bearer",
				Expiry:       parseTokenExpiry(r.Header.Get(TokenExpiryHeader)),
			}

			result := instrumentation.ForwardedTokenResultInjected
			if config.Store != nil {
				storeCtx, cancel := context.WithTimeout(ctx, tokenStoreTimeout)
				err := config.Store.SaveToken(storeCtx, account, token)
				cancel()
				if err != nil {
					logger.Error("failed to store forwarded access token",
						logging.UserHash(account),
						logging.Err(err))
					result = instrumentation.ForwardedTokenResultStoreFailed
				} else {
					logger.Debug("stored forwarded access token",
						logging.UserHash(account),
						"has_refresh_token", token.RefreshToken != "",
						"expires_in", time.Until(token.Expiry).Round(time.Second).String())
				}
			}

			recordMetric(ctx, result)
			next.ServeHTTP(w, r.WithContext(google.ContextWithAccessToken(ctx, account, token)))
		})
	}
}

// parseTokenExpiry parses the expiry header, defaulting to one hour from now.
func parseTokenExpiry(expiryStr string) time.Time {
	if expiryStr == "" {
		return time.Now().Add(defaultAccessTokenExpiry)
	}

	expiry, err := time.Parse(time.RFC3339, expiryStr)
	if err != nil {
		return time.Now().Add(defaultAccessTokenExpiry)
	}

	return expiry
}

// validForwardedAccount accepts account names and email addresses.
func validForwardedAccount(account string) bool {
	if len(account) > maxAccountLength {
		return false
	}
	for _, r := range account {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
