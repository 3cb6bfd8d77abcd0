package google

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// AppName names the token cache directory.
	AppName = "gdrive-mcp"

	// DefaultAccount is used when a caller does not name an account.
	DefaultAccount = "default"

	// EnvClientID and EnvClientSecret hold the OAuth client credentials.
	EnvClientID     = "GOOGLE_CLIENT_ID"
	EnvClientSecret = "GOOGLE_CLIENT_SECRET"

	oobRedirectURL = "urn:ietf:wg:oauth:2.0:oob"
)

// ErrNoToken is returned when no token is stored for an account.
var ErrNoToken = errors.New("no valid Google OAuth token found")

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// OAuthSettings configures the OAuth client used for every account.
type OAuthSettings struct {
	ClientID     string
	ClientSecret string
	ReadOnly     bool
}

var (
	settingsMu sync.RWMutex
	settings   = OAuthSettings{}
)

// Configure sets the OAuth client credentials and scope set. Empty
// credentials fall back to GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET.
func Configure(s OAuthSettings) {
	if s.ClientID == "" {
		s.ClientID = os.Getenv(EnvClientID)
	}
	if s.ClientSecret == "" {
		s.ClientSecret = os.Getenv(EnvClientSecret)
	}
	settingsMu.Lock()
	settings = s
	settingsMu.Unlock()
}

// GetOAuthConfig returns the OAuth2 configuration shared by Docs, Drive and Sheets.
func GetOAuthConfig() *oauth2.Config {
	settingsMu.RLock()
	s := settings
	settingsMu.RUnlock()

	if s.ClientID == "" {
		s.ClientID = os.Getenv(EnvClientID)
	}
	if s.ClientSecret == "" {
		s.ClientSecret = os.Getenv(EnvClientSecret)
	}

	scopes := DefaultOAuthScopes
	if s.ReadOnly {
		scopes = ReadOnlyScopes
	}

	return &oauth2.Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  oobRedirectURL,
		Scopes:       append([]string(nil), scopes...),
	}
}

// validateAccountName rejects anything that could escape the token directory.
func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, '-' and '_' are allowed", account)
	}
	return nil
}

func tokenDir() string {
	return filepath.Join(userCacheDir(), AppName)
}

func getTokenFilePath(account string) string {
	return filepath.Join(tokenDir(), fmt.Sprintf("google-%s.token", account))
}

// MigrateDefaultToken renames a single-account token file to the per-account
// name used for the default account. It is a no-op when there is nothing to move.
func MigrateDefaultToken() error {
	oldFile := filepath.Join(tokenDir(), "google.token")
	newFile := getTokenFilePath(DefaultAccount)

	if _, err := os.Stat(oldFile); os.IsNotExist(err) {
		return nil
	}
	if _, err := os.Stat(newFile); err == nil {
		return nil
	}
	if err := os.Rename(oldFile, newFile); err != nil {
		return fmt.Errorf("failed to migrate token file: %w", err)
	}
	return nil
}

// HasToken checks if a token exists for the default account.
func HasToken() bool {
	return HasTokenForAccount(DefaultAccount)
}

// HasTokenForAccount checks if a token file exists for the account.
func HasTokenForAccount(account string) bool {
	if err := validateAccountName(account); err != nil {
		return false
	}
	_, err := os.Stat(getTokenFilePath(account))
	return err == nil
}

// GetAuthURLForAccount returns the consent URL for an account.
func GetAuthURLForAccount(account string) string {
	conf := GetOAuthConfig()
	return conf.AuthCodeURL(account, oauth2.AccessTypeOffline)
}

// SaveTokenForAccount exchanges an authorization code and stores the result.
func SaveTokenForAccount(ctx context.Context, account, authCode string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if strings.TrimSpace(authCode) == "" {
		return fmt.Errorf("authorization code cannot be empty")
	}

	conf := GetOAuthConfig()
	t, err := conf.Exchange(ctx, strings.TrimSpace(authCode))
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return writeToken(account, t)
}

// writeToken stores t as JSON so the expiry survives restarts.
func writeToken(account string, t *oauth2.Token) error {
	if err := os.MkdirAll(tokenDir(), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(getTokenFilePath(account), data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// readToken accepts the JSON format written by writeToken and the older
// "<access> <refresh>" format.
func readToken(account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(getTokenFilePath(account))
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", account, ErrNoToken)
	}
	data = bytes.TrimSpace(data)

	if bytes.HasPrefix(data, []byte("{")) {
		var t oauth2.Token
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("invalid token file for account %s: %w", account, err)
		}
		if t.AccessToken == "" && t.RefreshToken == "" {
			return nil, fmt.Errorf("account %s: %w", account, ErrNoToken)
		}
		return &t, nil
	}

	f := strings.Fields(string(data))
	if len(f) != 2 {
		return nil, fmt.Errorf("invalid token format for account %s", account)
	}
	// The legacy format carries no expiry; force a refresh on first use.
	return &oauth2.Token{
		AccessToken:  f[0],
		TokenType:    "Bearer",
		RefreshToken: f[1],
		Expiry:       time.Unix(1, 0),
	}, nil
}

// GetTokenSourceForAccount returns a validated, refreshing token source.
func GetTokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	token, err := readToken(account)
	if err != nil {
		return nil, err
	}

	ts := GetOAuthConfig().TokenSource(ctx, token)
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("cached token for account %s is invalid: %w", account, err)
	}
	return ts, nil
}

// GetHTTPClientForAccount returns an authenticated HTTP client for the account.
func GetHTTPClientForAccount(ctx context.Context, account string) (*http.Client, error) {
	ts, err := GetTokenSourceForAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	return newHTTPClient(ctx, ts), nil
}

// NewHTTPClient returns an HTTP client that authenticates with token and
// refreshes it through the configured OAuth client when possible.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func NewHTTPClient(ctx context.Context, token *oauth2.Token) *http.Client {
	var ts oauth2.TokenSource
	if token.RefreshToken != "" {
		ts = GetOAuthConfig().TokenSource(ctx, token)
	} else {
		ts = oauth2.StaticTokenSource(token)
	}
	return newHTTPClient(ctx, ts)
}

func newHTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		ForceAttemptHTTP2: false,
	}
	return client
}

// GetAuthenticationErrorMessage explains how to authorize an account.
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf(`Google OAuth token not found for account "%s".

To authorize this account:
1. Call google_get_auth_url with account "%s" and open the URL in a browser
2. Grant access to Google Docs, Drive and Sheets
3. Call google_save_auth_code with account "%s" and the authorization code

Tokens are stored in %s.`, account, account, account, tokenDir())
}

func userCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	return os.TempDir()
}
