package google

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-oauth/storage"
)

// TokenProvider resolves the OAuth token used for an account's API clients.
// HasTokenForAccount must be cheap; it is checked before every lookup.
type TokenProvider interface {
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)
	HasTokenForAccount(account string) bool
}

// FileTokenProvider reads the token cache written by the auth tools and
// refreshes expired tokens on the way out.
type FileTokenProvider struct{}

func NewFileTokenProvider() *FileTokenProvider {
	return &FileTokenProvider{}
}

func (p *FileTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	ts, err := GetTokenSourceForAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token for account %s: %w", account, err)
	}
	return token, nil
}

func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	return HasTokenForAccount(account)
}

// StoreTokenProvider serves tokens kept in an mcp-oauth TokenStore. The HTTP
// transport saves forwarded tokens there keyed by account.
type StoreTokenProvider struct {
	store storage.TokenStore
}

func NewStoreTokenProvider(store storage.TokenStore) *StoreTokenProvider {
	return &StoreTokenProvider{store: store}
}

func (p *StoreTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	token, err := p.store.GetToken(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", account, ErrNoToken)
	}
	return token, nil
}

func (p *StoreTokenProvider) HasTokenForAccount(account string) bool {
	_, err := p.store.GetToken(context.Background(), account)
	return err == nil
}

func (p *StoreTokenProvider) SaveToken(ctx context.Context, account string, token *oauth2.Token) error {
	return p.store.SaveToken(ctx, account, token)
}

// ChainTokenProvider asks each provider in order and returns the first token found.
type ChainTokenProvider struct {
	providers []TokenProvider
}

// NewChainTokenProvider creates a provider that tries providers in order.
// Nil providers are ignored.
func NewChainTokenProvider(providers ...TokenProvider) *ChainTokenProvider {
	chain := &ChainTokenProvider{}
	for _, p := range providers {
		if p != nil {
			chain.providers = append(chain.providers, p)
		}
	}
	return chain
}

// GetTokenForAccount returns the first token any provider has for the account.
func (c *ChainTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	var errs []error
	for _, p := range c.providers {
		if !p.HasTokenForAccount(account) {
			continue
		}
		token, err := p.GetTokenForAccount(ctx, account)
		if err == nil {
			return token, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("account %s: %w", account, ErrNoToken)
	}
	return nil, errors.Join(errs...)
}

// HasTokenForAccount reports whether any provider has a token for the account.
func (c *ChainTokenProvider) HasTokenForAccount(account string) bool {
	for _, p := range c.providers {
		if p.HasTokenForAccount(account) {
			return true
		}
	}
	return false
}
