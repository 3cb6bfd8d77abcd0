package google

import (
	"context"

	"golang.org/x/oauth2"
)

type contextKey int

const (
	accessTokenKey contextKey = iota
	accountKey
)

// ContextWithAccessToken attaches a forwarded token and the account it
// belongs to. Clients built for such a context use the token directly.
func ContextWithAccessToken(ctx context.Context, account string, token *oauth2.Token) context.Context {
	ctx = context.WithValue(ctx, accessTokenKey, token)
	return context.WithValue(ctx, accountKey, account)
}

// AccessTokenFromContext returns the forwarded token, if any.
func AccessTokenFromContext(ctx context.Context) (*oauth2.Token, bool) {
	token, ok := ctx.Value(accessTokenKey).(*oauth2.Token)
	if !ok || token == nil || token.AccessToken == "" {
		return nil, false
	}
	return token, true
}

// AccountFromContext returns the forwarded account name, if any.
func AccountFromContext(ctx context.Context) (string, bool) {
	account, ok := ctx.Value(accountKey).(string)
	return account, ok && account != ""
}
