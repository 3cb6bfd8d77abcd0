package common

import (
	"context"

	"github.com/teemow/gdrive-mcp/internal/google"
)

// GetAccountFromArgs extracts the account name from request arguments and context.
//
// Priority order:
//  1. Account forwarded with the access token (set by the HTTP middleware)
//  2. Explicit "account" argument in request
//  3. "default"
func GetAccountFromArgs(ctx context.Context, args map[string]interface{}) string {
	if account, ok := google.AccountFromContext(ctx); ok {
		return account
	}

	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return google.DefaultAccount
}
