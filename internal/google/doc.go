// Package google provides OAuth2 authentication and token management for Google APIs.
//
// Tokens for the stdio transport are stored on disk, one file per account,
// under the user cache directory. Tokens forwarded to the HTTP transport are
// kept in an mcp-oauth TokenStore and attached to the request context.
//
// The TokenProvider interface allows different token sources to be plugged in,
// and ChainTokenProvider combines them.
package google
