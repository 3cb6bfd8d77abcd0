// Package server provides the MCP server context and the HTTP side of
// gdrive-mcp.
//
// # Key Components
//
// ServerContext caches Google Docs, Drive and Sheets clients per account and
// builds them lazily from a google.TokenProvider:
//   - FileTokenProvider: tokens saved on disk by the auth tools
//   - StoreTokenProvider: tokens forwarded by an HTTP gateway
//   - ChainTokenProvider: tries several providers in order
//
// HTTPServer mounts the streamable HTTP transport on /mcp next to the
// Kubernetes style health endpoints. ForwardedTokenMiddleware reads a Google
// access token from request headers, stores it for the account and attaches
// it to the request context.
//
// MetricsServer exposes Prometheus metrics on a separate listener.
package server
