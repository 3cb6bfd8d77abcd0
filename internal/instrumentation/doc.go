// Package instrumentation wires OpenTelemetry metrics and tracing and the
// per-call audit log for gdrive-mcp.
//
// A Provider is built from a Config (see DefaultConfig for the environment
// variables). With the prometheus exporter the provider keeps its own
// registry, served by PrometheusHandler on the dedicated metrics listener.
//
// Instruments:
//
//	http_requests_total, http_request_duration_seconds   MCP listener traffic
//	active_sessions                                      open MCP sessions
//	google_api_operations_total, ..._duration_seconds    Docs, Drive and Sheets calls
//	oauth_auth_total                                     authorization code exchanges
//	forwarded_token_injections_total                     X-Google-* header handling
//	docs_extraction_segments, docs_extraction_gaps_total text extraction shape
//	mcp_tool_invocations_total, mcp_tool_duration_seconds tool calls
//
// Tool calls run inside a "tool.<name>" server span and Google API calls
// inside "google.<service>.<operation>" client spans. Every tool call also
// produces one ToolInvocation record for the AuditLogger. Accounts that are
// email addresses are reduced to their domain in metric labels and, unless
// AUDIT_LOGGING_INCLUDE_ACCOUNTS is set, in audit records.
package instrumentation
