// Package common provides shared helpers for the MCP tool packages: account
// resolution, argument parsing and the instrumented handler wrapper that adds
// spans, metrics and audit logging to every tool.
package common
