// Package cmd implements the command-line interface for gdrive-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio or streamable HTTP
//   - version: Display version information
//   - generate-docs: Generate markdown or HTML documentation for all MCP tools
//
// The serve command reads its settings from flags, environment variables
// and an optional YAML file, in that order of precedence.
package cmd
