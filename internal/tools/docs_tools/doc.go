// Package docs_tools provides MCP tools for reading and editing Google Docs.
//
// docs_get_content returns the document text with segments that carry the
// offsets assigned by the Docs API. The write tools (insert, delete, format)
// take those offsets unchanged, so a host can read, locate and edit without
// computing positions itself. docs_format_matching_text does the locate step
// server side.
package docs_tools
