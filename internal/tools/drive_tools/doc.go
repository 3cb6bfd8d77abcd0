// Package drive_tools provides MCP (Model Context Protocol) tools for Google Drive operations.
//
// Read tools search and list files, fetch metadata for several files at once,
// read a file as plain text, export Google Workspace files and browse comments.
// Write tools create, update, copy, move and delete files and manage comments
// and replies; they are not registered in read-only mode.
//
// Tools that take fileIds accept a single ID, an array of IDs, or a string
// holding a JSON array, and process the IDs concurrently.
//
// Example tool usage:
//
//	drive_list_files({
//	  account: "personal",
//	  query: "mimeType='application/pdf' and name contains 'invoice'",
//	  maxResults: 10
//	})
//
//	drive_read_file({fileId: "1AbC..."})
package drive_tools
