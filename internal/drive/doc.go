// Package drive provides a client for interacting with the Google Drive API.
//
// The client covers the file operations the MCP tools expose:
//   - Listing, searching and browsing folders (trashed files are excluded unless asked for)
//   - Reading metadata and downloading content, with Google Workspace files exported
//   - Creating files and folders, copying, moving, renaming, trashing and deleting
//   - Listing, creating and replying to comments
//   - Reporting the signed-in user, storage quota and per-file access
//
// Each client instance is bound to a specific account. Clients are created
// from a google.TokenProvider, from a raw token forwarded by an HTTP
// transport, or from explicit API options (used by tests to target a fake server).
//
// Example usage:
//
//	client, err := drive.NewClientForAccountWithProvider(ctx, "default", google.NewFileTokenProvider())
//	if err != nil {
//	    return err
//	}
//
//	files, next, err := client.ListFiles(ctx, &drive.ListOptions{
//	    Query:      "mimeType='application/pdf'",
//	    MaxResults: 10,
//	})
package drive
