// Package auth_tools provides MCP tools for Google authentication.
//
// google_get_auth_url and google_save_auth_code bootstrap a per-account OAuth
// token for stdio use. auth_get_status, auth_list_scopes and
// auth_test_file_access let a client check which identity and scopes are in
// effect before calling the Docs, Drive or Sheets tools.
package auth_tools
