// Package sheets_tools provides MCP tools for reading and writing Google Sheets values.
//
// Ranges use A1 notation, e.g. "Sheet1!A1:C10". Values written by
// sheets_update_values and sheets_append_values are interpreted as if typed
// by a user, so formulas like "=SUM(A1:A3)" are evaluated.
package sheets_tools
