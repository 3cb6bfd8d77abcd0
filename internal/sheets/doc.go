// Package sheets provides a client for reading and writing Google Sheets cell values.
//
// Only single-call value operations are covered: reading spreadsheet
// metadata, reading a range, overwriting a range and appending rows.
// Writes use the USER_ENTERED input option.
package sheets
