// Package filetext converts downloaded Drive file content to plain text.
//
// Supported inputs are plain text (UTF-8, with a Windows-1252 fallback),
// HTML, PDF and DOCX. The format is taken from the MIME type reported by
// Drive, or from the file extension when the MIME type is generic.
package filetext
