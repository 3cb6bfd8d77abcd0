package drive

import "strings"

// Google Workspace MIME types.
const (
	FolderMimeType       = "application/vnd.google-apps.folder"
	DocumentMimeType     = "application/vnd.google-apps.document"
	SpreadsheetMimeType  = "application/vnd.google-apps.spreadsheet"
	PresentationMimeType = "application/vnd.google-apps.presentation"
	DrawingMimeType      = "application/vnd.google-apps.drawing"
	ScriptMimeType       = "application/vnd.google-apps.script"
)

// IsWorkspaceFile reports whether mimeType is a native Google Workspace type
// that must be exported rather than downloaded.
func IsWorkspaceFile(mimeType string) bool {
	switch mimeType {
	case DocumentMimeType, SpreadsheetMimeType, PresentationMimeType, DrawingMimeType, ScriptMimeType:
		return true
	}
	return false
}

// DefaultExportMimeType returns the export format used when the caller did not pick one.
func DefaultExportMimeType(mimeType string) string {
	switch mimeType {
	case DocumentMimeType:
		return "text/plain"
	case SpreadsheetMimeType:
		return "text/csv"
	case PresentationMimeType:
		return "text/plain"
	case DrawingMimeType:
		return "image/png"
	case ScriptMimeType:
		return "application/vnd.google-apps.script+json"
	default:
		return "application/pdf"
	}
}

// IsTextMimeType reports whether content of this type can be returned as text as-is.
func IsTextMimeType(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	switch mimeType {
	case "application/json", "application/xml", "application/javascript",
		"application/x-yaml", "application/yaml", "application/vnd.google-apps.script+json":
		return true
	}
	return false
}
