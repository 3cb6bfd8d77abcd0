package instrumentation

import "strings"

// Label values shared by metrics, spans and audit records.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	OAuthResultSuccess = "success"
	OAuthResultFailure = "failure"

	ForwardedTokenResultInjected    = "injected"
	ForwardedTokenResultNoToken     = "no_token"
	ForwardedTokenResultInvalid     = "invalid"
	ForwardedTokenResultStoreFailed = "store_failed"

	ServiceDocs   = "docs"
	ServiceDrive  = "drive"
	ServiceSheets = "sheets"
	ServiceAuth   = "auth"
)

// Operation values for the google.operation attribute.
const (
	OperationList   = "list"
	OperationGet    = "get"
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationSearch = "search"
	OperationExport = "export"
	OperationCopy   = "copy"
	OperationMove   = "move"
	OperationAppend = "append"
	OperationFormat = "format"
	OperationFind   = "find"
)

// Resource types recorded on tool spans and audit records.
const (
	ResourceDocument    = "document"
	ResourceFile        = "file"
	ResourceSpreadsheet = "spreadsheet"
)

const unknownDomain = "unknown"

// ExtractUserDomain returns the part after "@", or "unknown" when email has
// no usable domain.
func ExtractUserDomain(email string) string {
	_, domain, ok := strings.Cut(email, "@")
	if !ok || domain == "" || strings.Contains(domain, "@") {
		return unknownDomain
	}
	return domain
}

// accountLabel keeps short account names such as "work" and reduces
// email-shaped accounts to their domain.
func accountLabel(account string) string {
	if strings.Contains(account, "@") {
		return ExtractUserDomain(account)
	}
	return account
}
