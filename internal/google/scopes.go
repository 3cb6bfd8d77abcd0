package google

// DefaultOAuthScopes are requested when write tools are enabled.
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	"https://www.googleapis.com/auth/documents",
	"https://www.googleapis.com/auth/drive",
	"https://www.googleapis.com/auth/spreadsheets",
}

// ReadOnlyScopes are requested when the server runs without --yolo.
var ReadOnlyScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	"https://www.googleapis.com/auth/documents.readonly",
	"https://www.googleapis.com/auth/drive.readonly",
	"https://www.googleapis.com/auth/spreadsheets.readonly",
}

// ActiveScopes returns the scopes the configured OAuth client requests.
func ActiveScopes() []string {
	return GetOAuthConfig().Scopes
}
