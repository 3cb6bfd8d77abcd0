package auth_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrive-mcp/internal/drive"
	"github.com/teemow/gdrive-mcp/internal/google"
	"github.com/teemow/gdrive-mcp/internal/instrumentation"
	"github.com/teemow/gdrive-mcp/internal/server"
	"github.com/teemow/gdrive-mcp/internal/tools/common"
)

type statusResult struct {
	Account       string              `json:"account"`
	Authenticated bool                `json:"authenticated"`
	User          *drive.User         `json:"user,omitempty"`
	StorageQuota  *drive.StorageQuota `json:"storageQuota,omitempty"`
	Error         string              `json:"error,omitempty"`
}

type scopesResult struct {
	Scopes   []string `json:"scopes"`
	ReadOnly bool     `json:"readOnly"`
}

type fileAccessResult struct {
	FileID         string          `json:"fileId"`
	Accessible     bool            `json:"accessible"`
	File           *drive.FileInfo `json:"file,omitempty"`
	YourPermission string          `json:"yourPermission,omitempty"`
	Capabilities   map[string]bool `json:"capabilities,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// RegisterAuthTools registers the authentication tools. They are read-only
// and always registered.
func RegisterAuthTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	statusTool := mcp.NewTool("auth_get_status",
		mcp.WithDescription("Check whether an account is authenticated and show its user and storage quota"),
		common.AccountOption(),
	)
	s.AddTool(statusTool, common.InstrumentedToolHandlerWithService("auth_get_status",
		instrumentation.ServiceAuth, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetStatus(ctx, request, sc)
		}))

	scopesTool := mcp.NewTool("auth_list_scopes",
		mcp.WithDescription("List the OAuth scopes this server requests"),
	)
	s.AddTool(scopesTool, common.InstrumentedToolHandler("auth_list_scopes", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListScopes(ctx, request, sc)
		}))

	fileAccessTool := mcp.NewTool("auth_test_file_access",
		mcp.WithDescription("Test whether the account can open a file and what it is allowed to do with it"),
		common.AccountOption(),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The ID of the Doc, Sheet or Drive file"),
		),
	)
	s.AddTool(fileAccessTool, common.InstrumentedToolHandlerWithService("auth_test_file_access",
		instrumentation.ServiceDrive, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleTestFileAccess(ctx, request, sc)
		}))

	getAuthURLTool := mcp.NewTool("google_get_auth_url",
		mcp.WithDescription("Get the OAuth URL to authorize Google Docs, Drive and Sheets access for a specific account"),
		common.AccountOption(),
	)
	s.AddTool(getAuthURLTool, common.InstrumentedToolHandler("google_get_auth_url", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetAuthURL(ctx, request, sc)
		}))

	saveAuthCodeTool := mcp.NewTool("google_save_auth_code",
		mcp.WithDescription("Save the OAuth authorization code to complete Google authentication for a specific account"),
		common.AccountOption(),
		mcp.WithString("authCode",
			mcp.Required(),
			mcp.Description("The authorization code from Google OAuth"),
		),
	)
	s.AddTool(saveAuthCodeTool, common.InstrumentedToolHandlerWithService("google_save_auth_code",
		instrumentation.ServiceAuth, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSaveAuthCode(ctx, request, sc)
		}))

	return nil
}

func handleGetStatus(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	account := common.GetAccountFromArgs(ctx, request.GetArguments())
	result := statusResult{Account: account}

	client, err := sc.DriveClient(ctx, account)
	if err != nil {
		result.Error = err.Error()
		return common.JSONResult("", result)
	}

	about, err := client.About(ctx, true)
	if err != nil {
		result.Error = err.Error()
		return common.JSONResult("", result)
	}

	result.Authenticated = true
	result.User = &about.User
	result.StorageQuota = about.StorageQuota
	return common.JSONResult("", result)
}

func handleListScopes(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	return common.JSONResult("", scopesResult{
		Scopes:   google.ActiveScopes(),
		ReadOnly: sc.ReadOnly(),
	})
}

func handleTestFileAccess(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID, err := common.RequiredString(request, "fileId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := sc.DriveClient(ctx, common.GetAccountFromArgs(ctx, request.GetArguments()))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	access, err := client.TestFileAccess(ctx, fileID)
	if err != nil {
		return common.JSONResult("", fileAccessResult{FileID: fileID, Error: err.Error()})
	}

	return common.JSONResult("", fileAccessResult{
		FileID:         fileID,
		Accessible:     true,
		File:           access.File,
		YourPermission: access.YourPermission,
		Capabilities:   access.Capabilities,
	})
}

func handleGetAuthURL(ctx context.Context, request mcp.CallToolRequest, _ *server.ServerContext) (*mcp.CallToolResult, error) {
	account := common.GetAccountFromArgs(ctx, request.GetArguments())
	authURL := google.GetAuthURLForAccount(account)

	result := fmt.Sprintf(`To authorize Google Docs, Drive and Sheets access for account "%s":

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account
3. Grant access to Google services
4. Copy the authorization code

5. Call the google_save_auth_code tool with the code and account name to complete authentication`, account, authURL)

	return mcp.NewToolResultText(result), nil
}

func handleSaveAuthCode(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	account := common.GetAccountFromArgs(ctx, request.GetArguments())

	authCode, err := common.RequiredString(request, "authCode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := google.SaveTokenForAccount(ctx, account, authCode); err != nil {
		sc.Metrics().RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save authorization code for account %s: %v", account, err)), nil
	}
	sc.Metrics().RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)
	sc.ForgetAccount(account)

	return mcp.NewToolResultText(fmt.Sprintf("Authorization successful for account '%s'. The token is saved and the Docs, Drive and Sheets tools can now use this account.", account)), nil
}
