package docs_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrive-mcp/internal/docs"
	"github.com/teemow/gdrive-mcp/internal/server"
	"github.com/teemow/gdrive-mcp/internal/tools/common"
)

// RegisterDocsTools registers all Google Docs-related tools with the MCP server.
// Write tools are skipped when readOnly is set.
func RegisterDocsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registerReadTools(s, sc)
	if !readOnly {
		registerWriteTools(s, sc)
	}
	return nil
}

func documentIDOption() mcp.ToolOption {
	return mcp.WithString("documentId",
		mcp.Required(),
		mcp.Description("The ID of the Google Doc (the long string in the document URL)"),
	)
}

func tabIDOption() mcp.ToolOption {
	return mcp.WithString("tabId",
		mcp.Description("Tab to operate on. Defaults to the first tab."),
	)
}

func getDocsClient(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*docs.Client, error) {
	account := common.GetAccountFromArgs(ctx, request.GetArguments())
	return sc.DocsClient(ctx, account)
}
