package drive_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrive-mcp/internal/drive"
	"github.com/teemow/gdrive-mcp/internal/server"
	"github.com/teemow/gdrive-mcp/internal/tools/common"
)

const (
	defaultMaxResults = 50
	maxMaxResults     = 1000
)

// RegisterDriveTools registers all Google Drive-related tools with the MCP server.
// Write tools are skipped when readOnly is set.
func RegisterDriveTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registerFileReadTools(s, sc)
	registerFolderReadTools(s, sc)
	registerCommentReadTools(s, sc)

	if readOnly {
		return nil
	}

	registerFileWriteTools(s, sc)
	registerFolderWriteTools(s, sc)
	registerCommentWriteTools(s, sc)
	return nil
}

func fileIDOption(description string) mcp.ToolOption {
	return mcp.WithString("fileId",
		mcp.Required(),
		mcp.Description(description),
	)
}

func commentIDOption() mcp.ToolOption {
	return mcp.WithString("commentId",
		mcp.Required(),
		mcp.Description("The ID of the comment"),
	)
}

func replyIDOption() mcp.ToolOption {
	return mcp.WithString("replyId",
		mcp.Required(),
		mcp.Description("The ID of the reply"),
	)
}

func maxResultsOption() mcp.ToolOption {
	return mcp.WithNumber("maxResults",
		mcp.Description("Maximum number of results to return (default: 50, max: 1000)"),
	)
}

func pageTokenOption() mcp.ToolOption {
	return mcp.WithString("pageToken",
		mcp.Description("Token from a previous call to retrieve the next page"),
	)
}

// maxResults clamps the maxResults argument to 1..1000.
func maxResults(request mcp.CallToolRequest) int {
	n := request.GetInt("maxResults", defaultMaxResults)
	switch {
	case n <= 0:
		return defaultMaxResults
	case n > maxMaxResults:
		return maxMaxResults
	}
	return n
}

func getDriveClient(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*drive.Client, error) {
	account := common.GetAccountFromArgs(ctx, request.GetArguments())
	return sc.DriveClient(ctx, account)
}

// fileList is the payload of the listing tools.
type fileList struct {
	Files         []*drive.FileInfo `json:"files"`
	Count         int               `json:"count"`
	NextPageToken string            `json:"nextPageToken,omitempty"`
}

func newFileList(files []*drive.FileInfo, next string) fileList {
	if files == nil {
		files = []*drive.FileInfo{}
	}
	return fileList{Files: files, Count: len(files), NextPageToken: next}
}
