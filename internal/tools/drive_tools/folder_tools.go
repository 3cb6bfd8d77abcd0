package drive_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrive-mcp/internal/drive"
	"github.com/teemow/gdrive-mcp/internal/instrumentation"
	"github.com/teemow/gdrive-mcp/internal/server"
	"github.com/teemow/gdrive-mcp/internal/tools/common"
)

func registerFolderReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	listFolderTool := mcp.NewTool("drive_list_folder",
		mcp.WithDescription("List the files and folders inside a Google Drive folder"),
		common.AccountOption(),
		mcp.WithString("folderId",
			mcp.Description("The ID of the folder (default: 'root', the top of My Drive)"),
		),
		maxResultsOption(),
		pageTokenOption(),
	)
	s.AddTool(listFolderTool, common.InstrumentedToolHandlerWithService("drive_list_folder",
		instrumentation.ServiceDrive, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListFolder(ctx, request, sc)
		}))
}

func registerFolderWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	createFolderTool := mcp.NewTool("drive_create_folder",
		mcp.WithDescription("Create a new folder in Google Drive"),
		common.AccountOption(),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The name of the folder"),
		),
		mcp.WithString("parentFolders",
			mcp.Description("Comma-separated list of parent folder IDs where the folder should be created"),
		),
	)
	s.AddTool(createFolderTool, common.InstrumentedToolHandlerWithService("drive_create_folder",
		instrumentation.ServiceDrive, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateFolder(ctx, request, sc)
		}))

	moveFileTool := mcp.NewTool("drive_move_file",
		mcp.WithDescription("Move or rename a file in Google Drive"),
		common.AccountOption(),
		fileIDOption("The ID of the file to move or rename"),
		mcp.WithString("newName",
			mcp.Description("The new name for the file (leave empty to keep current name)"),
		),
		mcp.WithString("addParents",
			mcp.Description("Comma-separated list of folder IDs to add as parents"),
		),
		mcp.WithString("removeParents",
			mcp.Description("Comma-separated list of folder IDs to remove as parents"),
		),
	)
	s.AddTool(moveFileTool, common.InstrumentedToolHandlerWithService("drive_move_file",
		instrumentation.ServiceDrive, instrumentation.OperationMove, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleMoveFile(ctx, request, sc)
		}))
}

func handleListFolder(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	folderID := request.GetString("folderId", "")
	if folderID == "" {
		folderID = "root"
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	files, next, err := client.ListFolder(ctx, folderID, maxResults(request), request.GetString("pageToken", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list folder: %v", err)), nil
	}

	return common.JSONResult("", newFileList(files, next))
}

func handleCreateFolder(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	name, err := common.RequiredString(request, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	folderInfo, err := client.CreateFolder(ctx, name, common.ParseCommaList(request.GetString("parentFolders", "")))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create folder: %v", err)), nil
	}

	return common.JSONResult("Folder created successfully:", folderInfo)
}

func handleMoveFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID, err := common.RequiredString(request, "fileId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	options := &drive.MoveOptions{
		NewName:       request.GetString("newName", ""),
		AddParents:    common.ParseCommaList(request.GetString("addParents", "")),
		RemoveParents: common.ParseCommaList(request.GetString("removeParents", "")),
	}
	if options.NewName == "" && len(options.AddParents) == 0 && len(options.RemoveParents) == 0 {
		return mcp.NewToolResultError("At least one of newName, addParents, or removeParents must be specified"), nil
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fileInfo, err := client.MoveFile(ctx, fileID, options)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to move file: %v", err)), nil
	}

	return common.JSONResult("File moved/renamed successfully:", fileInfo)
}
