package drive_tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrive-mcp/internal/drive"
	"github.com/teemow/gdrive-mcp/internal/filetext"
	"github.com/teemow/gdrive-mcp/internal/instrumentation"
	"github.com/teemow/gdrive-mcp/internal/server"
	"github.com/teemow/gdrive-mcp/internal/tools/batch"
	"github.com/teemow/gdrive-mcp/internal/tools/common"
)

// readResult is the drive_read_file payload.
type readResult struct {
	File      *drive.FileInfo `json:"file"`
	MimeType  string          `json:"mimeType"`
	Exported  bool            `json:"exported,omitempty"`
	Truncated bool            `json:"truncated"`
	Text      string          `json:"text"`
}

// exportResult is the drive_export_file payload. Binary formats are base64 encoded.
type exportResult struct {
	File      *drive.FileInfo `json:"file"`
	MimeType  string          `json:"mimeType"`
	Encoding  string          `json:"encoding"`
	Truncated bool            `json:"truncated"`
	Content   string          `json:"content"`
}

func registerFileReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	searchTool := mcp.NewTool("drive_search",
		mcp.WithDescription("Full-text search across the names and content of files in Google Drive"),
		common.AccountOption(),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to search for"),
		),
		maxResultsOption(),
	)
	s.AddTool(searchTool, common.InstrumentedToolHandlerWithService("drive_search",
		instrumentation.ServiceDrive, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearch(ctx, request, sc)
		}))

	listFilesTool := mcp.NewTool("drive_list_files",
		mcp.WithDescription("List files in Google Drive using the Drive query language"),
		common.AccountOption(),
		mcp.WithString("query",
			mcp.Description("Drive query, e.g. \"name contains 'report'\" or \"mimeType='application/pdf'\""),
		),
		maxResultsOption(),
		pageTokenOption(),
		mcp.WithString("orderBy",
			mcp.Description("Sort order, e.g. 'modifiedTime desc,name'"),
		),
		mcp.WithBoolean("includeTrashed",
			mcp.Description("Include files in the trash (default: false)"),
		),
		mcp.WithBoolean("allDrives",
			mcp.Description("Include files from shared drives (default: false)"),
		),
	)
	s.AddTool(listFilesTool, common.InstrumentedToolHandlerWithService("drive_list_files",
		instrumentation.ServiceDrive, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListFiles(ctx, request, sc)
		}))

	getFilesTool := mcp.NewTool("drive_get_files",
		mcp.WithDescription("Get metadata for one or more files in Google Drive"),
		common.AccountOption(),
		mcp.WithString("fileIds",
			mcp.Required(),
			mcp.Description("File ID (string) or array of file IDs to retrieve"),
		),
	)
	s.AddTool(getFilesTool, common.InstrumentedToolHandlerWithService("drive_get_files",
		instrumentation.ServiceDrive, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetFiles(ctx, request, sc)
		}))

	readFileTool := mcp.NewTool("drive_read_file",
		mcp.WithDescription("Read a Drive file as plain text. Google Workspace files are exported first; "+
			"PDF, DOCX, HTML and text files are converted to text."),
		common.AccountOption(),
		fileIDOption("The ID of the file to read"),
		mcp.WithNumber("maxChars",
			mcp.Description(fmt.Sprintf("Maximum number of characters to return (default: %d)", filetext.DefaultMaxChars)),
		),
	)
	s.AddTool(readFileTool, common.InstrumentedToolHandlerWithService("drive_read_file",
		instrumentation.ServiceDrive, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadFile(ctx, request, sc)
		}))

	exportFileTool := mcp.NewTool("drive_export_file",
		mcp.WithDescription("Export a Google Workspace file (Doc, Sheet, Slides) to another format"),
		common.AccountOption(),
		fileIDOption("The ID of the Google Workspace file"),
		mcp.WithString("mimeType",
			mcp.Description("Target MIME type, e.g. 'application/pdf', 'text/csv', 'text/markdown'. Defaults to a text format for the file type."),
		),
	)
	s.AddTool(exportFileTool, common.InstrumentedToolHandlerWithService("drive_export_file",
		instrumentation.ServiceDrive, instrumentation.OperationExport, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleExportFile(ctx, request, sc)
		}))
}

func registerFileWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	createFileTool := mcp.NewTool("drive_create_file",
		mcp.WithDescription("Create a file in Google Drive"),
		common.AccountOption(),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The name of the file"),
		),
		mcp.WithString("content",
			mcp.Description("File content. Leave empty to create an empty file."),
		),
		mcp.WithString("encoding",
			mcp.Description("Encoding of content: 'text' (default) or 'base64'"),
			mcp.Enum("text", "base64"),
		),
		mcp.WithString("mimeType",
			mcp.Description("MIME type of the file. Use application/vnd.google-apps.document to create a native Google Doc."),
		),
		mcp.WithString("parentFolders",
			mcp.Description("Comma-separated list of parent folder IDs"),
		),
		mcp.WithString("description",
			mcp.Description("A short description of the file"),
		),
	)
	s.AddTool(createFileTool, common.InstrumentedToolHandlerWithService("drive_create_file",
		instrumentation.ServiceDrive, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateFile(ctx, request, sc)
		}))

	updateFileTool := mcp.NewTool("drive_update_file",
		mcp.WithDescription("Update the metadata of a file: rename, describe, trash or restore, and change parents"),
		common.AccountOption(),
		fileIDOption("The ID of the file to update"),
		mcp.WithString("name",
			mcp.Description("New name"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithBoolean("trashed",
			mcp.Description("Move the file to the trash (true) or restore it (false)"),
		),
		mcp.WithString("addParents",
			mcp.Description("Comma-separated list of folder IDs to add as parents"),
		),
		mcp.WithString("removeParents",
			mcp.Description("Comma-separated list of folder IDs to remove as parents"),
		),
	)
	s.AddTool(updateFileTool, common.InstrumentedToolHandlerWithService("drive_update_file",
		instrumentation.ServiceDrive, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateFile(ctx, request, sc)
		}))

	copyFileTool := mcp.NewTool("drive_copy_file",
		mcp.WithDescription("Copy a file in Google Drive"),
		common.AccountOption(),
		fileIDOption("The ID of the file to copy"),
		mcp.WithString("name",
			mcp.Description("Name of the copy (default: 'Copy of <name>')"),
		),
		mcp.WithString("parentFolders",
			mcp.Description("Comma-separated list of folder IDs to place the copy in"),
		),
		mcp.WithString("description",
			mcp.Description("Description of the copy"),
		),
	)
	s.AddTool(copyFileTool, common.InstrumentedToolHandlerWithService("drive_copy_file",
		instrumentation.ServiceDrive, instrumentation.OperationCopy, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCopyFile(ctx, request, sc)
		}))

	deleteFilesTool := mcp.NewTool("drive_delete_files",
		mcp.WithDescription("Permanently delete one or more files from Google Drive. Use drive_update_file with trashed=true to move files to the trash instead."),
		common.AccountOption(),
		mcp.WithString("fileIds",
			mcp.Required(),
			mcp.Description("File ID (string) or array of file IDs to delete"),
		),
	)
	s.AddTool(deleteFilesTool, common.InstrumentedToolHandlerWithService("drive_delete_files",
		instrumentation.ServiceDrive, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteFiles(ctx, request, sc)
		}))
}

func handleSearch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	query, err := common.RequiredString(request, "query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	files, next, err := client.Search(ctx, query, maxResults(request))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search files: %v", err)), nil
	}

	return common.JSONResult("", newFileList(files, next))
}

func handleListFiles(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	files, next, err := client.ListFiles(ctx, &drive.ListOptions{
		Query:          request.GetString("query", ""),
		MaxResults:     maxResults(request),
		PageToken:      request.GetString("pageToken", ""),
		OrderBy:        request.GetString("orderBy", ""),
		IncludeTrashed: request.GetBool("includeTrashed", false),
		AllDrives:      request.GetBool("allDrives", false),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list files: %v", err)), nil
	}

	return common.JSONResult("", newFileList(files, next))
}

func handleGetFiles(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileIDs, err := batch.ParseStringOrArray(request.GetArguments()["fileIds"], "fileIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := batch.ProcessBatch(ctx, fileIDs, func(ctx context.Context, fileID string) (string, error) {
		info, err := client.GetFile(ctx, fileID)
		if err != nil {
			return "", err
		}
		data, err := json.Marshal(info)
		if err != nil {
			return "", err
		}
		return string(data), nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func handleReadFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID, err := common.RequiredString(request, "fileId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	content, err := client.Download(ctx, fileID, 0)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read file: %v", err)), nil
	}

	extracted, err := filetext.Extract(content.Data, content.MimeType, content.File.Name, request.GetInt("maxChars", 0))
	if errors.Is(err, filetext.ErrUnsupportedType) {
		return mcp.NewToolResultError(fmt.Sprintf("Cannot read %q as text: %v. Use drive_export_file for Google Workspace files.", content.File.Name, err)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to extract text: %v", err)), nil
	}

	return common.JSONResult("", readResult{
		File:      content.File,
		MimeType:  content.MimeType,
		Exported:  content.Exported,
		Truncated: content.Truncated || extracted.Truncated,
		Text:      extracted.Text,
	})
}

func handleExportFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID, err := common.RequiredString(request, "fileId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	content, err := client.Export(ctx, fileID, request.GetString("mimeType", ""), 0)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to export file: %v", err)), nil
	}

	result := exportResult{
		File:      content.File,
		MimeType:  content.MimeType,
		Truncated: content.Truncated,
	}
	if drive.IsTextMimeType(content.MimeType) {
		result.Encoding = "text"
		result.Content = string(content.Data)
	} else {
		result.Encoding = "base64"
		result.Content = base64.StdEncoding.EncodeToString(content.Data)
	}

	return common.JSONResult("", result)
}

func handleCreateFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	name, err := common.RequiredString(request, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data := []byte(request.GetString("content", ""))
	if request.GetString("encoding", "text") == "base64" {
		data, err = base64.StdEncoding.DecodeString(string(data))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to decode base64 content: %v", err)), nil
		}
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := client.CreateFile(ctx, name, data, &drive.CreateOptions{
		ParentFolders: common.ParseCommaList(request.GetString("parentFolders", "")),
		Description:   request.GetString("description", ""),
		MimeType:      request.GetString("mimeType", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create file: %v", err)), nil
	}

	return common.JSONResult("File created successfully:", info)
}

func handleUpdateFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID, err := common.RequiredString(request, "fileId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	options := &drive.UpdateOptions{
		Name:          common.OptionalString(request, "name"),
		Description:   common.OptionalString(request, "description"),
		Trashed:       common.OptionalBool(request, "trashed"),
		AddParents:    common.ParseCommaList(request.GetString("addParents", "")),
		RemoveParents: common.ParseCommaList(request.GetString("removeParents", "")),
	}
	if options.Name != nil && *options.Name == "" {
		return mcp.NewToolResultError("name cannot be empty"), nil
	}
	if options.Name == nil && options.Description == nil && options.Trashed == nil &&
		len(options.AddParents) == 0 && len(options.RemoveParents) == 0 {
		return mcp.NewToolResultError("At least one of name, description, trashed, addParents, or removeParents must be specified"), nil
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := client.UpdateFile(ctx, fileID, options)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update file: %v", err)), nil
	}

	return common.JSONResult("File updated successfully:", info)
}

func handleCopyFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID, err := common.RequiredString(request, "fileId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := client.CopyFile(ctx, fileID, &drive.CopyOptions{
		Name:          request.GetString("name", ""),
		ParentFolders: common.ParseCommaList(request.GetString("parentFolders", "")),
		Description:   request.GetString("description", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to copy file: %v", err)), nil
	}

	return common.JSONResult("File copied successfully:", info)
}

func handleDeleteFiles(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileIDs, err := batch.ParseStringOrArray(request.GetArguments()["fileIds"], "fileIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := batch.ProcessBatch(ctx, fileIDs, func(ctx context.Context, fileID string) (string, error) {
		if err := client.DeleteFile(ctx, fileID); err != nil {
			return "", err
		}
		return "deleted", nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}
