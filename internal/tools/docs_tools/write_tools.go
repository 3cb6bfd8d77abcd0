package docs_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrive-mcp/internal/docs"
	"github.com/teemow/gdrive-mcp/internal/instrumentation"
	"github.com/teemow/gdrive-mcp/internal/logging"
	"github.com/teemow/gdrive-mcp/internal/server"
	"github.com/teemow/gdrive-mcp/internal/tools/common"
)

func styleOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithBoolean("bold", mcp.Description("Set or clear bold")),
		mcp.WithBoolean("italic", mcp.Description("Set or clear italic")),
		mcp.WithBoolean("underline", mcp.Description("Set or clear underline")),
		mcp.WithBoolean("strikethrough", mcp.Description("Set or clear strikethrough")),
		mcp.WithNumber("fontSize", mcp.Description("Font size in points")),
		mcp.WithString("fontFamily", mcp.Description("Font family, e.g. 'Arial'")),
		mcp.WithString("foregroundColor", mcp.Description("Text colour as #RRGGBB or #RGB")),
		mcp.WithString("backgroundColor", mcp.Description("Highlight colour as #RRGGBB or #RGB")),
		mcp.WithString("linkUrl", mcp.Description("Turn the text into a link to this URL")),
	}
}

func parseStyle(request mcp.CallToolRequest) docs.TextStyleOptions {
	style := docs.TextStyleOptions{
		Bold:            common.OptionalBool(request, "bold"),
		Italic:          common.OptionalBool(request, "italic"),
		Underline:       common.OptionalBool(request, "underline"),
		Strikethrough:   common.OptionalBool(request, "strikethrough"),
		FontFamily:      request.GetString("fontFamily", ""),
		ForegroundColor: request.GetString("foregroundColor", ""),
		BackgroundColor: request.GetString("backgroundColor", ""),
		Link:            request.GetString("linkUrl", ""),
	}
	if size, ok := request.GetArguments()["fontSize"].(float64); ok {
		style.FontSize = &size
	}
	return style
}

func registerWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	createTool := mcp.NewTool("docs_create_document",
		mcp.WithDescription("Create a new Google Doc, optionally with initial text"),
		common.AccountOption(),
		mcp.WithString("title", mcp.Required(), mcp.Description("The document title")),
		mcp.WithString("content", mcp.Description("Initial plain text content")),
	)
	s.AddTool(createTool, common.InstrumentedToolHandlerWithService("docs_create_document",
		instrumentation.ServiceDocs, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateDocument(ctx, request, sc)
		}))

	insertTool := mcp.NewTool("docs_insert_text",
		mcp.WithDescription("Insert text at an offset. Use startOffset/endOffset values from docs_get_content."),
		common.AccountOption(),
		documentIDOption(),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Offset to insert at (>= 1)")),
		mcp.WithString("text", mcp.Required(), mcp.Description("The text to insert")),
		tabIDOption(),
	)
	s.AddTool(insertTool, common.InstrumentedToolHandlerWithService("docs_insert_text",
		instrumentation.ServiceDocs, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleInsertText(ctx, request, sc)
		}))

	deleteTool := mcp.NewTool("docs_delete_content_range",
		mcp.WithDescription("Delete the content between two offsets (end exclusive)"),
		common.AccountOption(),
		documentIDOption(),
		mcp.WithNumber("startIndex", mcp.Required(), mcp.Description("Start offset (>= 1)")),
		mcp.WithNumber("endIndex", mcp.Required(), mcp.Description("End offset, exclusive (> startIndex)")),
		tabIDOption(),
	)
	s.AddTool(deleteTool, common.InstrumentedToolHandlerWithService("docs_delete_content_range",
		instrumentation.ServiceDocs, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteContentRange(ctx, request, sc)
		}))

	formatOpts := []mcp.ToolOption{
		mcp.WithDescription("Apply character formatting to the content between two offsets"),
		common.AccountOption(),
		documentIDOption(),
		mcp.WithNumber("startIndex", mcp.Required(), mcp.Description("Start offset (>= 1)")),
		mcp.WithNumber("endIndex", mcp.Required(), mcp.Description("End offset, exclusive (> startIndex)")),
		tabIDOption(),
	}
	formatTool := mcp.NewTool("docs_format_text", append(formatOpts, styleOptions()...)...)
	s.AddTool(formatTool, common.InstrumentedToolHandlerWithService("docs_format_text",
		instrumentation.ServiceDocs, instrumentation.OperationFormat, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFormatText(ctx, request, sc)
		}))

	matchOpts := []mcp.ToolOption{
		mcp.WithDescription("Find a text in the document and format exactly that occurrence"),
		common.AccountOption(),
		documentIDOption(),
		mcp.WithString("text", mcp.Required(), mcp.Description("The text to format")),
		mcp.WithNumber("occurrence", mcp.Description("Which occurrence to format, 1-based (default: 1)")),
		mcp.WithBoolean("matchCase", mcp.Description("Case-sensitive matching (default: false)")),
		tabIDOption(),
	}
	matchTool := mcp.NewTool("docs_format_matching_text", append(matchOpts, styleOptions()...)...)
	s.AddTool(matchTool, common.InstrumentedToolHandlerWithService("docs_format_matching_text",
		instrumentation.ServiceDocs, instrumentation.OperationFormat, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFormatMatchingText(ctx, request, sc)
		}))

	replaceTool := mcp.NewTool("docs_replace_all_text",
		mcp.WithDescription("Replace every occurrence of a text in the document"),
		common.AccountOption(),
		documentIDOption(),
		mcp.WithString("containsText", mcp.Required(), mcp.Description("The text to replace")),
		mcp.WithString("replaceText", mcp.Description("The replacement (empty deletes the matches)")),
		mcp.WithBoolean("matchCase", mcp.Description("Case-sensitive matching (default: false)")),
	)
	s.AddTool(replaceTool, common.InstrumentedToolHandlerWithService("docs_replace_all_text",
		instrumentation.ServiceDocs, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReplaceAllText(ctx, request, sc)
		}))

	updateTool := mcp.NewTool("docs_update_document",
		mcp.WithDescription("Replace the whole body of a Google Doc with new plain text"),
		common.AccountOption(),
		documentIDOption(),
		mcp.WithString("content", mcp.Required(), mcp.Description("The new document text")),
	)
	s.AddTool(updateTool, common.InstrumentedToolHandlerWithService("docs_update_document",
		instrumentation.ServiceDocs, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateDocument(ctx, request, sc)
		}))
}

func handleCreateDocument(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	title, err := common.RequiredString(request, "title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDocsClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	created, err := client.CreateDocument(ctx, title, request.GetString("content", ""))
	if err != nil {
		return toolError("create document", err), nil
	}

	return common.JSONResult("Document created successfully:", created)
}

func handleInsertText(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	documentID, err := common.RequiredString(request, "documentId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	index, err := request.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError("index is required"), nil
	}
	text, err := common.RequiredString(request, "text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if index < 1 {
		return mcp.NewToolResultError("index must be >= 1"), nil
	}

	client, err := getDocsClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.InsertText(ctx, documentID, int64(index), text, request.GetString("tabId", "")); err != nil {
		return toolError("insert text", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Inserted %d characters at index %d", docs.UTF16Len(text), index)), nil
}

// rangeArgs reads and validates startIndex/endIndex.
func rangeArgs(request mcp.CallToolRequest) (int64, int64, error) {
	start, err := request.RequireInt("startIndex")
	if err != nil {
		return 0, 0, fmt.Errorf("startIndex is required")
	}
	end, err := request.RequireInt("endIndex")
	if err != nil {
		return 0, 0, fmt.Errorf("endIndex is required")
	}
	if start < 1 || end < 1 {
		return 0, 0, fmt.Errorf("startIndex and endIndex must be >= 1")
	}
	if end <= start {
		return 0, 0, fmt.Errorf("endIndex must be greater than startIndex")
	}
	return int64(start), int64(end), nil
}

func handleDeleteContentRange(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	documentID, err := common.RequiredString(request, "documentId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, end, err := rangeArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDocsClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.DeleteContentRange(ctx, documentID, start, end, request.GetString("tabId", "")); err != nil {
		return toolError("delete content", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted content from index %d to %d", start, end)), nil
}

func handleFormatText(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	documentID, err := common.RequiredString(request, "documentId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, end, err := rangeArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	style := parseStyle(request)
	if style.IsEmpty() {
		return mcp.NewToolResultError("at least one formatting option is required"), nil
	}

	client, err := getDocsClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.FormatRange(ctx, documentID, start, end, request.GetString("tabId", ""), style); err != nil {
		return toolError("format text", err), nil
	}
	sc.Logger().Debug("formatted range", logging.DocumentID(documentID), logging.Range(start, end))

	return mcp.NewToolResultText(fmt.Sprintf("Formatted text from index %d to %d", start, end)), nil
}

func handleFormatMatchingText(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	documentID, err := common.RequiredString(request, "documentId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := common.RequiredString(request, "text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	occurrence := request.GetInt("occurrence", 1)
	if occurrence < 1 {
		return mcp.NewToolResultError("occurrence must be >= 1"), nil
	}
	style := parseStyle(request)
	if style.IsEmpty() {
		return mcp.NewToolResultError("at least one formatting option is required"), nil
	}

	client, err := getDocsClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	r, err := client.FormatMatchingText(ctx, documentID, docs.MatchOptions{
		Text:          text,
		Occurrence:    occurrence,
		MatchCase:     request.GetBool("matchCase", false),
		TabID:         request.GetString("tabId", ""),
		IncludeTables: sc.IncludeTables(),
	}, style)
	if err != nil {
		return toolError("format matching text", err), nil
	}
	sc.Logger().Debug("formatted matching text",
		logging.DocumentID(documentID),
		logging.Range(r.StartIndex, r.EndIndex),
		"occurrence", occurrence,
	)

	return common.JSONResult("Formatted range:", r)
}

func handleReplaceAllText(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	documentID, err := common.RequiredString(request, "documentId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	contains, err := common.RequiredString(request, "containsText")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDocsClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	changed, err := client.ReplaceAllText(ctx, documentID, contains, request.GetString("replaceText", ""), request.GetBool("matchCase", false))
	if err != nil {
		return toolError("replace text", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Replaced %d occurrence(s)", changed)), nil
}

func handleUpdateDocument(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	documentID, err := common.RequiredString(request, "documentId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, ok := request.GetArguments()["content"].(string)
	if !ok {
		return mcp.NewToolResultError("content is required"), nil
	}

	client, err := getDocsClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.ReplaceDocumentContent(ctx, documentID, content); err != nil {
		return toolError("update document", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Document %s updated", documentID)), nil
}
