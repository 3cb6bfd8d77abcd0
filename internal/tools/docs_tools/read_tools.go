package docs_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrive-mcp/internal/docs"
	"github.com/teemow/gdrive-mcp/internal/instrumentation"
	"github.com/teemow/gdrive-mcp/internal/server"
	"github.com/teemow/gdrive-mcp/internal/tools/common"
)

// contentResult is the docs_get_content payload.
type contentResult struct {
	DocumentID string         `json:"documentId"`
	Content    *string        `json:"content,omitempty"`
	Segments   []docs.Segment `json:"segments"`
	Gaps       []docs.Gap     `json:"gaps,omitempty"`
}

func registerReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	getContentTool := mcp.NewTool("docs_get_content",
		mcp.WithDescription("Get the text of a Google Doc together with segments carrying the exact API offsets "+
			"(startOffset, endOffset) of each text run. Use these offsets directly for insert, delete and format "+
			"requests. Offsets may jump between segments where tables or a table of contents sit."),
		common.AccountOption(),
		documentIDOption(),
		tabIDOption(),
		mcp.WithBoolean("includeTables",
			mcp.Description("Also return text inside table cells, each with its own offsets"),
		),
		mcp.WithBoolean("segmentsOnly",
			mcp.Description("Omit the concatenated content and return only segments (default: false)"),
		),
	)
	s.AddTool(getContentTool, common.InstrumentedToolHandlerWithService("docs_get_content",
		instrumentation.ServiceDocs, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetContent(ctx, request, sc)
		}))

	findTextTool := mcp.NewTool("docs_find_text",
		mcp.WithDescription("Find every occurrence of a text in a Google Doc and return its API offsets"),
		common.AccountOption(),
		documentIDOption(),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The text to find. Matches never span two differently formatted runs."),
		),
		mcp.WithBoolean("matchCase",
			mcp.Description("Case-sensitive matching (default: false)"),
		),
		tabIDOption(),
		mcp.WithBoolean("includeTables",
			mcp.Description("Also search text inside table cells"),
		),
	)
	s.AddTool(findTextTool, common.InstrumentedToolHandlerWithService("docs_find_text",
		instrumentation.ServiceDocs, instrumentation.OperationFind, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindText(ctx, request, sc)
		}))

	getDocumentTool := mcp.NewTool("docs_get_document",
		mcp.WithDescription("Get Google Docs content by document ID"),
		common.AccountOption(),
		documentIDOption(),
		mcp.WithString("format",
			mcp.Description("Output format: 'markdown' (default), 'text', 'html', or 'json'"),
			mcp.Enum("markdown", "text", "html", "json"),
		),
	)
	s.AddTool(getDocumentTool, common.InstrumentedToolHandlerWithService("docs_get_document",
		instrumentation.ServiceDocs, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetDocument(ctx, request, sc)
		}))

	getMetadataTool := mcp.NewTool("docs_get_document_metadata",
		mcp.WithDescription("Get metadata about a Google Doc or Drive file"),
		common.AccountOption(),
		mcp.WithString("documentId",
			mcp.Required(),
			mcp.Description("The ID of the Google Doc or Drive file"),
		),
	)
	s.AddTool(getMetadataTool, common.InstrumentedToolHandlerWithService("docs_get_document_metadata",
		instrumentation.ServiceDrive, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMetadata(ctx, request, sc)
		}))
}

func handleGetContent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	documentID, err := common.RequiredString(request, "documentId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDocsClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	content, err := client.GetContent(ctx, documentID, docs.ContentOptions{
		TabID:         request.GetString("tabId", ""),
		IncludeTables: request.GetBool("includeTables", sc.IncludeTables()),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get document content: %v", err)), nil
	}

	gaps := content.Gaps()
	sc.Metrics().RecordDocsExtraction(ctx, len(content.Segments), len(gaps))

	result := contentResult{
		DocumentID: documentID,
		Segments:   content.Segments,
		Gaps:       gaps,
	}
	if !request.GetBool("segmentsOnly", false) {
		result.Content = &content.Text
	}

	return common.JSONResult("", result)
}

func handleFindText(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	documentID, err := common.RequiredString(request, "documentId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := common.RequiredString(request, "text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDocsClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	content, err := client.GetContent(ctx, documentID, docs.ContentOptions{
		TabID:         request.GetString("tabId", ""),
		IncludeTables: request.GetBool("includeTables", sc.IncludeTables()),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get document content: %v", err)), nil
	}

	ranges := docs.FindText(content.Segments, text, docs.FindOptions{MatchCase: request.GetBool("matchCase", false)})
	if len(ranges) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("%v: %q", docs.ErrTextNotFound, text)), nil
	}

	return common.JSONResult(fmt.Sprintf("Found %d occurrence(s):", len(ranges)), ranges)
}

func handleGetDocument(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	documentID, err := common.RequiredString(request, "documentId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	format := request.GetString("format", "markdown")
	if format == "" {
		format = "markdown"
	}

	client, err := getDocsClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	switch format {
	case "markdown":
		content, err := client.GetDocumentAsMarkdown(ctx, documentID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get document: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Document content (Markdown, %d bytes):\n%s", len(content), content)), nil

	case "text":
		content, err := client.GetDocumentAsPlainText(ctx, documentID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get document: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Document content (plain text, %d bytes):\n%s", len(content), content)), nil

	case "html":
		content, err := client.GetDocumentAsHTML(ctx, documentID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get document: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Document content (HTML, %d bytes):\n%s", len(content), content)), nil

	case "json":
		doc, err := client.GetDocument(ctx, documentID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get document: %v", err)), nil
		}
		jsonBytes, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize document: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Document content (JSON, %d bytes):\n%s", len(jsonBytes), string(jsonBytes))), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("Invalid format '%s', must be 'markdown', 'text', 'html', or 'json'", format)), nil
	}
}

func handleGetMetadata(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	documentID, err := common.RequiredString(request, "documentId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDocsClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	metadata, err := client.GetFileMetadata(ctx, documentID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get metadata: %v", err)), nil
	}

	return common.JSONResult("Document metadata:", metadata)
}

// toolError maps a docs error to a tool error.
func toolError(action string, err error) *mcp.CallToolResult {
	if errors.Is(err, docs.ErrTextNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: the text was not found in the document", action))
	}
	return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, err))
}
