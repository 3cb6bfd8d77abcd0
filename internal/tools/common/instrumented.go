package common

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/gdrive-mcp/internal/instrumentation"
	"github.com/teemow/gdrive-mcp/internal/server"
)

// ToolHandler is the mcp-go tool handler signature. It is an alias so the
// wrapped handlers can be passed straight to AddTool.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler instruments a tool that does not map to a single
// Google API operation, such as the auth tools.
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return InstrumentedToolHandlerWithService(toolName, "", "", sc, handler)
}

// InstrumentedToolHandlerWithService runs handler inside a tool span and
// records the call in the tool metrics, the Google API operation metrics
// (when serviceName is set) and the audit log. A result with IsError set
// counts as a failure even though handler returned no error.
//
//	s.AddTool(tool, common.InstrumentedToolHandlerWithService("docs_get_content",
//		instrumentation.ServiceDocs, instrumentation.OperationGet, sc, handler))
func InstrumentedToolHandlerWithService(
	toolName string,
	serviceName string,
	operation string,
	sc *server.ServerContext,
	handler ToolHandler,
) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		args := request.GetArguments()
		account := GetAccountFromArgs(ctx, args)
		resourceType, resourceID := resourceFromArgs(args)

		attrs := instrumentation.NewSpanAttributeBuilder().
			WithAccount(account).
			WithResource(resourceType, resourceID).
			WithReadOnly(sc.ReadOnly())
		if serviceName != "" {
			attrs.WithService(serviceName).WithOperation(operation)
		}
		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attrs.Build()...)

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithAccount(account).
			WithResource(resourceType, resourceID).
			WithReadOnly(sc.ReadOnly())
		if serviceName != "" {
			invocation.WithService(serviceName, operation)
		}

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		var spanErr error
		switch {
		case err != nil:
			status = instrumentation.StatusError
			spanErr = err
			invocation.CompleteWithError(err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			spanErr = errors.New(resultText(result))
			invocation.Complete(false, spanErr)
		default:
			invocation.CompleteSuccess()
		}
		instrumentation.FinishSpan(span, spanErr)

		if metrics != nil {
			metrics.RecordToolInvocationWithAccount(ctx, toolName, status, account, duration)
			if serviceName != "" {
				metrics.RecordGoogleAPIOperation(ctx, serviceName, operation, status, duration)
			}
		}

		auditLogger.LogToolInvocation(ctx, invocation)

		return result, err
	}
}

// resourceArgs maps the id argument of a tool to the resource type it names.
var resourceArgs = []struct{ arg, resourceType string }{
	{"documentId", instrumentation.ResourceDocument},
	{"spreadsheetId", instrumentation.ResourceSpreadsheet},
	{"fileId", instrumentation.ResourceFile},
}

// resourceFromArgs returns the first single-resource id argument present.
// Batch tools taking id lists are recorded without a resource.
func resourceFromArgs(args map[string]interface{}) (string, string) {
	for _, ra := range resourceArgs {
		if id, ok := args[ra.arg].(string); ok && id != "" {
			return ra.resourceType, id
		}
	}
	return "", ""
}

// resultText returns the first text content of a result.
func resultText(result *mcp.CallToolResult) string {
	for _, content := range result.Content {
		if text, ok := content.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return "tool returned an error"
}
