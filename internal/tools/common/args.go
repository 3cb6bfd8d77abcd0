package common

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// AccountOption is the optional account argument shared by every tool.
func AccountOption() mcp.ToolOption {
	return mcp.WithString("account",
		mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts. Ignored when a token is forwarded by the client."),
	)
}

// RequiredString returns a non-empty string argument or an error naming it.
func RequiredString(request mcp.CallToolRequest, key string) (string, error) {
	value, ok := request.GetArguments()[key].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return value, nil
}

// OptionalString returns a pointer to a string argument when it was supplied,
// so callers can tell an explicit empty string from a missing argument.
func OptionalString(request mcp.CallToolRequest, key string) *string {
	value, ok := request.GetArguments()[key].(string)
	if !ok {
		return nil
	}
	return &value
}

// OptionalBool is OptionalString for booleans.
func OptionalBool(request mcp.CallToolRequest, key string) *bool {
	value, ok := request.GetArguments()[key].(bool)
	if !ok {
		return nil
	}
	return &value
}

// ParseCommaList splits a comma-separated list, trimming blanks.
func ParseCommaList(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// JSONResult renders v as indented JSON text, optionally after a heading line.
func JSONResult(heading string, v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	if heading == "" {
		return mcp.NewToolResultText(string(data)), nil
	}
	return mcp.NewToolResultText(heading + "\n" + string(data)), nil
}
