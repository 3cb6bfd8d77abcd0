package sheets_tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/teemow/gdrive-mcp/internal/server"
	"github.com/teemow/gdrive-mcp/internal/sheets"
)

func newTestContext(t *testing.T, handler http.HandlerFunc) *server.ServerContext {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := sheets.NewClientWithOptions(context.Background(), "default",
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)

	sc, err := server.NewServerContext(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	sc.SetSheetsClient("default", client)
	return sc
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestRegisterSheetsTools_ReadOnly(t *testing.T) {
	sc, err := server.NewServerContext(context.Background())
	require.NoError(t, err)
	defer sc.Shutdown()

	for _, readOnly := range []bool{true, false} {
		s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
		require.NoError(t, RegisterSheetsTools(s, sc, readOnly))

		assert.NotNil(t, s.GetTool("sheets_get_spreadsheet"))
		assert.NotNil(t, s.GetTool("sheets_get_values"))
		assert.Equal(t, !readOnly, s.GetTool("sheets_update_values") != nil)
		assert.Equal(t, !readOnly, s.GetTool("sheets_append_values") != nil)
	}
}

func TestParseRows(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected [][]interface{}
		wantErr  bool
	}{
		{
			name:     "array of arrays",
			input:    []interface{}{[]interface{}{"a", float64(1)}, []interface{}{"b"}},
			expected: [][]interface{}{{"a", float64(1)}, {"b"}},
		},
		{
			name:     "json string",
			input:    `[["x", "=1+1"]]`,
			expected: [][]interface{}{{"x", "=1+1"}},
		},
		{name: "missing", input: nil, wantErr: true},
		{name: "empty", input: []interface{}{}, wantErr: true},
		{name: "row is not an array", input: []interface{}{"a"}, wantErr: true},
		{name: "invalid json", input: "not json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := parseRows(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rows)
		})
	}
}

func TestHandleGetValues(t *testing.T) {
	sc := newTestContext(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/sheet1/values/"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"range": "Sheet1!A1:B2", "values": [["a", "1"], ["b", "2"]]}`))
	})

	result, err := handleGetValues(context.Background(), callRequest(map[string]interface{}{
		"spreadsheetId": "sheet1",
		"range":         "Sheet1!A1:B2",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var got sheets.ValueRange
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &got))
	assert.Equal(t, "Sheet1!A1:B2", got.Range)
	assert.Len(t, got.Values, 2)
}

func TestHandleWriteValues(t *testing.T) {
	var paths []string
	sc := newTestContext(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, ":append") {
			_, _ = w.Write([]byte(`{"updates": {"updatedRange": "Sheet1!A5:B5", "updatedRows": 1, "updatedCells": 2}}`))
			return
		}
		_, _ = w.Write([]byte(`{"updatedRange": "Sheet1!A1:B1", "updatedRows": 1, "updatedColumns": 2, "updatedCells": 2}`))
	})

	args := map[string]interface{}{
		"spreadsheetId": "sheet1",
		"range":         "Sheet1!A1",
		"values":        []interface{}{[]interface{}{"x", "y"}},
	}

	result, err := handleWriteValues(context.Background(), callRequest(args), sc, false)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resultText(t, result), "Updated 2 cell(s) in Sheet1!A1:B1:"))

	result, err = handleWriteValues(context.Background(), callRequest(args), sc, true)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resultText(t, result), "Updated 2 cell(s) in Sheet1!A5:B5:"))

	require.Len(t, paths, 2)
	assert.True(t, strings.HasSuffix(paths[1], ":append"))
}

func TestHandleWriteValues_Validation(t *testing.T) {
	sc, err := server.NewServerContext(context.Background())
	require.NoError(t, err)
	defer sc.Shutdown()

	tests := []struct {
		name    string
		args    map[string]interface{}
		wantMsg string
	}{
		{name: "no spreadsheet", args: map[string]interface{}{}, wantMsg: "spreadsheetId is required"},
		{name: "no range", args: map[string]interface{}{"spreadsheetId": "s"}, wantMsg: "range is required"},
		{name: "no values", args: map[string]interface{}{"spreadsheetId": "s", "range": "A1"}, wantMsg: "values must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handleWriteValues(context.Background(), callRequest(tt.args), sc, false)
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.wantMsg)
		})
	}
}
