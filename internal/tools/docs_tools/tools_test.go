package docs_tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	docsapi "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"

	"github.com/teemow/gdrive-mcp/internal/docs"
	"github.com/teemow/gdrive-mcp/internal/server"
)

// fakeDocs serves a single document and records batchUpdate requests.
type fakeDocs struct {
	mu      sync.Mutex
	doc     *docsapi.Document
	batches []*docsapi.BatchUpdateDocumentRequest
}

func (f *fakeDocs) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":batchUpdate"):
		var req docsapi.BatchUpdateDocumentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.batches = append(f.batches, &req)
		resp := &docsapi.BatchUpdateDocumentResponse{DocumentId: f.doc.DocumentId}
		for _, r := range req.Requests {
			if r.ReplaceAllText != nil {
				resp.Replies = append(resp.Replies, &docsapi.Response{
					ReplaceAllText: &docsapi.ReplaceAllTextResponse{OccurrencesChanged: 2},
				})
			}
		}
		_ = json.NewEncoder(w).Encode(resp)
	case r.Method == http.MethodPost && r.URL.Path == "/v1/documents":
		_ = json.NewEncoder(w).Encode(&docsapi.Document{DocumentId: "new-doc", Title: "Created"})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/documents/"):
		_ = json.NewEncoder(w).Encode(f.doc)
	default:
		http.NotFound(w, r)
	}
}

func textRun(start, end int64, text string) *docsapi.ParagraphElement {
	return &docsapi.ParagraphElement{StartIndex: start, EndIndex: end, TextRun: &docsapi.TextRun{Content: text}}
}

// tocDocument has a table of contents covering [1, 1235) followed by one paragraph.
func tocDocument() *docsapi.Document {
	return &docsapi.Document{
		DocumentId: "doc1",
		Title:      "Report",
		Body: &docsapi.Body{Content: []*docsapi.StructuralElement{
			{EndIndex: 1, SectionBreak: &docsapi.SectionBreak{}},
			{StartIndex: 1, EndIndex: 1235, TableOfContents: &docsapi.TableOfContents{}},
			{StartIndex: 1235, EndIndex: 1259, Paragraph: &docsapi.Paragraph{Elements: []*docsapi.ParagraphElement{
				textRun(1235, 1246, "TESTMARKER "),
				textRun(1246, 1259, "and a marker\n"),
			}}},
		}},
	}
}

func newTestContext(t *testing.T, api *fakeDocs) *server.ServerContext {
	t.Helper()

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := docs.NewClientWithOptions(context.Background(), "default",
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)

	sc, err := server.NewServerContext(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	sc.SetDocsClient("default", client)
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

func TestRegisterDocsTools_ReadOnly(t *testing.T) {
	sc, err := server.NewServerContext(context.Background())
	require.NoError(t, err)
	defer sc.Shutdown()

	tests := []struct {
		name      string
		readOnly  bool
		wantWrite bool
	}{
		{name: "read only", readOnly: true, wantWrite: false},
		{name: "read write", readOnly: false, wantWrite: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
			require.NoError(t, RegisterDocsTools(s, sc, tt.readOnly))

			for _, name := range []string{"docs_get_content", "docs_find_text", "docs_get_document", "docs_get_document_metadata"} {
				assert.NotNil(t, s.GetTool(name), name)
			}
			for _, name := range []string{
				"docs_create_document", "docs_insert_text", "docs_delete_content_range", "docs_format_text",
				"docs_format_matching_text", "docs_replace_all_text", "docs_update_document",
			} {
				assert.Equal(t, tt.wantWrite, s.GetTool(name) != nil, name)
			}
		})
	}
}

func TestHandleGetContent(t *testing.T) {
	sc := newTestContext(t, &fakeDocs{doc: tocDocument()})

	result, err := handleGetContent(context.Background(), callRequest(map[string]interface{}{"documentId": "doc1"}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var got struct {
		Content  *string `json:"content"`
		Segments []struct {
			Text        string `json:"text"`
			StartOffset int64  `json:"startOffset"`
			EndOffset   int64  `json:"endOffset"`
		} `json:"segments"`
		Gaps []docs.Gap `json:"gaps"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &got))

	require.NotNil(t, got.Content)
	assert.Equal(t, "TESTMARKER and a marker\n", *got.Content)
	require.Len(t, got.Segments, 2)
	assert.Equal(t, int64(1235), got.Segments[0].StartOffset)
	assert.Equal(t, int64(1246), got.Segments[0].EndOffset)
	assert.Equal(t, []docs.Gap{{StartIndex: 1, EndIndex: 1235}}, got.Gaps)
}

func TestHandleGetContent_SegmentsOnly(t *testing.T) {
	sc := newTestContext(t, &fakeDocs{doc: tocDocument()})

	result, err := handleGetContent(context.Background(),
		callRequest(map[string]interface{}{"documentId": "doc1", "segmentsOnly": true}), sc)
	require.NoError(t, err)
	assert.NotContains(t, resultText(t, result), `"content"`)
	assert.Contains(t, resultText(t, result), `"segments"`)
}

func TestHandleGetContent_MissingDocumentID(t *testing.T) {
	sc := newTestContext(t, &fakeDocs{doc: tocDocument()})

	result, err := handleGetContent(context.Background(), callRequest(map[string]interface{}{}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "documentId is required", resultText(t, result))
}

func TestHandleFindText(t *testing.T) {
	sc := newTestContext(t, &fakeDocs{doc: tocDocument()})

	tests := []struct {
		name      string
		args      map[string]interface{}
		wantError bool
		wantCount string
	}{
		{
			name:      "case insensitive finds both",
			args:      map[string]interface{}{"documentId": "doc1", "text": "marker"},
			wantCount: "Found 2 occurrence(s):",
		},
		{
			name:      "match case finds one",
			args:      map[string]interface{}{"documentId": "doc1", "text": "marker", "matchCase": true},
			wantCount: "Found 1 occurrence(s):",
		},
		{
			name:      "not found",
			args:      map[string]interface{}{"documentId": "doc1", "text": "absent"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handleFindText(context.Background(), callRequest(tt.args), sc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantError, result.IsError)
			if !tt.wantError {
				assert.True(t, strings.HasPrefix(resultText(t, result), tt.wantCount))
			}
		})
	}
}

func TestHandleGetDocument_Formats(t *testing.T) {
	sc := newTestContext(t, &fakeDocs{doc: tocDocument()})

	tests := []struct {
		format    string
		wantText  string
		wantError bool
	}{
		{format: "", wantText: "# Report"},
		{format: "text", wantText: "Report\n\nTESTMARKER and a marker"},
		{format: "html", wantText: "<h1>Report</h1>"},
		{format: "json", wantText: `"documentId": "doc1"`},
		{format: "pdf", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			result, err := handleGetDocument(context.Background(),
				callRequest(map[string]interface{}{"documentId": "doc1", "format": tt.format}), sc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantError, result.IsError)
			if !tt.wantError {
				assert.Contains(t, resultText(t, result), tt.wantText)
			}
		})
	}
}

func TestHandleFormatMatchingText(t *testing.T) {
	api := &fakeDocs{doc: tocDocument()}
	sc := newTestContext(t, api)

	result, err := handleFormatMatchingText(context.Background(), callRequest(map[string]interface{}{
		"documentId": "doc1",
		"text":       "marker",
		"occurrence": float64(2),
		"italic":     true,
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	require.Len(t, api.batches, 1)
	style := api.batches[0].Requests[0].UpdateTextStyle
	require.NotNil(t, style)
	assert.Equal(t, int64(1252), style.Range.StartIndex)
	assert.Equal(t, int64(1258), style.Range.EndIndex)
	assert.Equal(t, "italic", style.Fields)
}

func TestHandleFormatMatchingText_Validation(t *testing.T) {
	api := &fakeDocs{doc: tocDocument()}
	sc := newTestContext(t, api)

	tests := []struct {
		name    string
		args    map[string]interface{}
		wantMsg string
	}{
		{
			name:    "no style",
			args:    map[string]interface{}{"documentId": "doc1", "text": "marker"},
			wantMsg: "at least one formatting option is required",
		},
		{
			name:    "bad occurrence",
			args:    map[string]interface{}{"documentId": "doc1", "text": "marker", "occurrence": float64(0), "bold": true},
			wantMsg: "occurrence must be >= 1",
		},
		{
			name:    "text missing from document",
			args:    map[string]interface{}{"documentId": "doc1", "text": "absent", "bold": true},
			wantMsg: "the text was not found in the document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handleFormatMatchingText(context.Background(), callRequest(tt.args), sc)
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.wantMsg)
		})
	}
	assert.Empty(t, api.batches)
}

func TestHandleDeleteContentRange_Validation(t *testing.T) {
	api := &fakeDocs{doc: tocDocument()}
	sc := newTestContext(t, api)

	tests := []struct {
		name    string
		args    map[string]interface{}
		wantErr string
	}{
		{name: "zero start", args: map[string]interface{}{"startIndex": float64(0), "endIndex": float64(5)}, wantErr: "must be >= 1"},
		{name: "end before start", args: map[string]interface{}{"startIndex": float64(5), "endIndex": float64(5)}, wantErr: "greater than startIndex"},
		{name: "missing end", args: map[string]interface{}{"startIndex": float64(5)}, wantErr: "endIndex is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.args["documentId"] = "doc1"
			result, err := handleDeleteContentRange(context.Background(), callRequest(tt.args), sc)
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.wantErr)
		})
	}
	assert.Empty(t, api.batches)

	result, err := handleDeleteContentRange(context.Background(), callRequest(map[string]interface{}{
		"documentId": "doc1", "startIndex": float64(1235), "endIndex": float64(1246),
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	require.Len(t, api.batches, 1)
	del := api.batches[0].Requests[0].DeleteContentRange
	require.NotNil(t, del)
	assert.Equal(t, int64(1235), del.Range.StartIndex)
	assert.Equal(t, int64(1246), del.Range.EndIndex)
}

func TestHandleInsertAndReplace(t *testing.T) {
	api := &fakeDocs{doc: tocDocument()}
	sc := newTestContext(t, api)

	result, err := handleInsertText(context.Background(), callRequest(map[string]interface{}{
		"documentId": "doc1", "index": float64(1235), "text": "Hello ",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	assert.Equal(t, "Inserted 6 characters at index 1235", resultText(t, result))

	result, err = handleReplaceAllText(context.Background(), callRequest(map[string]interface{}{
		"documentId": "doc1", "containsText": "marker", "replaceText": "flag",
	}), sc)
	require.NoError(t, err)
	assert.Equal(t, "Replaced 2 occurrence(s)", resultText(t, result))

	require.Len(t, api.batches, 2)
	assert.Equal(t, int64(1235), api.batches[0].Requests[0].InsertText.Location.Index)
	assert.Equal(t, "flag", api.batches[1].Requests[0].ReplaceAllText.ReplaceText)
}

func TestHandleCreateDocument(t *testing.T) {
	api := &fakeDocs{doc: tocDocument()}
	sc := newTestContext(t, api)

	result, err := handleCreateDocument(context.Background(), callRequest(map[string]interface{}{"title": "Created"}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	assert.Contains(t, resultText(t, result), `"documentId": "new-doc"`)
	assert.Empty(t, api.batches)
}
