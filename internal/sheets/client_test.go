package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newFakeClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClientWithOptions(context.Background(), "test",
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return client
}

func respond(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestGetSpreadsheet(t *testing.T) {
	client := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/spreadsheets/sheet1", r.URL.Path)
		respond(w, `{
			"spreadsheetId": "sheet1",
			"spreadsheetUrl": "https://docs.google.com/spreadsheets/d/sheet1/edit",
			"properties": {"title": "Budget", "locale": "en_US"},
			"sheets": [
				{"properties": {"sheetId": 0, "title": "2025", "index": 0, "gridProperties": {"rowCount": 100, "columnCount": 26}}},
				{"properties": {"sheetId": 7, "title": "2026", "index": 1}}
			]
		}`)
	})

	ss, err := client.GetSpreadsheet(context.Background(), "sheet1")
	require.NoError(t, err)
	assert.Equal(t, "Budget", ss.Title)
	require.Len(t, ss.Sheets, 2)
	assert.Equal(t, SheetInfo{SheetID: 0, Title: "2025", Index: 0, RowCount: 100, ColumnCount: 26}, ss.Sheets[0])
	assert.Equal(t, int64(7), ss.Sheets[1].SheetID)
}

func TestGetValues(t *testing.T) {
	client := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, `{"range": "Sheet1!A1:B2", "values": [["a", "1"], ["b", "2"]]}`)
	})

	vr, err := client.GetValues(context.Background(), "sheet1", "Sheet1!A1:B2")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1!A1:B2", vr.Range)
	assert.Equal(t, [][]interface{}{{"a", "1"}, {"b", "2"}}, vr.Values)
}

func TestGetValues_EmptyRange(t *testing.T) {
	client := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, `{"range": "Sheet1!A1:B2"}`)
	})

	vr, err := client.GetValues(context.Background(), "sheet1", "Sheet1!A1:B2")
	require.NoError(t, err)
	assert.NotNil(t, vr.Values)
	assert.Empty(t, vr.Values)
}

func TestUpdateValues(t *testing.T) {
	var gotOption string
	var body map[string]interface{}
	client := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		gotOption = r.URL.Query().Get("valueInputOption")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		respond(w, `{"updatedRange": "Sheet1!A1:B1", "updatedRows": 1, "updatedColumns": 2, "updatedCells": 2}`)
	})

	result, err := client.UpdateValues(context.Background(), "sheet1", "Sheet1!A1", [][]interface{}{{"x", "=1+1"}})
	require.NoError(t, err)
	assert.Equal(t, "USER_ENTERED", gotOption)
	assert.Equal(t, int64(2), result.UpdatedCells)
	assert.Equal(t, []interface{}{[]interface{}{"x", "=1+1"}}, body["values"])
}

func TestAppendValues(t *testing.T) {
	client := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":append"))
		assert.Equal(t, "USER_ENTERED", r.URL.Query().Get("valueInputOption"))
		assert.Equal(t, "INSERT_ROWS", r.URL.Query().Get("insertDataOption"))
		respond(w, `{"updates": {"updatedRange": "Sheet1!A5:B5", "updatedRows": 1, "updatedCells": 2}}`)
	})

	result, err := client.AppendValues(context.Background(), "sheet1", "Sheet1!A:B", [][]interface{}{{"c", 3}})
	require.NoError(t, err)
	assert.Equal(t, "Sheet1!A5:B5", result.UpdatedRange)
	assert.Equal(t, int64(1), result.UpdatedRows)
}

func TestValidation(t *testing.T) {
	client := &Client{account: "test"}
	ctx := context.Background()

	_, err := client.GetSpreadsheet(ctx, "")
	assert.Error(t, err)
	_, err = client.GetValues(ctx, "id", "")
	assert.Error(t, err)
	_, err = client.UpdateValues(ctx, "id", "A1", nil)
	assert.Error(t, err)
	_, err = client.AppendValues(ctx, "", "A1", [][]interface{}{{"x"}})
	assert.Error(t, err)
	assert.Equal(t, "test", client.Account())
}
