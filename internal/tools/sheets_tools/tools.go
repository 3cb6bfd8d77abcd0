package sheets_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrive-mcp/internal/instrumentation"
	"github.com/teemow/gdrive-mcp/internal/server"
	"github.com/teemow/gdrive-mcp/internal/sheets"
	"github.com/teemow/gdrive-mcp/internal/tools/common"
)

// RegisterSheetsTools registers all Google Sheets-related tools with the MCP server.
// Write tools are skipped when readOnly is set.
func RegisterSheetsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getSpreadsheetTool := mcp.NewTool("sheets_get_spreadsheet",
		mcp.WithDescription("Get the title and the list of sheets (tabs) of a spreadsheet"),
		common.AccountOption(),
		spreadsheetIDOption(),
	)
	s.AddTool(getSpreadsheetTool, common.InstrumentedToolHandlerWithService("sheets_get_spreadsheet",
		instrumentation.ServiceSheets, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetSpreadsheet(ctx, request, sc)
		}))

	getValuesTool := mcp.NewTool("sheets_get_values",
		mcp.WithDescription("Read the formatted cell values of a range"),
		common.AccountOption(),
		spreadsheetIDOption(),
		rangeOption("Range in A1 notation, e.g. 'Sheet1!A1:C10'"),
	)
	s.AddTool(getValuesTool, common.InstrumentedToolHandlerWithService("sheets_get_values",
		instrumentation.ServiceSheets, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetValues(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	updateValuesTool := mcp.NewTool("sheets_update_values",
		mcp.WithDescription("Overwrite the cells of a range with rows of values"),
		common.AccountOption(),
		spreadsheetIDOption(),
		rangeOption("Range in A1 notation where writing starts, e.g. 'Sheet1!A1'"),
		valuesOption(),
	)
	s.AddTool(updateValuesTool, common.InstrumentedToolHandlerWithService("sheets_update_values",
		instrumentation.ServiceSheets, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleWriteValues(ctx, request, sc, false)
		}))

	appendValuesTool := mcp.NewTool("sheets_append_values",
		mcp.WithDescription("Append rows after the last row of the table in a range"),
		common.AccountOption(),
		spreadsheetIDOption(),
		rangeOption("Range in A1 notation that contains the table, e.g. 'Sheet1!A:C'"),
		valuesOption(),
	)
	s.AddTool(appendValuesTool, common.InstrumentedToolHandlerWithService("sheets_append_values",
		instrumentation.ServiceSheets, instrumentation.OperationAppend, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleWriteValues(ctx, request, sc, true)
		}))

	return nil
}

func spreadsheetIDOption() mcp.ToolOption {
	return mcp.WithString("spreadsheetId",
		mcp.Required(),
		mcp.Description("The ID of the spreadsheet (the long string in the spreadsheet URL)"),
	)
}

func rangeOption(description string) mcp.ToolOption {
	return mcp.WithString("range",
		mcp.Required(),
		mcp.Description(description),
	)
}

func valuesOption() mcp.ToolOption {
	return mcp.WithArray("values",
		mcp.Required(),
		mcp.Items(map[string]any{"type": "array"}),
		mcp.Description(`Rows of cell values, e.g. [["Name", "Total"], ["Ana", "=B2*2"]]. A JSON-encoded string is accepted too.`),
	)
}

func getSheetsClient(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*sheets.Client, error) {
	account := common.GetAccountFromArgs(ctx, request.GetArguments())
	return sc.SheetsClient(ctx, account)
}

// parseRows accepts an array of arrays or a string holding one in JSON.
func parseRows(v interface{}) ([][]interface{}, error) {
	if s, ok := v.(string); ok {
		var rows [][]interface{}
		if err := json.Unmarshal([]byte(s), &rows); err != nil {
			return nil, fmt.Errorf("values must be an array of rows: %w", err)
		}
		v = toInterfaceRows(rows)
	}

	list, ok := v.([]interface{})
	if !ok || len(list) == 0 {
		return nil, fmt.Errorf("values must be a non-empty array of rows")
	}

	rows := make([][]interface{}, 0, len(list))
	for i, item := range list {
		row, ok := item.([]interface{})
		if !ok {
			return nil, fmt.Errorf("row %d must be an array of cell values", i+1)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func toInterfaceRows(rows [][]interface{}) []interface{} {
	out := make([]interface{}, len(rows))
	for i, row := range rows {
		out[i] = row
	}
	return out
}

func handleGetSpreadsheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spreadsheetID, err := common.RequiredString(request, "spreadsheetId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getSheetsClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ss, err := client.GetSpreadsheet(ctx, spreadsheetID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get spreadsheet: %v", err)), nil
	}

	return common.JSONResult("", ss)
}

func handleGetValues(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spreadsheetID, err := common.RequiredString(request, "spreadsheetId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a1Range, err := common.RequiredString(request, "range")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getSheetsClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	values, err := client.GetValues(ctx, spreadsheetID, a1Range)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get values: %v", err)), nil
	}

	return common.JSONResult("", values)
}

func handleWriteValues(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, appendRows bool) (*mcp.CallToolResult, error) {
	spreadsheetID, err := common.RequiredString(request, "spreadsheetId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a1Range, err := common.RequiredString(request, "range")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rows, err := parseRows(request.GetArguments()["values"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getSheetsClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result *sheets.UpdateResult
	if appendRows {
		result, err = client.AppendValues(ctx, spreadsheetID, a1Range, rows)
	} else {
		result, err = client.UpdateValues(ctx, spreadsheetID, a1Range, rows)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to write values: %v", err)), nil
	}

	return common.JSONResult(fmt.Sprintf("Updated %d cell(s) in %s:", result.UpdatedCells, result.UpdatedRange), result)
}
