package sheets

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/teemow/gdrive-mcp/internal/google"
	"github.com/teemow/gdrive-mcp/internal/instrumentation"
)

// valueInputOption makes writes behave as if typed into the UI: formulas are
// evaluated and numbers and dates are parsed.
const valueInputOption = "USER_ENTERED"

// Client wraps the Google Sheets API service
type Client struct {
	service *sheets.Service
	account string
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccountWithProvider creates a new Sheets client for a specific account
func NewClientForAccountWithProvider(ctx context.Context, account string, tokenProvider google.TokenProvider) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := tokenProvider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	return NewClientWithToken(ctx, account, token)
}

// NewClientWithToken creates a client that authenticates with an existing token.
func NewClientWithToken(ctx context.Context, account string, token *oauth2.Token) (*Client, error) {
	return NewClientWithOptions(ctx, account, option.WithHTTPClient(google.NewHTTPClient(ctx, token)))
}

// NewClientWithOptions creates a client from raw API options.
func NewClientWithOptions(ctx context.Context, account string, opts ...option.ClientOption) (*Client, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	return &Client{service: svc, account: account}, nil
}

// GetSpreadsheet returns the spreadsheet title and its sheets
func (c *Client) GetSpreadsheet(ctx context.Context, spreadsheetID string) (ss *Spreadsheet, err error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceSheets, instrumentation.OperationGet)
	defer func() { instrumentation.FinishSpan(span, err) }()

	resp, err := c.service.Spreadsheets.Get(spreadsheetID).
		Context(ctx).
		Fields("spreadsheetId,spreadsheetUrl,properties(title,locale),sheets(properties(sheetId,title,index,gridProperties))").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet %s: %w", spreadsheetID, err)
	}

	ss = &Spreadsheet{
		ID:     resp.SpreadsheetId,
		URL:    resp.SpreadsheetUrl,
		Sheets: make([]SheetInfo, 0, len(resp.Sheets)),
	}
	if resp.Properties != nil {
		ss.Title = resp.Properties.Title
		ss.Locale = resp.Properties.Locale
	}
	for _, sheet := range resp.Sheets {
		if sheet == nil || sheet.Properties == nil {
			continue
		}
		p := sheet.Properties
		info := SheetInfo{SheetID: p.SheetId, Title: p.Title, Index: p.Index}
		if p.GridProperties != nil {
			info.RowCount = p.GridProperties.RowCount
			info.ColumnCount = p.GridProperties.ColumnCount
		}
		ss.Sheets = append(ss.Sheets, info)
	}
	return ss, nil
}

// GetValues reads the formatted values of a range in A1 notation
func (c *Client) GetValues(ctx context.Context, spreadsheetID, a1Range string) (vr *ValueRange, err error) {
	if spreadsheetID == "" || a1Range == "" {
		return nil, fmt.Errorf("spreadsheetID and range are required")
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceSheets, instrumentation.OperationGet)
	defer func() { instrumentation.FinishSpan(span, err) }()

	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, a1Range).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", a1Range, err)
	}

	values := resp.Values
	if values == nil {
		values = [][]interface{}{}
	}
	return &ValueRange{Range: resp.Range, Values: values}, nil
}

// UpdateValues overwrites a range with rows
func (c *Client) UpdateValues(ctx context.Context, spreadsheetID, a1Range string, rows [][]interface{}) (result *UpdateResult, err error) {
	if err := validateWrite(spreadsheetID, a1Range, rows); err != nil {
		return nil, err
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceSheets, instrumentation.OperationUpdate)
	defer func() { instrumentation.FinishSpan(span, err) }()

	resp, err := c.service.Spreadsheets.Values.Update(spreadsheetID, a1Range, &sheets.ValueRange{Values: rows}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", a1Range, err)
	}

	return &UpdateResult{
		UpdatedRange:   resp.UpdatedRange,
		UpdatedRows:    resp.UpdatedRows,
		UpdatedColumns: resp.UpdatedColumns,
		UpdatedCells:   resp.UpdatedCells,
	}, nil
}

// AppendValues appends rows after the last row of the table found in a1Range
func (c *Client) AppendValues(ctx context.Context, spreadsheetID, a1Range string, rows [][]interface{}) (result *UpdateResult, err error) {
	if err := validateWrite(spreadsheetID, a1Range, rows); err != nil {
		return nil, err
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceSheets, instrumentation.OperationAppend)
	defer func() { instrumentation.FinishSpan(span, err) }()

	resp, err := c.service.Spreadsheets.Values.Append(spreadsheetID, a1Range, &sheets.ValueRange{Values: rows}).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to append to %s: %w", a1Range, err)
	}

	result = &UpdateResult{}
	if u := resp.Updates; u != nil {
		result.UpdatedRange = u.UpdatedRange
		result.UpdatedRows = u.UpdatedRows
		result.UpdatedColumns = u.UpdatedColumns
		result.UpdatedCells = u.UpdatedCells
	}
	return result, nil
}

func validateWrite(spreadsheetID, a1Range string, rows [][]interface{}) error {
	if spreadsheetID == "" || a1Range == "" {
		return fmt.Errorf("spreadsheetID and range are required")
	}
	if len(rows) == 0 {
		return fmt.Errorf("at least one row of values is required")
	}
	return nil
}
