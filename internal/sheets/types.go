package sheets

// Spreadsheet summarizes a spreadsheet and its sheets
type Spreadsheet struct {
	ID     string      `json:"spreadsheetId"`
	Title  string      `json:"title"`
	Locale string      `json:"locale,omitempty"`
	URL    string      `json:"url,omitempty"`
	Sheets []SheetInfo `json:"sheets"`
}

// SheetInfo describes one sheet (tab) of a spreadsheet
type SheetInfo struct {
	SheetID     int64  `json:"sheetId"`
	Title       string `json:"title"`
	Index       int64  `json:"index"`
	RowCount    int64  `json:"rowCount,omitempty"`
	ColumnCount int64  `json:"columnCount,omitempty"`
}

// ValueRange is a block of cell values in A1 notation
type ValueRange struct {
	Range  string          `json:"range"`
	Values [][]interface{} `json:"values"`
}

// UpdateResult reports what a write changed
type UpdateResult struct {
	UpdatedRange   string `json:"updatedRange"`
	UpdatedRows    int64  `json:"updatedRows"`
	UpdatedColumns int64  `json:"updatedColumns"`
	UpdatedCells   int64  `json:"updatedCells"`
}
