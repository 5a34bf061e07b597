package excel

// RawRowData represents a row of raw spreadsheet data as header -> cell text
type RawRowData map[string]string

// ExcelData represents the complete sheet after header cleanup
type ExcelData struct {
	Headers []string     // Column headers, index column removed
	Rows    []RawRowData // Data rows in file order
	Dropped []string     // Headers that were discarded as non-data columns
}

// HasColumn reports whether a header survived cleanup
func (d *ExcelData) HasColumn(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// SheetRow returns the 1-based spreadsheet row number of data row i
func SheetRow(i int) int {
	return i + 2
}
