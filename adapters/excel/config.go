package excel

// ExcelConfig holds configuration for the spreadsheet data source
type ExcelConfig struct {
	FilePath string `json:"file_path"`
	// Sheet to read; empty means the first sheet in the workbook.
	Sheet string `json:"sheet"`
	// RawValues reads unformatted cell values so dates arrive as serial numbers.
	RawValues bool `json:"raw_values"`
}

// DefaultExcelConfig returns defaults for reading the movie workbook
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		RawValues: true,
	}
}
