package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"filmdash/internal/errors"

	"github.com/xuri/excelize/v2"
)

// indexHeader matches the header pandas gives an exported index column
var indexHeader = regexp.MustCompile(`^Unnamed: \d+$`)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	config   ExcelConfig
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	cfg := DefaultExcelConfig()
	cfg.FilePath = filePath
	return NewDataReaderWithConfig(cfg)
}

// NewDataReaderWithConfig creates a reader with explicit sheet and value options
func NewDataReaderWithConfig(cfg ExcelConfig) *DataReader {
	ext := strings.ToLower(filepath.Ext(cfg.FilePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{config: cfg, fileType: fileType}
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.config.FilePath)

	if _, err := os.Stat(r.config.FilePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.config.FilePath))
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type: %s", r.fileType))
	}
}

// readExcelData reads the configured sheet (or the first one) into structured format
func (r *DataReader) readExcelData() (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.config.FilePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()
	log.Printf("[DataReader] Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.InvalidInput("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	readStart := time.Now()
	var rows [][]string
	if r.config.RawValues {
		rows, err = f.GetRows(sheet, excelize.Options{RawCellValue: true})
	} else {
		rows, err = f.GetRows(sheet)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", sheet)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.InvalidInput("Excel file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*ExcelData, error) {
	file, err := os.Open(r.config.FilePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV file")
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.InvalidInput("CSV file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// processRows converts raw string rows into ExcelData, dropping index columns
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	headerRow := rows[0]
	keep := make([]bool, len(headerRow))
	data := &ExcelData{}

	for i, header := range headerRow {
		header = strings.TrimSpace(header)
		if IsIndexColumn(header) {
			data.Dropped = append(data.Dropped, header)
			continue
		}
		keep[i] = true
		data.Headers = append(data.Headers, header)
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowData := make(RawRowData, len(data.Headers))
		for j, cell := range row {
			if j < len(headerRow) && keep[j] {
				rowData[strings.TrimSpace(headerRow[j])] = strings.TrimSpace(cell)
			}
		}
		data.Rows = append(data.Rows, rowData)
	}

	if len(data.Dropped) > 0 {
		log.Printf("[DataReader] Dropped %d index column(s): %q", len(data.Dropped), data.Dropped)
	}
	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(data.Headers), len(data.Rows))

	return data, nil
}

// IsIndexColumn reports whether a header belongs to an exported row index
func IsIndexColumn(header string) bool {
	return header == "" || indexHeader.MatchString(header)
}
