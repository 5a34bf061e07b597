package excel

import (
	"filmdash/internal/errors"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook saves headers and rows to a single-sheet xlsx file. Values
// are written as given so numbers stay numeric cells.
func WriteWorkbook(path, sheet string, headers []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return errors.Wrap(err, "failed to name sheet")
		}
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "failed to write header row")
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "failed to address row")
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return errors.Wrapf(err, "failed to write row %d", i+2)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(err, "failed to save workbook")
	}
	return nil
}
