// Package dataset turns the movie spreadsheet into a film.Table.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"filmdash/adapters/excel"
	"filmdash/domain/film"
	"filmdash/internal"
	"filmdash/internal/errors"

	"github.com/xuri/excelize/v2"
)

// ParseError reports a cell that could not be decoded
type ParseError struct {
	Row    int // 1-based spreadsheet row, header is row 1
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d, column %q: cannot parse %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01-02-06",
	"1/2/2006",
	"1/2/06",
}

// LoadTable reads the spreadsheet at path and returns the deduplicated table
func LoadTable(path string) (*film.Table, error) {
	data, err := excel.NewDataReader(path).ReadData()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read dataset")
	}
	return BuildTable(data)
}

// BuildTable validates columns and decodes every row. The first bad cell
// aborts the build.
func BuildTable(data *excel.ExcelData) (*film.Table, error) {
	for _, col := range film.RequiredColumns {
		if !data.HasColumn(col) {
			return nil, errors.InvalidInput(fmt.Sprintf("dataset is missing required column %q", col))
		}
	}

	films := make([]film.Film, 0, len(data.Rows))
	for i, row := range data.Rows {
		f, err := decodeRow(excel.SheetRow(i), row)
		if err != nil {
			return nil, &errors.AppError{Code: errors.CodeParseError, Message: "failed to decode dataset", Cause: err}
		}
		films = append(films, f)
	}

	table, dropped := film.NewTable(films)
	if dropped > 0 {
		internal.DefaultLogger.Info("[Dataset] Dropped %d duplicate film(s)", dropped)
	}
	internal.DefaultLogger.Info("[Dataset] Loaded %d films", table.Len())
	return table, nil
}

func decodeRow(line int, row excel.RawRowData) (film.Film, error) {
	fail := func(column string, err error) error {
		return &ParseError{Row: line, Column: column, Value: row[column], Err: err}
	}

	title := row[film.ColumnFilm]
	if title == "" {
		return film.Film{}, fail(film.ColumnFilm, fmt.Errorf("empty title"))
	}

	genres, err := ParseGenres(row[film.ColumnGenres])
	if err != nil {
		return film.Film{}, fail(film.ColumnGenres, err)
	}
	revenue, err := parseNumber(row[film.ColumnRevenue])
	if err != nil {
		return film.Film{}, fail(film.ColumnRevenue, err)
	}
	runtime, err := parseNumber(row[film.ColumnRuntime])
	if err != nil {
		return film.Film{}, fail(film.ColumnRuntime, err)
	}
	released, err := ParseDate(row[film.ColumnReleaseDate])
	if err != nil {
		return film.Film{}, fail(film.ColumnReleaseDate, err)
	}

	return film.Film{
		Title:       title,
		Revenue:     revenue,
		Runtime:     runtime,
		ReleaseDate: released,
		Genres:      genres,
		Distributor: row[film.ColumnDistributor],
	}, nil
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimPrefix(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), "$")
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return v, nil
}

// ParseDate accepts the text layouts spreadsheets commonly export and raw
// Excel serial day numbers. The result is truncated to a UTC day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty value")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return day(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return day(t), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised date")
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
