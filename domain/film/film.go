// Package film holds the in-memory movie table the dashboard is computed from.
package film

import (
	"time"
)

// Column headers expected in the source spreadsheet
const (
	ColumnFilm        = "Film"
	ColumnGenres      = "Genres"
	ColumnDistributor = "Distributor"
	ColumnRevenue     = "Revenue"
	ColumnRuntime     = "Runtime"
	ColumnReleaseDate = "Release Date"
)

// RequiredColumns lists every header the loader refuses to run without
var RequiredColumns = []string{
	ColumnFilm,
	ColumnGenres,
	ColumnDistributor,
	ColumnRevenue,
	ColumnRuntime,
	ColumnReleaseDate,
}

// Film is one row of the dataset
type Film struct {
	Title       string    `json:"title"`
	Revenue     float64   `json:"revenue"`
	Runtime     float64   `json:"runtime"`
	ReleaseDate time.Time `json:"release_date"`
	Genres      []string  `json:"genres"`
	Distributor string    `json:"distributor"`
}

func (f Film) clone() Film {
	out := f
	out.Genres = append([]string(nil), f.Genres...)
	return out
}

// CategoricalColumn names a column films are grouped by
type CategoricalColumn string

const (
	ByGenre       CategoricalColumn = ColumnGenres
	ByDistributor CategoricalColumn = ColumnDistributor
)

// Valid reports whether the column is one the table can group by
func (c CategoricalColumn) Valid() bool {
	return c == ByGenre || c == ByDistributor
}

// Values returns the categories a film belongs to. Genres is multi-valued,
// Distributor always yields exactly one value.
func (c CategoricalColumn) Values(f Film) []string {
	switch c {
	case ByGenre:
		return f.Genres
	case ByDistributor:
		return []string{f.Distributor}
	}
	return nil
}

// NumericColumn names a column that can be aggregated
type NumericColumn string

const (
	Revenue NumericColumn = ColumnRevenue
	Runtime NumericColumn = ColumnRuntime
)

// Value extracts the column from a film
func (n NumericColumn) Value(f Film) (float64, bool) {
	switch n {
	case Revenue:
		return f.Revenue, true
	case Runtime:
		return f.Runtime, true
	}
	return 0, false
}

// Table is an ordered, title-unique, read-only collection of films
type Table struct {
	films   []Film
	byTitle map[string]int
}

// NewTable builds a table keeping the first occurrence of every title.
// It returns the number of rows dropped as duplicates.
func NewTable(films []Film) (*Table, int) {
	t := &Table{
		films:   make([]Film, 0, len(films)),
		byTitle: make(map[string]int, len(films)),
	}
	dropped := 0
	for _, f := range films {
		if _, seen := t.byTitle[f.Title]; seen {
			dropped++
			continue
		}
		t.byTitle[f.Title] = len(t.films)
		t.films = append(t.films, f.clone())
	}
	return t, dropped
}

// Len returns the number of films
func (t *Table) Len() int {
	return len(t.films)
}

// At returns a copy of the i-th film
func (t *Table) At(i int) Film {
	return t.films[i].clone()
}

// Films returns a copy of every film in table order
func (t *Table) Films() []Film {
	out := make([]Film, len(t.films))
	for i, f := range t.films {
		out[i] = f.clone()
	}
	return out
}

// Lookup finds a film by title
func (t *Table) Lookup(title string) (Film, bool) {
	i, ok := t.byTitle[title]
	if !ok {
		return Film{}, false
	}
	return t.films[i].clone(), true
}

// Column returns the numeric column for every film in table order
func (t *Table) Column(n NumericColumn) []float64 {
	out := make([]float64, len(t.films))
	for i, f := range t.films {
		out[i], _ = n.Value(f)
	}
	return out
}
