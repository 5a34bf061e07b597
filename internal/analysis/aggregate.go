// Package analysis computes per-category summary statistics over a film table.
package analysis

import (
	"fmt"
	"math"

	"filmdash/domain/film"
	"filmdash/internal/errors"

	"github.com/montanaflynn/stats"
)

// Measure summarises one numeric column for a category
type Measure struct {
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	StdErr float64 `json:"std_err"`
}

// CategoryStat holds the statistics of every film containing Category
type CategoryStat struct {
	Category string                         `json:"category"`
	Count    int                            `json:"count"`
	Measures map[film.NumericColumn]Measure `json:"measures"`
}

// Measure returns the summary for a column, panicking if it was not aggregated
func (c CategoryStat) Measure(col film.NumericColumn) Measure {
	m, ok := c.Measures[col]
	if !ok {
		panic(fmt.Sprintf("analysis: column %q not aggregated for %q", col, c.Category))
	}
	return m
}

// Revenue is shorthand for Measure(film.Revenue)
func (c CategoryStat) Revenue() Measure {
	return c.Measure(film.Revenue)
}

// Aggregate groups the table by a categorical column and summarises each
// numeric column. Multi-valued columns are flattened so a film counts once
// towards every category it lists. Output follows first-seen order.
func Aggregate(table *film.Table, by film.CategoricalColumn, numeric ...film.NumericColumn) ([]CategoryStat, error) {
	if !by.Valid() {
		return nil, errors.InvalidInput(fmt.Sprintf("cannot group by column %q", by))
	}
	if len(numeric) == 0 {
		numeric = []film.NumericColumn{film.Revenue}
	}
	for _, col := range numeric {
		if _, ok := col.Value(film.Film{}); !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("cannot aggregate column %q", col))
		}
	}

	order, index := invertedIndex(table, by)

	out := make([]CategoryStat, 0, len(order))
	for _, category := range order {
		rows := index[category]
		if len(rows) == 0 {
			panic(fmt.Sprintf("analysis: category %q has no contributing rows", category))
		}

		stat := CategoryStat{
			Category: category,
			Count:    len(rows),
			Measures: make(map[film.NumericColumn]Measure, len(numeric)),
		}
		for _, col := range numeric {
			values := make([]float64, len(rows))
			for i, r := range rows {
				values[i], _ = col.Value(table.At(r))
			}
			m, err := summarise(values)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to summarise %s for %q", col, category)
			}
			stat.Measures[col] = m
		}
		out = append(out, stat)
	}
	return out, nil
}

// invertedIndex maps each category to the rows containing it in one pass.
// A film listing the same genre twice contributes once.
func invertedIndex(table *film.Table, by film.CategoricalColumn) ([]string, map[string][]int) {
	var order []string
	index := make(map[string][]int)
	for i := 0; i < table.Len(); i++ {
		seen := make(map[string]bool)
		for _, category := range by.Values(table.At(i)) {
			if seen[category] {
				continue
			}
			seen[category] = true
			if _, ok := index[category]; !ok {
				order = append(order, category)
			}
			index[category] = append(index[category], i)
		}
	}
	return order, index
}

func summarise(values []float64) (Measure, error) {
	data := stats.Float64Data(values)

	sum, err := data.Sum()
	if err != nil {
		return Measure{}, err
	}
	mean, err := data.Mean()
	if err != nil {
		return Measure{}, err
	}
	sd, err := data.StandardDeviationPopulation()
	if err != nil {
		return Measure{}, err
	}
	se, err := stats.Round(sd/math.Sqrt(float64(len(values))), 2)
	if err != nil {
		return Measure{}, err
	}

	return Measure{Sum: sum, Mean: mean, StdDev: sd, StdErr: se}, nil
}
