package analysis

import (
	"math"
	"testing"

	"filmdash/domain/film"
	"filmdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioTable() *film.Table {
	table, _ := film.NewTable([]film.Film{
		{Title: "A", Genres: []string{"Action"}, Distributor: "X", Revenue: 100, Runtime: 90},
		{Title: "B", Genres: []string{"Action", "Romance"}, Distributor: "Y", Revenue: 300, Runtime: 120},
		{Title: "C", Genres: []string{"Romance"}, Distributor: "X", Revenue: 200, Runtime: 100},
	})
	return table
}

func byCategory(stats []CategoryStat) map[string]CategoryStat {
	out := make(map[string]CategoryStat, len(stats))
	for _, s := range stats {
		out[s.Category] = s
	}
	return out
}

func TestAggregateByGenre(t *testing.T) {
	stats, err := Aggregate(scenarioTable(), film.ByGenre, film.Revenue)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, "Action", stats[0].Category)
	assert.Equal(t, "Romance", stats[1].Category)

	action := stats[0].Revenue()
	assert.Equal(t, 2, stats[0].Count)
	assert.Equal(t, 400.0, action.Sum)
	assert.Equal(t, 200.0, action.Mean)
	assert.Equal(t, 100.0, action.StdDev)
	assert.Equal(t, 70.71, action.StdErr)

	romance := stats[1].Revenue()
	assert.Equal(t, 2, stats[1].Count)
	assert.Equal(t, 500.0, romance.Sum)
	assert.Equal(t, 250.0, romance.Mean)
}

func TestAggregateByDistributor(t *testing.T) {
	stats, err := Aggregate(scenarioTable(), film.ByDistributor, film.Revenue)
	require.NoError(t, err)

	got := byCategory(stats)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got["X"].Count)
	assert.Equal(t, 300.0, got["X"].Revenue().Sum)
	assert.Equal(t, 150.0, got["X"].Revenue().Mean)
	assert.Equal(t, 1, got["Y"].Count)
	assert.Equal(t, 300.0, got["Y"].Revenue().Sum)
	assert.Equal(t, 300.0, got["Y"].Revenue().Mean)
	assert.Equal(t, 0.0, got["Y"].Revenue().StdErr)
}

func TestAggregateSeveralColumns(t *testing.T) {
	stats, err := Aggregate(scenarioTable(), film.ByGenre, film.Revenue, film.Runtime)
	require.NoError(t, err)

	assert.Equal(t, 105.0, stats[0].Measure(film.Runtime).Mean)
	assert.Panics(t, func() {
		single, _ := Aggregate(scenarioTable(), film.ByGenre, film.Revenue)
		single[0].Measure(film.Runtime)
	})
}

func TestAggregateCrossCheck(t *testing.T) {
	table, _ := film.NewTable([]film.Film{
		{Title: "1", Genres: []string{"Drama", "History"}, Distributor: "Lionsgate", Revenue: 12.5},
		{Title: "2", Genres: []string{"Drama"}, Distributor: "Lionsgate", Revenue: 7},
		{Title: "3", Genres: []string{"History", "War", "Drama"}, Distributor: "Sony", Revenue: 44},
		{Title: "4", Genres: []string{"War"}, Distributor: "Disney", Revenue: 3.25},
		{Title: "5", Genres: []string{"Comedy", "Comedy"}, Distributor: "Disney", Revenue: 9},
	})

	for _, by := range []film.CategoricalColumn{film.ByGenre, film.ByDistributor} {
		stats, err := Aggregate(table, by, film.Revenue)
		require.NoError(t, err)

		for _, s := range stats {
			count, sum := 0, 0.0
			for _, f := range table.Films() {
				for _, v := range by.Values(f) {
					if v == s.Category {
						count++
						sum += f.Revenue
						break
					}
				}
			}

			m := s.Revenue()
			assert.GreaterOrEqual(t, s.Count, 1)
			assert.Equal(t, count, s.Count, s.Category)
			assert.InDelta(t, sum, m.Sum, 1e-9, s.Category)
			assert.GreaterOrEqual(t, m.StdErr, 0.0)
			assert.Equal(t, math.Round(m.StdDev/math.Sqrt(float64(s.Count))*100)/100, m.StdErr)
		}
	}
}

func TestAggregateRejectsUnknownColumns(t *testing.T) {
	_, err := Aggregate(scenarioTable(), film.CategoricalColumn("Runtime"), film.Revenue)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = Aggregate(scenarioTable(), film.ByGenre, film.NumericColumn("Budget"))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestAggregateIsDeterministic(t *testing.T) {
	first, err := Aggregate(scenarioTable(), film.ByGenre, film.Revenue)
	require.NoError(t, err)
	second, err := Aggregate(scenarioTable(), film.ByGenre, film.Revenue)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
