// Package testkit provides fixtures shared by package tests and the CLI's
// sample command.
package testkit

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"filmdash/adapters/excel"
	"filmdash/domain/film"
	"filmdash/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// NewDB opens a migrated SQLite database that lives for the duration of the test
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "filmdash.db")
	db, err := sqlx.Connect("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migration.NewRunner().Run(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SampleFilms is a small, deterministic slice of top-grossing titles
func SampleFilms() []film.Film {
	return []film.Film{
		{Title: "Bad Boys for Life", Genres: []string{"Action", "Comedy", "Crime", "Thriller"}, Distributor: "Sony Pictures Releasing", Revenue: 204417855, Runtime: 124, ReleaseDate: day(2020, 1, 17)},
		{Title: "1917", Genres: []string{"Drama", "War"}, Distributor: "Universal Pictures", Revenue: 159227644, Runtime: 119, ReleaseDate: day(2019, 12, 25)},
		{Title: "Sonic the Hedgehog", Genres: []string{"Action", "Adventure", "Comedy", "Family", "Science Fiction"}, Distributor: "Paramount Pictures", Revenue: 146066470, Runtime: 99, ReleaseDate: day(2020, 2, 14)},
		{Title: "Jumanji: The Next Level", Genres: []string{"Action", "Adventure", "Comedy", "Fantasy"}, Distributor: "Sony Pictures Releasing", Revenue: 124736710, Runtime: 123, ReleaseDate: day(2019, 12, 13)},
		{Title: "Little Women", Genres: []string{"Drama", "Romance"}, Distributor: "Sony Pictures Releasing", Revenue: 108101214, Runtime: 135, ReleaseDate: day(2019, 12, 25)},
		{Title: "Shang-Chi and the Legend of the Ten Rings", Genres: []string{"Action", "Adventure", "Fantasy"}, Distributor: "Walt Disney Studios Motion Pictures", Revenue: 224226704, Runtime: 132, ReleaseDate: day(2021, 9, 3)},
		{Title: "The Invisible Man", Genres: []string{"Horror", "Mystery", "Science Fiction", "Thriller"}, Distributor: "Universal Pictures", Revenue: 64914050, Runtime: 124, ReleaseDate: day(2020, 2, 28)},
		{Title: "Tenet", Genres: []string{"Action", "Science Fiction", "Thriller"}, Distributor: "Warner Bros.", Revenue: 57929000, Runtime: 150, ReleaseDate: day(2020, 9, 3)},
		{Title: "The Croods: A New Age", Genres: []string{"Adventure", "Animation", "Comedy", "Family", "Fantasy"}, Distributor: "Universal Pictures", Revenue: 58568815, Runtime: 95, ReleaseDate: day(2020, 11, 25)},
		{Title: "Emma.", Genres: []string{"Comedy", "Drama", "Romance"}, Distributor: "Focus Features", Revenue: 10055355, Runtime: 124, ReleaseDate: day(2020, 2, 21)},
		{Title: "The Last Duel", Genres: []string{"Action", "Drama", "History"}, Distributor: "Walt Disney Studios Motion Pictures", Revenue: 4809000, Runtime: 152, ReleaseDate: day(2021, 10, 15)},
		{Title: "Onward", Genres: []string{"Adventure", "Animation", "Comedy", "Family", "Fantasy"}, Distributor: "Walt Disney Studios Motion Pictures", Revenue: 61555145, Runtime: 102, ReleaseDate: day(2020, 3, 6)},
	}
}

// MovieHeaders is the header row of an exported movie sheet, index column first
var MovieHeaders = []string{"", film.ColumnFilm, film.ColumnGenres, film.ColumnDistributor, film.ColumnRevenue, film.ColumnRuntime, film.ColumnReleaseDate}

// GenresLiteral renders genres the way the source spreadsheet stores them
func GenresLiteral(genres []string) string {
	out := "["
	for i, g := range genres {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("'%s'", g)
	}
	return out + "]"
}

// WriteSampleWorkbook writes films to an xlsx laid out like the source export
func WriteSampleWorkbook(path string, films []film.Film) error {
	rows := make([][]interface{}, len(films))
	for i, f := range films {
		rows[i] = []interface{}{
			i,
			f.Title,
			GenresLiteral(f.Genres),
			f.Distributor,
			f.Revenue,
			f.Runtime,
			f.ReleaseDate.Format("2006-01-02"),
		}
	}
	return excel.WriteWorkbook(path, "", MovieHeaders, rows)
}
