package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"filmdash/adapters/excel"
	"filmdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var movieHeaders = []string{"", "Film", "Genres", "Distributor", "Revenue", "Runtime", "Release Date"}

func writeMovies(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movies.xlsx")
	require.NoError(t, excel.WriteWorkbook(path, "", movieHeaders, rows))
	return path
}

func TestLoadTableFromWorkbook(t *testing.T) {
	path := writeMovies(t, [][]interface{}{
		{0, "A", "['Action']", "X", 100, 95, "2019-05-03"},
		{1, "B", "['Action', 'Romance']", "Y", 300, 120, "2020-04-01"},
		{2, "C", "['Romance']", "X", 200, 101, "2021-01-15"},
		{3, "A", "['Horror']", "Z", 999, 80, "2021-01-15"},
	})

	table, err := LoadTable(path)
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	a, ok := table.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, []string{"Action"}, a.Genres)
	assert.Equal(t, "X", a.Distributor)
	assert.Equal(t, 100.0, a.Revenue)
	assert.Equal(t, time.Date(2019, 5, 3, 0, 0, 0, 0, time.UTC), a.ReleaseDate)

	b := table.At(1)
	assert.Equal(t, []string{"Action", "Romance"}, b.Genres)
}

func TestLoadTableMalformedGenresAborts(t *testing.T) {
	path := writeMovies(t, [][]interface{}{
		{0, "A", "['Action']", "X", 100, 95, "2019-05-03"},
		{1, "B", "Action, Romance", "Y", 300, 120, "2020-04-01"},
	})

	_, err := LoadTable(path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeParseError, errors.GetCode(err))

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 3, parseErr.Row)
	assert.Equal(t, "Genres", parseErr.Column)
	assert.Equal(t, "Action, Romance", parseErr.Value)
}

func TestLoadTableMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.csv")
	require.NoError(t, os.WriteFile(path, []byte("Film,Genres,Revenue\nA,['Action'],1\n"), 0o644))

	_, err := LoadTable(path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "Distributor")
}

func TestLoadTableMissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestLoadTableBadRevenue(t *testing.T) {
	path := writeMovies(t, [][]interface{}{
		{0, "A", "['Action']", "X", "lots", 95, "2019-05-03"},
	})

	_, err := LoadTable(path)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "Revenue", parseErr.Column)
}

func TestLoadTableNonFiniteNumbers(t *testing.T) {
	tests := []struct {
		name    string
		revenue interface{}
		runtime interface{}
		column  string
	}{
		{"nan revenue", "NaN", 95, "Revenue"},
		{"infinite revenue", "Infinity", 95, "Revenue"},
		{"nan runtime", 100, "NaN", "Runtime"},
		{"inf runtime", 100, "inf", "Runtime"},
		{"negative inf runtime", 100, "-Inf", "Runtime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeMovies(t, [][]interface{}{
				{0, "A", "['Action']", "X", tt.revenue, tt.runtime, "2019-05-03"},
			})

			_, err := LoadTable(path)
			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tt.column, parseErr.Column)
			assert.True(t, errors.HasCode(err, errors.CodeParseError))
		})
	}
}

func TestParseGenres(t *testing.T) {
	tests := []struct {
		name    string
		cell    string
		want    []string
		wantErr bool
	}{
		{"single", "['Action']", []string{"Action"}, false},
		{"several", "['Action', 'Science Fiction']", []string{"Action", "Science Fiction"}, false},
		{"double quotes", `["Action", 'Drama']`, []string{"Action", "Drama"}, false},
		{"escaped quote", `['Children\'s']`, []string{"Children's"}, false},
		{"empty", "[]", []string{}, false},
		{"trailing comma", "['Action',]", []string{"Action"}, false},
		{"padding", "  [ 'Action' ]  ", []string{"Action"}, false},
		{"bare words", "Action, Drama", nil, true},
		{"unquoted element", "[Action]", nil, true},
		{"number element", "[1, 2]", nil, true},
		{"missing comma", "['Action' 'Drama']", nil, true},
		{"unterminated", "['Action]", nil, true},
		{"blank", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGenres(tt.cell)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2021, 10, 21, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2021-10-21", "2021-10-21 00:00:00", "2021-10-21T13:45:00", "10-21-21", "10/21/2021", "44490"} {
		t.Run(in, func(t *testing.T) {
			got, err := ParseDate(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := ParseDate("next tuesday")
	assert.Error(t, err)
}
