package excel

import (
	"os"
	"path/filepath"
	"testing"

	"filmdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadExcelDropsIndexColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.xlsx")
	err := WriteWorkbook(path, "Top Movies", []string{"", "Film", "Revenue"}, [][]interface{}{
		{0, "A", 100},
		{1, "B", 300.5},
	})
	require.NoError(t, err)

	data, err := NewDataReader(path).ReadData()
	require.NoError(t, err)

	assert.Equal(t, []string{"Film", "Revenue"}, data.Headers)
	assert.Equal(t, []string{""}, data.Dropped)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "A", data.Rows[0]["Film"])
	assert.Equal(t, "300.5", data.Rows[1]["Revenue"])
	assert.True(t, data.HasColumn("Film"))
	assert.False(t, data.HasColumn(""))
}

func TestReadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.csv")
	content := "Unnamed: 0,Film,Genres\n0,A,\"['Action']\"\n1,B,[]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	data, err := NewDataReader(path).ReadData()
	require.NoError(t, err)

	assert.Equal(t, []string{"Film", "Genres"}, data.Headers)
	assert.Equal(t, "['Action']", data.Rows[0]["Genres"])
	assert.Equal(t, "[]", data.Rows[1]["Genres"])
}

func TestReadMissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.xlsx")).ReadData()
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestReadHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte("Film\n"), 0o644))

	_, err := NewDataReader(path).ReadData()
	assert.Error(t, err)
}

func TestIsIndexColumn(t *testing.T) {
	assert.True(t, IsIndexColumn(""))
	assert.True(t, IsIndexColumn("Unnamed: 0"))
	assert.True(t, IsIndexColumn("Unnamed: 12"))
	assert.False(t, IsIndexColumn("Unnamed"))
	assert.False(t, IsIndexColumn("Film"))
}
