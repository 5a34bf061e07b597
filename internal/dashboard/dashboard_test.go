package dashboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"filmdash/domain/film"
	"filmdash/internal/charts"
	"filmdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticSource() (*film.Table, error) {
	table, _ := film.NewTable([]film.Film{
		{Title: "A", Genres: []string{"Action"}, Distributor: "X", Revenue: 100, Runtime: 90, ReleaseDate: time.Date(2019, 5, 3, 0, 0, 0, 0, time.UTC)},
		{Title: "B", Genres: []string{"Action", "Romance"}, Distributor: "Y", Revenue: 300, Runtime: 120, ReleaseDate: time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC)},
		{Title: "C", Genres: []string{"Romance"}, Distributor: "X", Revenue: 200, Runtime: 100, ReleaseDate: time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC)},
	})
	return table, nil
}

func TestNotReadyUntilBuilt(t *testing.T) {
	release := make(chan struct{})
	d := New(func() (*film.Table, error) {
		<-release
		return staticSource()
	}, charts.DefaultOptions())

	d.Start(context.Background())

	_, err := d.Catalog()
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotReady, errors.GetCode(err))
	assert.False(t, d.Ready())

	close(release)
	require.NoError(t, d.Wait(context.Background()))

	catalog, err := d.Catalog()
	require.NoError(t, err)
	assert.Equal(t, 13, catalog.Len())
	assert.True(t, d.Ready())

	snap, err := d.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Thumbnails, 4)
	assert.Len(t, snap.Genres, 2)
	assert.Len(t, snap.Distributors, 2)
}

func TestBuildFailureIsReported(t *testing.T) {
	d := New(func() (*film.Table, error) {
		return nil, fmt.Errorf("disk on fire")
	}, charts.DefaultOptions())

	d.Start(context.Background())
	err := d.Wait(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.Equal(t, err, d.Err())

	_, err = d.Catalog()
	assert.Error(t, err)
	assert.NotEqual(t, errors.CodeNotReady, errors.GetCode(err))
}

func TestStartIsIdempotent(t *testing.T) {
	calls := 0
	d := New(func() (*film.Table, error) {
		calls++
		return staticSource()
	}, charts.DefaultOptions())

	d.Start(context.Background())
	d.Start(context.Background())
	require.NoError(t, d.Wait(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestWaitHonoursContext(t *testing.T) {
	d := New(staticSource, charts.DefaultOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, d.Wait(ctx), context.Canceled)
}

func TestBuildIsRepeatable(t *testing.T) {
	first, err := Build(context.Background(), staticSource, charts.DefaultOptions())
	require.NoError(t, err)
	second, err := Build(context.Background(), staticSource, charts.DefaultOptions())
	require.NoError(t, err)

	for _, k := range first.Catalog.Keys() {
		a, _ := first.Catalog.Lookup(k)
		b, _ := second.Catalog.Lookup(k)
		assert.JSONEq(t, string(a.JSON()), string(b.JSON()))
	}
}
