// Package dashboard runs the one-time load, aggregate and build pipeline and
// gates readers until its result is published.
package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"filmdash/domain/film"
	"filmdash/internal"
	"filmdash/internal/analysis"
	"filmdash/internal/charts"
	"filmdash/internal/dataset"
	"filmdash/internal/errors"
)

// Snapshot is everything the pipeline produced. It is never modified after
// it has been published.
type Snapshot struct {
	Table        *film.Table
	Genres       []analysis.CategoryStat
	Distributors []analysis.CategoryStat
	Catalog      *charts.Catalog
	Thumbnails   map[string][]byte
	BuiltAt      time.Time
	Duration     time.Duration
}

// Source produces the film table; LoadTable in production
type Source func() (*film.Table, error)

// FileSource loads the table from a spreadsheet path
func FileSource(path string) Source {
	return func() (*film.Table, error) {
		return dataset.LoadTable(path)
	}
}

// Dashboard owns the background build and the published snapshot
type Dashboard struct {
	source Source
	opts   charts.Options
	logger *internal.Logger

	snapshot atomic.Pointer[Snapshot]
	err      atomic.Pointer[error]
	done     chan struct{}
	start    sync.Once
}

// New creates a dashboard that will build from source with opts
func New(source Source, opts charts.Options) *Dashboard {
	return &Dashboard{
		source: source,
		opts:   opts,
		logger: internal.DefaultLogger,
		done:   make(chan struct{}),
	}
}

// Start launches the build on its own goroutine. Later calls do nothing.
func (d *Dashboard) Start(ctx context.Context) {
	d.start.Do(func() {
		go func() {
			defer close(d.done)
			snap, err := Build(ctx, d.source, d.opts)
			if err != nil {
				d.logger.Error("[Dashboard] Build failed: %v", err)
				d.err.Store(&err)
				return
			}
			d.snapshot.Store(snap)
			d.logger.Info("[Dashboard] Ready: %d films, %d variants in %v", snap.Table.Len(), snap.Catalog.Len(), snap.Duration)
		}()
	})
}

// Build runs the pipeline synchronously
func Build(ctx context.Context, source Source, opts charts.Options) (*Snapshot, error) {
	started := time.Now()

	table, err := source()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load films")
	}
	genres, err := analysis.Aggregate(table, film.ByGenre, film.Revenue)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate genres")
	}
	distributors, err := analysis.Aggregate(table, film.ByDistributor, film.Revenue)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate distributors")
	}
	catalog, err := charts.Build(table, genres, distributors, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build chart catalog")
	}
	thumbs, err := charts.RenderThumbnails(ctx, catalog, charts.DashboardThumbnails)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render thumbnails")
	}

	return &Snapshot{
		Table:        table,
		Genres:       genres,
		Distributors: distributors,
		Catalog:      catalog,
		Thumbnails:   thumbs,
		BuiltAt:      time.Now().UTC(),
		Duration:     time.Since(started),
	}, nil
}

// Snapshot returns the published result or a NOT_READY error
func (d *Dashboard) Snapshot() (*Snapshot, error) {
	if snap := d.snapshot.Load(); snap != nil {
		return snap, nil
	}
	if errp := d.err.Load(); errp != nil {
		return nil, *errp
	}
	return nil, errors.NotReady("dashboard")
}

// Catalog is shorthand for Snapshot().Catalog
func (d *Dashboard) Catalog() (*charts.Catalog, error) {
	snap, err := d.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Catalog, nil
}

// Ready reports whether the snapshot has been published
func (d *Dashboard) Ready() bool {
	return d.snapshot.Load() != nil
}

// Wait blocks until the build finishes or ctx ends, returning the build error
func (d *Dashboard) Wait(ctx context.Context) error {
	select {
	case <-d.done:
		if errp := d.err.Load(); errp != nil {
			return *errp
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err reports a failed build, nil while building or after success
func (d *Dashboard) Err() error {
	if errp := d.err.Load(); errp != nil {
		return *errp
	}
	return nil
}

// Done is closed once the build has finished, successfully or not
func (d *Dashboard) Done() <-chan struct{} {
	return d.done
}
