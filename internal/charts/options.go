package charts

import (
	"fmt"
	"time"

	"filmdash/internal/errors"
)

// Band is a shaded date range drawn behind the revenue timeline
type Band struct {
	Name     string    `json:"name"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Color    string    `json:"color"`
	Position string    `json:"position"` // "top left" or "top right"
}

// Options carries everything the builder does not derive from data
type Options struct {
	PreferredGenres []string
	BaseColor       string
	HighlightColor  string
	RuntimeBins     int
	TimelineBands   []Band
	TimelineYMax    float64
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DefaultTimelineBands are the pandemic eras shown on the timeline
func DefaultTimelineBands() []Band {
	return []Band{
		{Name: "Pre-Lockdown", Start: date(2018, 1, 1), End: date(2020, 3, 15), Color: "rgb(0,255,0)", Position: "top left"},
		{Name: "Lockdown", Start: date(2020, 3, 15), End: date(2020, 7, 15), Color: "rgb(255,0,0)", Position: "top left"},
		{Name: "Post-Lockdown", Start: date(2020, 7, 15), End: date(2021, 10, 21), Color: "rgb(255,153,0)", Position: "top right"},
	}
}

// DefaultOptions returns the dashboard's stock look
func DefaultOptions() Options {
	return Options{
		PreferredGenres: []string{"History", "Romance", "Action"},
		BaseColor:       "lightslategray",
		HighlightColor:  "crimson",
		RuntimeBins:     8,
		TimelineBands:   DefaultTimelineBands(),
		TimelineYMax:    2.9e9,
	}
}

// Validate checks bins, clamp and that bands are ordered and disjoint
func (o Options) Validate() error {
	if o.RuntimeBins < 1 {
		return errors.ConfigInvalid("runtime bins must be at least 1")
	}
	if o.TimelineYMax <= 0 {
		return errors.ConfigInvalid("timeline y-axis maximum must be positive")
	}
	if o.BaseColor == "" || o.HighlightColor == "" {
		return errors.ConfigInvalid("bar colors are required")
	}
	for i, b := range o.TimelineBands {
		if !b.Start.Before(b.End) {
			return errors.ConfigInvalid(fmt.Sprintf("band %q must start before it ends", b.Name))
		}
		if b.Position != "top left" && b.Position != "top right" {
			return errors.ConfigInvalid(fmt.Sprintf("band %q has unknown label position %q", b.Name, b.Position))
		}
		if i > 0 && b.Start.Before(o.TimelineBands[i-1].End) {
			return errors.ConfigInvalid(fmt.Sprintf("band %q overlaps %q", b.Name, o.TimelineBands[i-1].Name))
		}
	}
	return nil
}

func (o Options) preferred(label string) bool {
	for _, g := range o.PreferredGenres {
		if g == label {
			return true
		}
	}
	return false
}
