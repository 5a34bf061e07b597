package charts

import (
	"strings"

	"filmdash/internal/errors"
)

// Group identifies a family of chart variants sharing one shape
type Group string

const (
	GroupGenreMean          Group = "genre-mean-revenue"
	GroupGenreTotal         Group = "genre-total-revenue"
	GroupRuntime            Group = "runtime"
	GroupTimeline           Group = "revenue-timeline"
	GroupDistributorTreemap Group = "distributor-treemap"
	GroupDistributorMean    Group = "distributor-mean-revenue"
)

// Measure picks the y value of the runtime histograms
type Measure string

const (
	MeasureTotal Measure = "total"
	MeasureMean  Measure = "mean"
	MeasureCount Measure = "count"
)

// Selection option values sent by the dashboard controls
const (
	OptionPreferredGenres = "SPG"
	OptionErrorBars       = "SEB"
)

const (
	tokenHighlight = "highlight"
	tokenErrors    = "errors"
)

// Key names one variant: a group plus its toggle combination
type Key struct {
	Group     Group
	Highlight bool
	ErrorBars bool
	Measure   Measure
}

// String renders the stable form, e.g. "genre-mean-revenue/highlight/errors"
func (k Key) String() string {
	parts := []string{string(k.Group)}
	if k.Measure != "" {
		parts = append(parts, string(k.Measure))
	}
	if k.Highlight {
		parts = append(parts, tokenHighlight)
	}
	if k.ErrorBars {
		parts = append(parts, tokenErrors)
	}
	return strings.Join(parts, "/")
}

// ParseKey is the inverse of Key.String. It only checks syntax; whether the
// combination exists is up to Catalog.Lookup.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(strings.Trim(s, "/"), "/")
	if parts[0] == "" {
		return Key{}, errors.UnknownVariant(s)
	}

	k := Key{Group: Group(parts[0])}
	for _, p := range parts[1:] {
		switch {
		case p == tokenHighlight && !k.Highlight:
			k.Highlight = true
		case p == tokenErrors && !k.ErrorBars:
			k.ErrorBars = true
		case isMeasure(p) && k.Measure == "":
			k.Measure = Measure(p)
		default:
			return Key{}, errors.UnknownVariant(s)
		}
	}
	return k, nil
}

func isMeasure(s string) bool {
	switch Measure(s) {
	case MeasureTotal, MeasureMean, MeasureCount:
		return true
	}
	return false
}

// Select maps dashboard control values onto a key. Toggles the group does
// not offer are ignored, matching the controls that hide them.
func Select(group Group, options []string) (Key, error) {
	plan, ok := planFor(group)
	if !ok {
		return Key{}, errors.UnknownVariant(string(group))
	}

	k := Key{Group: group}
	if len(plan.measures) > 0 {
		k.Measure = plan.measures[0]
	}
	for _, opt := range options {
		switch {
		case opt == OptionPreferredGenres:
			k.Highlight = offers(plan.highlight)
		case opt == OptionErrorBars:
			k.ErrorBars = offers(plan.errorBars)
		case isMeasure(opt) && containsMeasure(plan.measures, Measure(opt)):
			k.Measure = Measure(opt)
		case opt == "":
		default:
			return Key{}, errors.InvalidInput("unknown chart option " + opt)
		}
	}
	return k, nil
}

func offers(toggle []bool) bool {
	return len(toggle) > 1
}

func containsMeasure(ms []Measure, m Measure) bool {
	for _, x := range ms {
		if x == m {
			return true
		}
	}
	return false
}
