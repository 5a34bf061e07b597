package charts

import (
	"fmt"
	"math"
	"sort"

	"filmdash/domain/film"
	"filmdash/internal/analysis"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	hoverMean  = "Mean Revenue: %{customdata[0]:.0f} (USD) <br><b>Number of Movies: %{customdata[1]:.0f}</b><extra></extra>"
	hoverTotal = "Overall Revenue: %{customdata[0]:.0f} (USD) <br><b>Number of Movies: %{customdata[1]:.0f}</b><extra></extra>"

	revenueLabel = "Revenue ($)"
	treemapRoot  = "Distribution Companies"
)

// sortKey selects the statistic bars are ordered and sized by
type sortKey int

const (
	byMean sortKey = iota
	byTotal
)

// groupPlan declares the toggle combinations a group is built for
type groupPlan struct {
	group     Group
	highlight []bool
	errorBars []bool
	measures  []Measure
	build     func(b *builder, k Key) Figure
}

var noToggle = []bool{false}
var bothToggles = []bool{false, true}

var groupPlans = []groupPlan{
	{
		group:     GroupGenreMean,
		highlight: bothToggles,
		errorBars: bothToggles,
		build: func(b *builder, k Key) Figure {
			return b.bars(barPlan{
				stats:     b.genres,
				sort:      byMean,
				highlight: k.Highlight,
				errorBars: k.ErrorBars,
				title:     "Average Revenue for Movies Containing Elements of Each Main Genre",
				category:  "Genre",
			})
		},
	},
	{
		group:     GroupGenreTotal,
		highlight: bothToggles,
		errorBars: noToggle,
		build: func(b *builder, k Key) Figure {
			return b.bars(barPlan{
				stats:     b.genres,
				sort:      byTotal,
				highlight: k.Highlight,
				title:     "Overall Revenue for Movies Containing Elements of Each Main Genre",
				category:  "Genre",
			})
		},
	},
	{
		group:     GroupRuntime,
		highlight: noToggle,
		errorBars: noToggle,
		measures:  []Measure{MeasureTotal, MeasureMean, MeasureCount},
		build: func(b *builder, k Key) Figure {
			return b.runtimeHistogram(k.Measure)
		},
	},
	{
		group:     GroupTimeline,
		highlight: noToggle,
		errorBars: noToggle,
		build: func(b *builder, _ Key) Figure {
			return b.timeline()
		},
	},
	{
		group:     GroupDistributorTreemap,
		highlight: noToggle,
		errorBars: noToggle,
		build: func(b *builder, _ Key) Figure {
			return b.treemap()
		},
	},
	{
		group:     GroupDistributorMean,
		highlight: noToggle,
		errorBars: bothToggles,
		build: func(b *builder, k Key) Figure {
			return b.bars(barPlan{
				stats:      b.distributors,
				sort:       byMean,
				errorBars:  k.ErrorBars,
				horizontal: true,
				logScale:   true,
				title:      "Mean Distributor Revenue",
				category:   "Distributor",
			})
		},
	},
}

func planFor(g Group) (groupPlan, bool) {
	for _, s := range groupPlans {
		if s.group == g {
			return s, true
		}
	}
	return groupPlan{}, false
}

// keys enumerates every declared combination of the group
func (s groupPlan) keys() []Key {
	measures := s.measures
	if len(measures) == 0 {
		measures = []Measure{""}
	}
	var out []Key
	for _, m := range measures {
		for _, h := range s.highlight {
			for _, e := range s.errorBars {
				out = append(out, Key{Group: s.group, Highlight: h, ErrorBars: e, Measure: m})
			}
		}
	}
	return out
}

type builder struct {
	table        *film.Table
	genres       []analysis.CategoryStat
	distributors []analysis.CategoryStat
	opts         Options
}

type barPlan struct {
	stats      []analysis.CategoryStat
	sort       sortKey
	highlight  bool
	errorBars  bool
	horizontal bool
	logScale   bool
	title      string
	category   string
}

func (s barPlan) value(c analysis.CategoryStat) float64 {
	if s.sort == byTotal {
		return c.Revenue().Sum
	}
	return c.Revenue().Mean
}

// bars draws one bar per category, ascending by the plan's statistic
func (b *builder) bars(plan barPlan) Figure {
	if len(plan.stats) == 0 {
		panic("charts: bar chart built from an empty category list")
	}

	sorted := append([]analysis.CategoryStat(nil), plan.stats...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return plan.value(sorted[i]) < plan.value(sorted[j])
	})

	n := len(sorted)
	labels := make([]string, n)
	values := make([]float64, n)
	colors := make([]string, n)
	errs := make([]float64, n)
	custom := make([][]float64, n)
	for i, c := range sorted {
		labels[i] = c.Category
		values[i] = plan.value(c)
		errs[i] = c.Revenue().StdErr
		custom[i] = []float64{values[i], float64(c.Count)}
		colors[i] = b.opts.BaseColor
		if plan.highlight && b.opts.preferred(c.Category) {
			colors[i] = b.opts.HighlightColor
		}
	}

	hover := hoverMean
	if plan.sort == byTotal {
		hover = hoverTotal
	}
	trace := Trace{
		Type:          "bar",
		Marker:        &Marker{Color: colors},
		CustomData:    custom,
		HoverTemplate: hover,
	}
	var errorBar *ErrorBar
	if plan.errorBars {
		errorBar = &ErrorBar{Type: "data", Array: errs, Visible: true}
	}

	var layout Layout
	if plan.horizontal {
		trace.Orientation = "h"
		trace.X, trace.Y = values, labels
		trace.ErrorX = errorBar
		layout = newLayout(plan.title, revenueLabel, plan.category)
		layout.YAxis.TickFont = &Font{Size: 9}
		layout.BarGap = float64Ptr(0.3)
		if plan.logScale {
			layout.XAxis.Type = "log"
		}
	} else {
		trace.X, trace.Y = labels, values
		trace.ErrorY = errorBar
		layout = newLayout(plan.title, plan.category, revenueLabel)
		if plan.logScale {
			layout.YAxis.Type = "log"
		}
	}

	return Figure{Data: []Trace{trace}, Layout: layout}
}

// runtimeBins splits the runtime range into equal-width bins and returns
// the dividers with per-bin film counts and revenue totals.
func (b *builder) runtimeBins() (dividers, counts, totals []float64) {
	n := b.table.Len()
	if n == 0 {
		panic("charts: runtime histogram built from an empty table")
	}

	runtimes := b.table.Column(film.Runtime)
	revenues := b.table.Column(film.Revenue)
	stat.SortWeighted(runtimes, revenues)

	lo, hi := floats.Min(runtimes), floats.Max(runtimes)
	if lo == hi {
		hi = lo + 1
	}
	dividers = make([]float64, b.opts.RuntimeBins+1)
	floats.Span(dividers, lo, hi)
	dividers[len(dividers)-1] = math.Nextafter(hi, math.Inf(1))

	counts = stat.Histogram(nil, dividers, runtimes, nil)
	totals = stat.Histogram(nil, dividers, runtimes, revenues)
	return dividers, counts, totals
}

func (b *builder) runtimeHistogram(m Measure) Figure {
	dividers, counts, totals := b.runtimeBins()

	bins := len(counts)
	centers := make([]float64, bins)
	widths := make([]float64, bins)
	values := make([]float64, bins)
	custom := make([][]float64, bins)
	for i := 0; i < bins; i++ {
		left, right := dividers[i], dividers[i+1]
		centers[i] = (left + right) / 2
		widths[i] = right - left
		switch m {
		case MeasureTotal:
			values[i] = totals[i]
		case MeasureMean:
			if counts[i] > 0 {
				values[i] = totals[i] / counts[i]
			}
		case MeasureCount:
			values[i] = counts[i]
		default:
			panic(fmt.Sprintf("charts: unknown runtime measure %q", m))
		}
		custom[i] = []float64{left, right, values[i], counts[i]}
	}

	title, yLabel, hover := "Overall Revenue per Runtime", revenueLabel,
		"Runtime: %{customdata[0]:.0f}-%{customdata[1]:.0f} min<br>Overall Revenue: %{customdata[2]:.0f} (USD)<br><b>Number of Movies: %{customdata[3]:.0f}</b><extra></extra>"
	switch m {
	case MeasureMean:
		title = "Mean Revenue per Runtime"
		hover = "Runtime: %{customdata[0]:.0f}-%{customdata[1]:.0f} min<br>Mean Revenue: %{customdata[2]:.0f} (USD)<br><b>Number of Movies: %{customdata[3]:.0f}</b><extra></extra>"
	case MeasureCount:
		title, yLabel = "Movies per Runtime", "Number of Movies"
		hover = "Runtime: %{customdata[0]:.0f}-%{customdata[1]:.0f} min<br><b>Number of Movies: %{customdata[3]:.0f}</b><extra></extra>"
	}

	layout := newLayout(title, "Runtime (minutes)", yLabel)
	layout.BarGap = float64Ptr(0.02)
	if m != MeasureCount {
		layout.YAxis.Type = "log"
	}

	return Figure{
		Data: []Trace{{
			Type:          "bar",
			X:             centers,
			Y:             values,
			Width:         widths,
			Marker:        &Marker{Color: b.opts.BaseColor},
			CustomData:    custom,
			HoverTemplate: hover,
		}},
		Layout: layout,
	}
}

// revenueByDate sums revenue per distinct release day, ascending by date
func (b *builder) revenueByDate() (dates []string, totals, counts []float64) {
	index := make(map[string]int)
	films := b.table.Films()
	sort.SliceStable(films, func(i, j int) bool {
		return films[i].ReleaseDate.Before(films[j].ReleaseDate)
	})
	for _, f := range films {
		d := f.ReleaseDate.Format("2006-01-02")
		i, ok := index[d]
		if !ok {
			i = len(dates)
			index[d] = i
			dates = append(dates, d)
			totals = append(totals, 0)
			counts = append(counts, 0)
		}
		totals[i] += f.Revenue
		counts[i]++
	}
	return dates, totals, counts
}

func (b *builder) timeline() Figure {
	if b.table.Len() == 0 {
		panic("charts: timeline built from an empty table")
	}
	dates, totals, counts := b.revenueByDate()

	custom := make([][]float64, len(counts))
	for i, c := range counts {
		custom[i] = []float64{c}
	}

	layout := newLayout("Revenue of Top Movies per Release Date", "Release Date", revenueLabel)
	layout.XAxis.Type = "date"
	layout.YAxis.Range = []interface{}{0, b.opts.TimelineYMax}
	layout.HoverMode = "x unified"
	for _, band := range b.opts.TimelineBands {
		x0, x1 := band.Start.Format("2006-01-02"), band.End.Format("2006-01-02")
		layout.Shapes = append(layout.Shapes, Shape{
			Type:      "rect",
			XRef:      "x",
			YRef:      "paper",
			X0:        x0,
			X1:        x1,
			Y0:        0,
			Y1:        1,
			FillColor: band.Color,
			Opacity:   0.2,
			Layer:     "below",
			Line:      Line{Width: 0},
		})
		anchor, x := "left", x0
		if band.Position == "top right" {
			anchor, x = "right", x1
		}
		layout.Annotations = append(layout.Annotations, Annotation{
			Text:    band.Name,
			X:       x,
			XRef:    "x",
			Y:       1,
			YRef:    "paper",
			XAnchor: anchor,
			YAnchor: "top",
			Font:    Font{Color: "grey"},
		})
	}

	return Figure{
		Data: []Trace{{
			Type:          "scatter",
			Mode:          "lines",
			Fill:          "tonexty",
			X:             dates,
			Y:             totals,
			Line:          &Line{Color: b.opts.BaseColor, Width: 1},
			CustomData:    custom,
			HoverTemplate: "Revenue: %{y:.0f} (USD)<br><b>Number of Movies: %{customdata[0]:.0f}</b><extra></extra>",
		}},
		Layout: layout,
	}
}

// treemapMidpoint is the revenue-weighted mean film count per distributor
func treemapMidpoint(counts, revenues []float64) float64 {
	if floats.Sum(revenues) == 0 {
		return stat.Mean(counts, nil)
	}
	return stat.Mean(counts, revenues)
}

func (b *builder) treemap() Figure {
	if len(b.distributors) == 0 {
		panic("charts: treemap built from an empty category list")
	}

	n := len(b.distributors)
	counts := make([]float64, n)
	revenues := make([]float64, n)
	for i, d := range b.distributors {
		counts[i] = float64(d.Count)
		revenues[i] = d.Revenue().Sum
	}
	mid := treemapMidpoint(counts, revenues)

	ids := []string{treemapRoot}
	labels := []string{treemapRoot}
	parents := []string{""}
	values := []float64{floats.Sum(revenues)}
	colors := []float64{mid}
	for i, d := range b.distributors {
		ids = append(ids, treemapRoot+"/"+d.Category)
		labels = append(labels, d.Category)
		parents = append(parents, treemapRoot)
		values = append(values, revenues[i])
		colors = append(colors, counts[i])
	}

	layout := newLayout("Distributor Revenue", "", "")
	return Figure{
		Data: []Trace{{
			Type:         "treemap",
			IDs:          ids,
			Labels:       labels,
			Parents:      parents,
			Values:       values,
			BranchValues: "total",
			Marker: &Marker{
				Colors:     colors,
				ColorScale: "RdBu",
				CMid:       float64Ptr(mid),
				ShowScale:  true,
				ColorBar:   &ColorBar{Title: Title{Text: "Number of Movies"}},
			},
			HoverTemplate: "%{label}<br>Revenue: %{value:.0f} (USD)<br><b>Number of Movies: %{color:.0f}</b><extra></extra>",
		}},
		Layout: layout,
	}
}
