package charts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"filmdash/internal/errors"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/sync/errgroup"
)

const (
	thumbWidth  = 480
	thumbHeight = 300
)

// Thumbnail pairs a dashboard page with the variant previewed on its card
type Thumbnail struct {
	Page string
	Key  Key
}

// DashboardThumbnails are the four cards on the dashboard home page
var DashboardThumbnails = []Thumbnail{
	{Page: "graph-page-1", Key: Key{Group: GroupGenreMean, Highlight: true}},
	{Page: "graph-page-2", Key: Key{Group: GroupRuntime, Measure: MeasureCount}},
	{Page: "graph-page-3", Key: Key{Group: GroupTimeline}},
	{Page: "graph-page-4", Key: Key{Group: GroupDistributorMean}},
}

var namedColors = map[string]string{
	"lightslategray": "778899",
	"crimson":        "DC143C",
	"steelblue":      "4682B4",
	"grey":           "808080",
	"gray":           "808080",
}

func colorOf(name string) drawing.Color {
	if hex, ok := namedColors[strings.ToLower(name)]; ok {
		return drawing.ColorFromHex(hex)
	}
	if strings.HasPrefix(name, "#") {
		return drawing.ColorFromHex(strings.TrimPrefix(name, "#"))
	}
	return chart.ColorAlternateGray
}

// RenderThumbnails renders one PNG per page concurrently, keyed by page
func RenderThumbnails(ctx context.Context, c *Catalog, pages []Thumbnail) (map[string][]byte, error) {
	images := make([][]byte, len(pages))
	g, gctx := errgroup.WithContext(ctx)

	for i, page := range pages {
		i, page := i, page
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := c.Lookup(page.Key)
			if err != nil {
				return err
			}
			fig, err := v.Figure()
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := RenderThumbnail(fig, &buf); err != nil {
				return errors.Wrapf(err, "failed to render thumbnail for %s", page.Page)
			}
			images[i] = buf.Bytes()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(pages))
	for i, page := range pages {
		out[page.Page] = images[i]
	}
	return out, nil
}

// RenderThumbnail draws a simplified PNG of a bar or scatter figure
func RenderThumbnail(fig Figure, w io.Writer) error {
	if len(fig.Data) == 0 {
		return errors.InvalidInput("figure has no traces")
	}
	trace := fig.Data[0]
	switch trace.Type {
	case "bar":
		return renderBars(fig.Layout.Title.Text, trace, w)
	case "scatter":
		return renderTimeline(fig.Layout.Title.Text, trace, w)
	default:
		return errors.InvalidInput(fmt.Sprintf("no thumbnail for %s traces", trace.Type))
	}
}

func renderBars(title string, trace Trace, w io.Writer) error {
	labels, values := toStrings(trace.X), toFloats(trace.Y)
	if trace.Orientation == "h" {
		labels, values = toStrings(trace.Y), toFloats(trace.X)
	}
	if len(values) == 0 {
		return errors.InvalidInput("bar trace has no values")
	}
	colors := barColors(trace.Marker, len(values))

	max := 0.0
	bars := make([]chart.Value, len(values))
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		bars[i] = chart.Value{
			Label: label,
			Value: v,
			Style: chart.Style{FillColor: colorOf(colors[i]), StrokeColor: colorOf(colors[i])},
		}
		if v > max {
			max = v
		}
	}
	if max == 0 {
		max = 1
	}

	graph := chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontSize: 9},
		Width:      thumbWidth,
		Height:     thumbHeight,
		BarWidth:   barWidth(len(bars)),
		BarSpacing: 2,
		Background: chart.Style{
			Padding: chart.Box{Top: 30, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.Style{FontSize: 5},
		YAxis: chart.YAxis{
			Style: chart.Style{FontSize: 6},
			Range: &chart.ContinuousRange{Min: 0, Max: max * 1.05},
		},
		Bars: bars,
	}
	return graph.Render(chart.PNG, w)
}

func renderTimeline(title string, trace Trace, w io.Writer) error {
	dates, values := toStrings(trace.X), toFloats(trace.Y)
	var xs []time.Time
	var ys []float64
	for i, d := range dates {
		t, err := time.Parse("2006-01-02", d)
		if err != nil || i >= len(values) {
			continue
		}
		xs = append(xs, t)
		ys = append(ys, values[i])
	}
	if len(xs) == 0 {
		return errors.InvalidInput("timeline trace has no points")
	}
	// a single point gives go-chart a zero-width x range
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(24*time.Hour))
		ys = append(ys, ys[0])
	}

	color := chart.ColorAlternateGray
	if trace.Line != nil {
		color = colorOf(trace.Line.Color)
	}
	graph := chart.Chart{
		Title:      title,
		TitleStyle: chart.Style{FontSize: 9},
		Width:      thumbWidth,
		Height:     thumbHeight,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 10, Right: 10, Bottom: 10}},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Revenue",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: color,
					FillColor:   color.WithAlpha(96),
				},
			},
		},
	}
	return graph.Render(chart.PNG, w)
}

func barWidth(n int) int {
	w := (thumbWidth-80)/n - 2
	if w < 2 {
		return 2
	}
	return w
}

func barColors(m *Marker, n int) []string {
	out := make([]string, n)
	var single string
	var list []string
	if m != nil {
		switch c := m.Color.(type) {
		case string:
			single = c
		case []string:
			list = c
		case []interface{}:
			list = toStrings(c)
		}
	}
	for i := range out {
		out[i] = single
		if i < len(list) {
			out[i] = list[i]
		}
	}
	return out
}

func toStrings(v interface{}) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []interface{}:
		out := make([]string, 0, len(s))
		for _, x := range s {
			out = append(out, fmt.Sprint(x))
		}
		return out
	}
	return nil
}

func toFloats(v interface{}) []float64 {
	switch s := v.(type) {
	case []float64:
		return s
	case []interface{}:
		out := make([]float64, 0, len(s))
		for _, x := range s {
			if f, ok := x.(float64); ok {
				out = append(out, f)
			}
		}
		return out
	}
	return nil
}
