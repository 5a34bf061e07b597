// Package charts builds the immutable catalog of dashboard figures.
//
// Figures are plain data in the shape plotly.js expects ({data, layout}), so
// the browser only renders what was computed at startup.
package charts

// Colors of the plotly_white theme the dashboard mimics
const (
	themeBackground = "white"
	themeGrid       = "#EBF0F8"
	themeFont       = "#2a3f5f"
)

// Figure is a renderable chart description
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one plotly series. X and Y hold []string, []float64 or
// []interface{} after decoding.
type Trace struct {
	Type          string      `json:"type"`
	Name          string      `json:"name,omitempty"`
	Orientation   string      `json:"orientation,omitempty"`
	Mode          string      `json:"mode,omitempty"`
	Fill          string      `json:"fill,omitempty"`
	X             interface{} `json:"x,omitempty"`
	Y             interface{} `json:"y,omitempty"`
	Width         []float64   `json:"width,omitempty"`
	Marker        *Marker     `json:"marker,omitempty"`
	Line          *Line       `json:"line,omitempty"`
	ErrorX        *ErrorBar   `json:"error_x,omitempty"`
	ErrorY        *ErrorBar   `json:"error_y,omitempty"`
	CustomData    [][]float64 `json:"customdata,omitempty"`
	HoverTemplate string      `json:"hovertemplate,omitempty"`

	// treemap
	IDs          []string  `json:"ids,omitempty"`
	Labels       []string  `json:"labels,omitempty"`
	Parents      []string  `json:"parents,omitempty"`
	Values       []float64 `json:"values,omitempty"`
	BranchValues string    `json:"branchvalues,omitempty"`
}

// Marker styles bars and treemap tiles. Color is a single color name, a
// per-point list of names, or per-point numbers mapped through ColorScale.
// Treemaps read their per-tile numbers from Colors instead.
type Marker struct {
	Color      interface{} `json:"color,omitempty"`
	Colors     []float64   `json:"colors,omitempty"`
	ColorScale string      `json:"colorscale,omitempty"`
	CMid       *float64    `json:"cmid,omitempty"`
	ShowScale  bool        `json:"showscale,omitempty"`
	ColorBar   *ColorBar   `json:"colorbar,omitempty"`
}

type ColorBar struct {
	Title Title `json:"title"`
}

type Line struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width"`
}

// ErrorBar draws symmetric data error bars
type ErrorBar struct {
	Type    string    `json:"type"`
	Array   []float64 `json:"array"`
	Visible bool      `json:"visible"`
}

type Font struct {
	Size  float64 `json:"size,omitempty"`
	Color string  `json:"color,omitempty"`
}

type Title struct {
	Text    string  `json:"text"`
	X       float64 `json:"x,omitempty"`
	XAnchor string  `json:"xanchor,omitempty"`
}

type Axis struct {
	Title         Title         `json:"title"`
	Type          string        `json:"type,omitempty"`
	Range         []interface{} `json:"range,omitempty"`
	TickFont      *Font         `json:"tickfont,omitempty"`
	GridColor     string        `json:"gridcolor,omitempty"`
	ZeroLineColor string        `json:"zerolinecolor,omitempty"`
	AutoMargin    bool          `json:"automargin,omitempty"`
}

// Shape is a layout rectangle; used for the shaded timeline bands
type Shape struct {
	Type      string  `json:"type"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	X0        string  `json:"x0"`
	X1        string  `json:"x1"`
	Y0        float64 `json:"y0"`
	Y1        float64 `json:"y1"`
	FillColor string  `json:"fillcolor"`
	Opacity   float64 `json:"opacity"`
	Layer     string  `json:"layer"`
	Line      Line    `json:"line"`
}

type Annotation struct {
	Text      string  `json:"text"`
	X         string  `json:"x"`
	XRef      string  `json:"xref"`
	Y         float64 `json:"y"`
	YRef      string  `json:"yref"`
	XAnchor   string  `json:"xanchor"`
	YAnchor   string  `json:"yanchor"`
	ShowArrow bool    `json:"showarrow"`
	Font      Font    `json:"font"`
}

type Layout struct {
	Title        Title        `json:"title"`
	XAxis        Axis         `json:"xaxis"`
	YAxis        Axis         `json:"yaxis"`
	BarGap       *float64     `json:"bargap,omitempty"`
	HoverMode    string       `json:"hovermode,omitempty"`
	ShowLegend   bool         `json:"showlegend"`
	Shapes       []Shape      `json:"shapes,omitempty"`
	Annotations  []Annotation `json:"annotations,omitempty"`
	PaperBGColor string       `json:"paper_bgcolor"`
	PlotBGColor  string       `json:"plot_bgcolor"`
	Font         Font         `json:"font"`
}

// newLayout applies the shared title and theme settings
func newLayout(title, xLabel, yLabel string) Layout {
	return Layout{
		Title: Title{Text: title, X: 0.5, XAnchor: "center"},
		XAxis: Axis{
			Title:         Title{Text: xLabel},
			GridColor:     themeGrid,
			ZeroLineColor: themeGrid,
			AutoMargin:    true,
		},
		YAxis: Axis{
			Title:         Title{Text: yLabel},
			GridColor:     themeGrid,
			ZeroLineColor: themeGrid,
			AutoMargin:    true,
		},
		PaperBGColor: themeBackground,
		PlotBGColor:  themeBackground,
		Font:         Font{Color: themeFont},
	}
}

func float64Ptr(v float64) *float64 {
	return &v
}
