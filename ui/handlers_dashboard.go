package ui

import (
	"net/http"
	"strings"

	"filmdash/internal/charts"
	"filmdash/internal/errors"

	"github.com/gin-gonic/gin"
)

// chartChoice is one dropdown entry of a graph page
type chartChoice struct {
	Label   string
	Group   charts.Group
	Option  string
	Toggles []string
}

// ToggleList is the space separated form used in data attributes
func (c chartChoice) ToggleList() string {
	return strings.Join(c.Toggles, " ")
}

type chartToggle struct {
	Label string
	Value string
}

// graphPage is one dashboard page: a question, a chart and its controls
type graphPage struct {
	Slug        string
	Question    string
	Description string
	Choices     []chartChoice
	Toggles     []chartToggle
}

var (
	togglePreferred = chartToggle{Label: "Show Preferred Genres", Value: charts.OptionPreferredGenres}
	toggleErrorBars = chartToggle{Label: "Show Error Bars", Value: charts.OptionErrorBars}
)

var graphPages = []graphPage{
	{
		Slug:        "graph-page-1",
		Question:    "Which Movie Genres are more Popular?",
		Description: "Discover how much revenue (overall and average) each main genre made",
		Choices: []chartChoice{
			{Label: "Mean Revenue", Group: charts.GroupGenreMean, Toggles: []string{charts.OptionPreferredGenres, charts.OptionErrorBars}},
			{Label: "Overall Revenue", Group: charts.GroupGenreTotal, Toggles: []string{charts.OptionPreferredGenres}},
		},
		Toggles: []chartToggle{togglePreferred, toggleErrorBars},
	},
	{
		Slug:        "graph-page-2",
		Question:    "What are the Most Popular Runtimes?",
		Description: "Learn about the number of films, overall and average revenue for different lengths",
		Choices: []chartChoice{
			{Label: "Overall Revenue", Group: charts.GroupRuntime, Option: string(charts.MeasureTotal)},
			{Label: "Mean Revenue", Group: charts.GroupRuntime, Option: string(charts.MeasureMean)},
			{Label: "Number of Movies", Group: charts.GroupRuntime, Option: string(charts.MeasureCount)},
		},
	},
	{
		Slug:        "graph-page-3",
		Question:    "How much are Top Movies Making?",
		Description: "Understand the impact that COVID-19 has had on film revenue",
		Choices: []chartChoice{
			{Label: "Revenue by Release Date", Group: charts.GroupTimeline},
		},
	},
	{
		Slug:        "graph-page-4",
		Question:    "How much are Distributors Making?",
		Description: "Find out how much money distributors made overall and on average",
		Choices: []chartChoice{
			{Label: "Overall Revenue", Group: charts.GroupDistributorTreemap},
			{Label: "Mean Revenue", Group: charts.GroupDistributorMean, Toggles: []string{charts.OptionErrorBars}},
		},
		Toggles: []chartToggle{toggleErrorBars},
	},
}

// ready renders the error page and returns false until the dashboard is built
func (s *Server) ready(c *gin.Context) bool {
	if _, err := s.services.Dashboard.Snapshot(); err != nil {
		s.fail(c, err)
		return false
	}
	return true
}

func (s *Server) handleDashboard(c *gin.Context) {
	if !s.ready(c) {
		return
	}
	s.renderTemplate(c, http.StatusOK, "dashboard.html", s.page(c, "Film Dashboard", gin.H{
		"Pages": graphPages,
	}))
}

func (s *Server) handleGraphPage(page graphPage) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.ready(c) {
			return
		}
		s.renderTemplate(c, http.StatusOK, "graph.html", s.page(c, page.Question, gin.H{
			"Page": page,
		}))
	}
}

// handleThumbnail serves the PNG preview of a dashboard card, e.g. graph-page-1.png
func (s *Server) handleThumbnail(c *gin.Context) {
	snap, err := s.services.Dashboard.Snapshot()
	if err != nil {
		s.fail(c, err)
		return
	}
	name, ok := strings.CutSuffix(c.Param("image"), ".png")
	image, found := snap.Thumbnails[name]
	if !ok || !found {
		s.fail(c, errors.NotFound("image"))
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", image)
}
