// Package api serves the chart catalog as JSON. It is a plain net/http
// handler so the web server can mount it under /api.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"filmdash/internal/charts"
	"filmdash/internal/dashboard"
	"filmdash/internal/errors"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SnapshotSource is the part of the dashboard the API reads
type SnapshotSource interface {
	Snapshot() (*dashboard.Snapshot, error)
	Ready() bool
	Err() error
}

// ChartHandler answers chart and status requests
type ChartHandler struct {
	source SnapshotSource
}

// NewChartHandler creates a chart handler
func NewChartHandler(source SnapshotSource) *ChartHandler {
	return &ChartHandler{source: source}
}

// Router builds the chi router for the chart API
func Router(h *ChartHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)

	r.Get("/charts", h.listKeys)
	r.Get("/charts/key/*", h.byKey)
	r.Get("/charts/{group}", h.byGroup)
	r.Get("/stats/{by}", h.stats)
	r.Get("/dashboard/status", h.status)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	return r
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	message := "internal error"
	var appErr *errors.AppError
	switch {
	case !errors.As(err, &appErr):
		log.Printf("[API] Request failed: %v", err)
	case status < http.StatusInternalServerError, appErr.Code == errors.CodeNotReady:
		message = appErr.Message
	default:
		log.Printf("[API] Request failed: %v", err)
	}
	writeJSON(w, status, errorBody{Error: message, Code: errors.GetCode(err)})
}

func writeFigure(w http.ResponseWriter, v *charts.Variant) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Chart-Key", v.Key().String())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(v.JSON()); err != nil {
		log.Printf("[API] Failed to write figure %s: %v", v.Key(), err)
	}
}

func (h *ChartHandler) catalog(w http.ResponseWriter) (*charts.Catalog, bool) {
	snap, err := h.source.Snapshot()
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return snap.Catalog, true
}

type keysResponse struct {
	Keys   []string       `json:"keys"`
	Groups []charts.Group `json:"groups"`
}

func (h *ChartHandler) listKeys(w http.ResponseWriter, r *http.Request) {
	catalog, ok := h.catalog(w)
	if !ok {
		return
	}
	keys := catalog.Keys()
	out := keysResponse{Keys: make([]string, len(keys)), Groups: catalog.Groups()}
	for i, k := range keys {
		out.Keys[i] = k.String()
	}
	writeJSON(w, http.StatusOK, out)
}

// byGroup resolves dashboard control values, e.g. /charts/genre-mean-revenue?options=SPG&options=SEB
func (h *ChartHandler) byGroup(w http.ResponseWriter, r *http.Request) {
	catalog, ok := h.catalog(w)
	if !ok {
		return
	}
	key, err := charts.Select(charts.Group(chi.URLParam(r, "group")), r.URL.Query()["options"])
	if err != nil {
		writeError(w, err)
		return
	}
	variant, err := catalog.Lookup(key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeFigure(w, variant)
}

func (h *ChartHandler) byKey(w http.ResponseWriter, r *http.Request) {
	catalog, ok := h.catalog(w)
	if !ok {
		return
	}
	variant, err := catalog.LookupString(chi.URLParam(r, "*"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeFigure(w, variant)
}

func (h *ChartHandler) stats(w http.ResponseWriter, r *http.Request) {
	snap, err := h.source.Snapshot()
	if err != nil {
		writeError(w, err)
		return
	}
	switch chi.URLParam(r, "by") {
	case "genres":
		writeJSON(w, http.StatusOK, snap.Genres)
	case "distributors":
		writeJSON(w, http.StatusOK, snap.Distributors)
	default:
		writeError(w, errors.NotFound("statistics"))
	}
}

type statusResponse struct {
	Ready      bool      `json:"ready"`
	Error      string    `json:"error,omitempty"`
	Films      int       `json:"films,omitempty"`
	Variants   int       `json:"variants,omitempty"`
	BuiltAt    time.Time `json:"built_at,omitempty"`
	DurationMS int64     `json:"duration_ms,omitempty"`
}

func (h *ChartHandler) status(w http.ResponseWriter, r *http.Request) {
	var out statusResponse
	if err := h.source.Err(); err != nil {
		out.Error = err.Error()
		writeJSON(w, http.StatusInternalServerError, out)
		return
	}
	snap, err := h.source.Snapshot()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, out)
		return
	}
	out.Ready = true
	out.Films = snap.Table.Len()
	out.Variants = snap.Catalog.Len()
	out.BuiltAt = snap.BuiltAt
	out.DurationMS = snap.Duration.Milliseconds()
	writeJSON(w, http.StatusOK, out)
}
