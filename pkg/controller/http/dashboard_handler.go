package http

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/render"
	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/phenodash/pkg/domain/model"
	"github.com/secmon-lab/phenodash/pkg/domain/types"
	"github.com/secmon-lab/phenodash/pkg/service/chart"
	"github.com/secmon-lab/phenodash/pkg/service/export"
	"github.com/secmon-lab/phenodash/pkg/utils/apperr"
)

const (
	chartWidth  = 800
	chartHeight = 320
)

type phenotypeOption struct {
	Phenotype types.Phenotype
	Checked   bool
}

type dashboardPage struct {
	View       *model.View
	Options    []phenotypeOption
	ExportCSV  template.URL
	ExportXLSX template.URL
	Line       *chart.Figure
	Area       *chart.Figure
	Live       bool
}

type errorPage struct {
	Title   string
	Message string
}

func newDashboardPage(view *model.View, live bool) *dashboardPage {
	selected := make(map[types.Phenotype]bool, len(view.Selected))
	for _, p := range view.Selected {
		selected[p] = true
	}

	options := make([]phenotypeOption, 0, len(view.Options))
	for _, p := range view.Options {
		options = append(options, phenotypeOption{Phenotype: p, Checked: selected[p]})
	}

	query := encodeQuery(view)
	return &dashboardPage{
		View:       view,
		Options:    options,
		ExportCSV:  template.URL("/api/records.csv?" + query),
		ExportXLSX: template.URL("/api/records.xlsx?" + query),
		Line:       chart.Line(view.Series, chartWidth, chartHeight),
		Area:       chart.StackedArea(view.Series, chartWidth, chartHeight),
		Live:       live,
	}
}

func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	query, err := parseQuery(r, s.validate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := s.dashboard.Render(r.Context(), query)
	if err != nil {
		apperr.Handle(r.Context(), err)
		s.writeHTML(w, r, http.StatusInternalServerError, "error.html", &errorPage{
			Title:   "Dataset unavailable",
			Message: errorMessage(err),
		})
		return
	}

	s.writeHTML(w, r, http.StatusOK, "dashboard.html", newDashboardPage(view, s.live != nil))
}

// writeHTML renders into a buffer first so a template failure never leaves
// a half written page behind a 200 status.
func (s *Server) writeHTML(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		apperr.Handle(r.Context(), err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		ctxlog.From(r.Context()).Warn("Failed to write page", "error", err)
	}
}

func (s *Server) handleDashboardJSON(w http.ResponseWriter, r *http.Request) {
	query, err := parseQuery(r, s.validate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := s.dashboard.Render(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, view)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := export.Format(strings.TrimPrefix(path.Ext(r.URL.Path), "."))

	query, err := parseQuery(r, s.validate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := s.dashboard.Render(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, view); err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(view, format)))
	if _, err := buf.WriteTo(w); err != nil {
		ctxlog.From(r.Context()).Warn("Failed to write export", "error", err)
	}
}

func exportFilename(view *model.View, format export.Format) string {
	if view.Range.IsEmpty() {
		return "weekly_staph_phenotypes." + string(format)
	}
	return fmt.Sprintf("weekly_staph_phenotypes_%s_%s.%s",
		view.Range.Start.Format(model.DateLayout),
		view.Range.End.Format(model.DateLayout),
		format,
	)
}
