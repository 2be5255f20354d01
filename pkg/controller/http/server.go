package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/phenodash/frontend"
	"github.com/secmon-lab/phenodash/pkg/domain/interfaces"
	"github.com/secmon-lab/phenodash/pkg/domain/model"
	"github.com/secmon-lab/phenodash/pkg/service/metrics"
	"github.com/secmon-lab/phenodash/pkg/utils/apperr"
)

// Server represents the HTTP server
type Server struct {
	*http.Server
	router    chi.Router
	dashboard interfaces.Dashboard
	validate  *validator.Validate
	templates *template.Template
	metrics   *metrics.Metrics
	live      *LiveHub
}

// Option configures optional parts of the server
type Option func(*Server)

// WithMetrics exposes the registry on /metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLiveHub enables the /ws live reload endpoint
func WithLiveHub(hub *LiveHub) Option {
	return func(s *Server) {
		s.live = hub
	}
}

// NewServer creates a new HTTP server
func NewServer(ctx context.Context, addr string, dashboard interfaces.Dashboard, opts ...Option) (*Server, error) {
	templates, err := parseTemplates(frontend.Templates())
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	server := &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
		router:    router,
		dashboard: dashboard,
		validate:  newValidator(),
		templates: templates,
	}
	for _, opt := range opts {
		opt(server)
	}

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	router.Get("/health", handleHealth)
	if server.metrics != nil {
		router.Handle("/metrics", server.metrics.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", server.handleDashboardJSON)
		r.Get("/records.csv", server.handleExport)
		r.Get("/records.xlsx", server.handleExport)
	})

	if server.live != nil {
		router.Handle("/ws", server.live)
	}

	static, err := frontend.GetHTTPFS()
	if err != nil {
		ctxlog.From(ctx).Warn("Failed to get embedded static assets", "error", err)
	} else {
		router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static)))
	}

	router.Get("/", server.handleDashboardPage)

	return server, nil
}

func parseTemplates(fsys fs.FS) (*template.Template, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(model.DateLayout)
		},
		"add": func(a, b float64) float64 { return a + b },
		"sub": func(a, b float64) float64 { return a - b },
	}).ParseFS(fsys, "*.html")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse templates")
	}
	return t, nil
}

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"status":  "healthy",
		"service": "phenodash",
	})
}

// statusOf maps an error to its HTTP status. Anything that is not a bad
// request is a dataset failure, which has no fallback.
func statusOf(err error) int {
	if goerr.HasTag(err, ErrTagInvalidQuery) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// errorMessage returns the message of the outermost goerr error
func errorMessage(err error) string {
	if goErr := goerr.Unwrap(err); goErr != nil {
		return goErr.Error()
	}
	return err.Error()
}

// writeError writes an error response
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		apperr.Handle(r.Context(), err)
	}

	render.Status(r, status)
	render.JSON(w, r, map[string]string{
		"error": errorMessage(err),
	})
}
