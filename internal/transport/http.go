package transport

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/officina/internal/domain/dashboard"
	"github.com/rpggio/officina/internal/domain/dependent"
	"github.com/rpggio/officina/internal/domain/project"
	"github.com/rpggio/officina/internal/domain/snippet"
	"github.com/rs/cors"
)

// Services groups the domain services exposed over HTTP.
type Services struct {
	Projects  *project.Service
	Quotes    *dependent.Service
	Contracts *dependent.Service
	Snippets  *snippet.Service
	Dashboard *dashboard.Service
}

// Options configure the HTTP surface.
type Options struct {
	Logger *slog.Logger
	// Auth guards /api and /mcp when set.
	Auth           func(http.Handler) http.Handler
	AllowedOrigins []string
	MaxUploadBytes int64
	// MCP is mounted at /mcp when set.
	MCP http.Handler
}

// Server wires HTTP handlers.
type Server struct {
	svc       Services
	logger    *slog.Logger
	maxUpload int64
}

// NewServer creates the HTTP handler with middleware: CORS, recovery, request
// ids and logging, then optional auth on everything except /health.
func NewServer(svc Services, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	srv := &Server{svc: svc, logger: logger, maxUpload: opts.MaxUploadBytes}

	r := chi.NewRouter()
	r.Use(Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))

	r.Get("/health", srv.handleHealth)

	r.Group(func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth)
		}

		if opts.MCP != nil {
			r.Handle("/mcp", opts.MCP)
		}

		r.Route("/api", func(r chi.Router) {
			r.Get("/dashboard", srv.handleDashboard)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", srv.handleListProjects)
				r.Post("/", srv.handleCreateProject)
				r.Get("/export", srv.handleExportProjects)
				r.Post("/tags/toggle", srv.handleToggleTag)
				r.Get("/{id}", srv.handleGetProject)
				r.Put("/{id}", srv.handleUpdateProject)
				r.Delete("/{id}", srv.handleDeleteProject)
			})

			r.Route("/quotes", srv.recordRoutes(svc.Quotes))
			r.Route("/contracts", srv.recordRoutes(svc.Contracts))

			r.Route("/snippets", func(r chi.Router) {
				r.Get("/", srv.handleListSnippets)
				r.Post("/", srv.handleCreateSnippet)
				r.Get("/{id}", srv.handleGetSnippet)
				r.Put("/{id}", srv.handleUpdateSnippet)
				r.Delete("/{id}", srv.handleDeleteSnippet)
			})
		})
	})

	return cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Mcp-Session-Id"},
		ExposedHeaders:   []string{"Content-Disposition", "Mcp-Session-Id"},
		AllowCredentials: true,
	}).Handler(r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Dashboard.Summary(r.Context())
	if err != nil {
		respondError(w, s.logger, err, dashboardMsgs)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
