// Package server exposes the ingestion pipeline over HTTP: document
// upload and listing, draft review, XLSX export and queue control.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/healthfolio/labingest/internal/common"
	"github.com/healthfolio/labingest/internal/core/async"
	"github.com/healthfolio/labingest/internal/export"
	"github.com/healthfolio/labingest/internal/ingest"
	"github.com/healthfolio/labingest/internal/mapping"
	"github.com/healthfolio/labingest/internal/metrics"
	"github.com/healthfolio/labingest/internal/repository"
)

type Server struct {
	logger    *slog.Logger
	cfg       common.ServerConfig
	ingestSvc *ingest.Service
	repo      repository.DocumentRepository
	review    *mapping.ReviewService
	exporter  *export.Service
	queue     *async.DocumentQueue
	collector *metrics.Collector
	validate  *validator.Validate
}

func New(
	logger *slog.Logger,
	cfg common.ServerConfig,
	ingestSvc *ingest.Service,
	repo repository.DocumentRepository,
	review *mapping.ReviewService,
	exporter *export.Service,
	queue *async.DocumentQueue,
	collector *metrics.Collector,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:    logger,
		cfg:       cfg,
		ingestSvc: ingestSvc,
		repo:      repo,
		review:    review,
		exporter:  exporter,
		queue:     queue,
		collector: collector,
		validate:  validator.New(),
	}
}

// Handler builds the full route tree with the middleware stack applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	if s.cfg.RateLimit > 0 {
		window := s.cfg.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		r.Use(httprate.LimitByIP(s.cfg.RateLimit, window))
	}
	if s.collector != nil {
		r.Use(s.instrument)
	}

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.MetricsHandler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", s.handleUploadDocument)
			r.Get("/", s.handleListDocuments)
			r.Route("/{documentID}", func(r chi.Router) {
				r.Get("/", s.handleGetDocument)
				r.Get("/draft", s.handleGetDraft)
				r.Post("/review", s.handleReview)
				r.Get("/values", s.handleListValues)
				r.Get("/export.xlsx", s.handleExportXLSX)
			})
		})
		r.Route("/queue", func(r chi.Router) {
			r.Get("/", s.handleQueueSnapshot)
			r.Post("/items/{itemID}/cancel", s.handleQueueCancel)
			r.Post("/clear", s.handleQueueClear)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := common.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := s.repo.Ping(ctx); err != nil {
		s.writeError(w, r, common.NewAppError(common.CodeDatabase, "database unreachable", err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
