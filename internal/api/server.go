// Package api serves the storefront listing over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront-workers/internal/catalog"
	"storefront-workers/internal/common/config"
	"storefront-workers/internal/common/database"
	"storefront-workers/internal/common/logger"
	"storefront-workers/internal/common/observability"
	"storefront-workers/internal/snapshot"
	reconcilecriteria "storefront-workers/internal/workers/catalog/reconcile-criteria"
)

// Dependencies are the collaborators the API reads from.
type Dependencies struct {
	Source     snapshot.Source
	Reconciler *catalog.Reconciler
	Stores     []database.Pinger
	Obs        *observability.Observability
	Logger     logger.Logger
}

// Server is the storefront listing API.
type Server struct {
	config     config.HTTPConfig
	router     *chi.Mux
	source     snapshot.Source
	reconciler *catalog.Reconciler
	reconcile  *reconcilecriteria.Handler
	stores     []database.Pinger
	obs        *observability.Observability
	logger     logger.Logger
}

func NewServer(cfg config.HTTPConfig, deps Dependencies) *Server {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	obs := deps.Obs
	if obs == nil {
		obs = observability.NewNoop()
	}
	reconciler := deps.Reconciler
	if reconciler == nil {
		reconciler = catalog.NewReconciler(catalog.DefaultVocabulary())
	}

	s := &Server{
		config:     cfg,
		source:     deps.Source,
		reconciler: reconciler,
		reconcile:  reconcilecriteria.NewHandler(reconcilecriteria.DefaultConfig(), reconciler, log),
		stores:     deps.Stores,
		obs:        obs,
		logger:     log.WithFields(map[string]interface{}{"component": "http"}),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout()))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins(),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", s.handleListProducts)
		r.Get("/facets", s.handleFacets)
		r.Post("/criteria/reconcile", s.handleReconcile)
		r.Get("/activities", s.handleActivities)
	})

	s.router = r
}

func (s *Server) requestTimeout() time.Duration {
	if s.config.RequestTimeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(s.config.RequestTimeout) * time.Millisecond
}

func (s *Server) allowedOrigins() []string {
	if len(s.config.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return s.config.AllowedOrigins
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request", map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"durationMs": time.Since(start).Milliseconds(),
				"requestId":  middleware.GetReqID(r.Context()),
			})
		}()

		next.ServeHTTP(ww, r)
	})
}
