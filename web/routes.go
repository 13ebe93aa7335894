/* routes.go
 * Contains the chi router of the HTTP API and its request logging middleware
 * Authors: Zachary Bower
 */

package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewServer creates a server over the given configuration
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{api: cfg.API, logger: logger}
}

// Routes builds the router
// Preconditions: The server has an API
// Postconditions: Returns the handler serving every route of the HTTP API
func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(s.requestLogger)
	router.Use(chiMiddleware.Recoverer)

	router.Get("/healthz", s.HealthHandler)
	router.Get("/profiles", s.ProfilesHandler)
	if s.api.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", s.api.Metrics.Handler())
	}

	router.Route("/imports", func(r chi.Router) {
		r.Post("/", s.ImportHandler)
		r.Post("/url", s.ImportURLHandler)
		r.Get("/{tournamentId}", s.ImportsHandler)
	})
	router.Route("/records", func(r chi.Router) {
		r.Get("/", s.RecordsHandler)
		r.Get("/{tournamentId}", s.RecordHandler)
	})
	return router
}

// requestLogger logs one line per request
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"requestId", chiMiddleware.GetReqID(r.Context()))
		}()
		next.ServeHTTP(ww, r)
	})
}
