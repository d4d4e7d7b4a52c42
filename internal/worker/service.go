// Package worker provides the HTTP service for lettuce: the Slack
// webhook endpoints, the dashboard read API, and the background catalog
// warmer.
package worker

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/owasp-blt/lettuce/internal/catalog"
	"github.com/owasp-blt/lettuce/internal/config"
	"github.com/owasp-blt/lettuce/internal/conversation"
	"github.com/owasp-blt/lettuce/internal/flowchart"
	"github.com/owasp-blt/lettuce/internal/slack"
	"github.com/owasp-blt/lettuce/internal/stats"
)

const shutdownTimeout = 10 * time.Second

// Service wires the flowchart pipeline to its HTTP boundary. Each
// inbound webhook request is handled as an independent request-scoped
// task; all shared state lives in the key-value store.
type Service struct {
	config        *config.Config
	graph         *flowchart.Graph
	conversations *conversation.Store
	cache         *catalog.Cache
	statsRecorder *stats.Recorder
	verifier      *slack.Verifier
	sender        slack.Sender
	router        chi.Router
}

// New assembles the service and its routes.
func New(
	cfg *config.Config,
	graph *flowchart.Graph,
	conversations *conversation.Store,
	cache *catalog.Cache,
	statsRecorder *stats.Recorder,
	verifier *slack.Verifier,
	sender slack.Sender,
) *Service {
	s := &Service{
		config:        cfg,
		graph:         graph,
		conversations: conversations,
		cache:         cache,
		statsRecorder: statsRecorder,
		verifier:      verifier,
		sender:        sender,
		router:        chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Service) setupRoutes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestLogger)

	s.router.Post("/slack/events", s.handleSlackEvents)
	s.router.Post("/slack/interactivity", s.handleSlackInteractivity)
	s.router.Get("/api/stats", s.handleGetStats)
	s.router.Get("/api/projects", s.handleGetProjects)

	// Everything else gets the dashboard, like the hosted original.
	s.router.Get("/", serveDashboard)
	s.router.NotFound(serveDashboard)
}

// Handler exposes the router, mainly for tests.
func (s *Service) Handler() http.Handler {
	return s.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.config.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown error")
		}
	}()

	log.Info().Str("addr", s.config.ListenAddr).Msg("Starting HTTP server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RunRefreshLoop periodically forces a catalog refresh so interactive
// requests rarely pay the fetch cost. It warms the cache once at start,
// then ticks at the configured interval until ctx is cancelled. A
// refresh racing an interactive one is fine; both store a valid catalog.
func (s *Service) RunRefreshLoop(ctx context.Context, interval time.Duration) {
	if err := s.cache.ForceRefresh(ctx); err != nil {
		log.Error().Err(err).Msg("Initial catalog refresh failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Info().Msg("Running scheduled catalog refresh")
			if err := s.cache.ForceRefresh(ctx); err != nil {
				log.Error().Err(err).Msg("Scheduled catalog refresh failed")
			}
		}
	}
}

// requestLogger tags each request with an id and logs its outcome.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		start := time.Now()

		logger := log.With().Str("requestId", requestID).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))

		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("Request handled")
	})
}
