// Package server exposes the tool dispatcher over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/darkclone9/portfolio-server/internal/analytics"
	"github.com/darkclone9/portfolio-server/internal/apperr"
	"github.com/darkclone9/portfolio-server/internal/config"
	"github.com/darkclone9/portfolio-server/internal/portfolio"
	"github.com/darkclone9/portfolio-server/internal/ratelimit"
	"github.com/darkclone9/portfolio-server/internal/tools"
)

const (
	// maxBodyBytes caps tool-call request bodies.
	maxBodyBytes = 1 << 20

	shutdownTimeout = 10 * time.Second
)

// Service is the HTTP facade over the tool registry.
type Service struct {
	cfg        *config.Config
	registry   *tools.Registry
	limiter    *ratelimit.Limiter
	tracker    *analytics.Tracker
	store      *portfolio.Store
	router     chi.Router
	httpServer *http.Server
	stopWatch  chan struct{}
	group      *errgroup.Group
	startTime  time.Time
	version    string
}

// NewService wires the dispatcher, limiter, tracker, and dataset store
// behind an HTTP router.
func NewService(cfg *config.Config, version string) (*Service, error) {
	ds, err := loadDataset(cfg)
	if err != nil {
		return nil, err
	}
	store := portfolio.NewStore(ds)
	tracker := analytics.NewTracker(cfg.AnalyticsCapacity)
	limiter := ratelimit.New(cfg.RateLimitWindow, cfg.RateLimitRequests)
	registry := tools.NewRegistry(limiter, cfg.ToolTimeout)

	if err := tools.RegisterPortfolioTools(registry, store, tracker); err != nil {
		limiter.Close()
		return nil, err
	}

	s := &Service{
		cfg:       cfg,
		registry:  registry,
		limiter:   limiter,
		tracker:   tracker,
		store:     store,
		router:    chi.NewRouter(),
		stopWatch: make(chan struct{}),
		startTime: time.Now(),
		version:   version,
	}
	s.setupRoutes()
	return s, nil
}

func loadDataset(cfg *config.Config) (*portfolio.Dataset, error) {
	if cfg.DataPath == "" {
		return portfolio.LoadDefault()
	}
	return portfolio.LoadFile(cfg.DataPath)
}

// Registry exposes the underlying dispatcher, for sharing with the stdio
// transport.
func (s *Service) Registry() *tools.Registry {
	return s.registry
}

func (s *Service) setupRoutes() {
	s.router.Use(RequestID)
	s.router.Use(SecurityHeaders)
	s.router.Use(RequestLogger)
	s.router.Use(MaxBodySize(maxBodyBytes))

	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/tools", s.handleListTools)
	s.router.Post("/api/tools/call", s.handleToolCall)
	s.router.Get("/api/stats", s.handleStats)
}

// Start launches the HTTP listener and, when a dataset file is configured,
// the reload watcher.
func (s *Service) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.ServerPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.group = &errgroup.Group{}
	s.group.Go(func() error {
		log.Info().Int("port", s.cfg.ServerPort).Msg("HTTP server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if s.cfg.DataPath != "" {
		s.group.Go(func() error {
			return portfolio.Watch(s.store, s.cfg.DataPath, s.stopWatch)
		})
	}

	return nil
}

// Shutdown stops the listener, the watcher, and the limiter sweep.
func (s *Service) Shutdown(ctx context.Context) error {
	close(s.stopWatch)
	s.limiter.Close()

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	if s.group != nil {
		return s.group.Wait()
	}
	return nil
}

// Router returns the HTTP handler, for tests.
func (s *Service) Router() http.Handler {
	return s.router
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Service) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.registry.List()})
}

// toolCallRequest is the HTTP call shape: an operation name plus arguments.
type toolCallRequest struct {
	Arguments map[string]any `json:"arguments"`
	Operation string         `json:"operation"`
}

func (s *Service) handleToolCall(w http.ResponseWriter, r *http.Request) {
	var req toolCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Operation == "" {
		writeError(w, http.StatusBadRequest, "operation is required")
		return
	}

	caller := tools.CallerInfo{
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	}

	envelope := s.registry.Dispatch(r.Context(), req.Operation, req.Arguments, caller)
	status := http.StatusOK
	if !envelope.Success {
		status = apperr.StatusFor(envelope.ErrorCode)
	}
	writeJSON(w, status, envelope)
}

func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"rate_limiter": s.limiter.Stats(),
		"analytics":    s.tracker.Snapshot(),
	})
}
