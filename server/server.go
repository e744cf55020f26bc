// Package server exposes the rule engine over HTTP for the surrounding
// content pipeline: render, sanitized preview, and health endpoints. The
// service is stateless; the render cache inside the engine is the only shared
// component.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"

	"github.com/jhd3197/linkweaver/config"
	"github.com/jhd3197/linkweaver/engine"
	"github.com/jhd3197/linkweaver/logger"
)

// Config holds configuration for the HTTP server.
type Config struct {
	// RateLimit is the number of requests allowed per IP per window
	// (default 100).
	RateLimit int
	// RateLimitWindow is the rate limiting window (default 1 minute).
	RateLimitWindow time.Duration
	// AccessLog receives request logs. Defaults to a JSON slog on stderr.
	AccessLog *slog.Logger
	// RedisClient enables distributed rate limiting; nil keeps counters in
	// memory.
	RedisClient *redis.Client
	// DefaultSettings serve requests that omit a settings snapshot. Nil
	// falls back to config.Default().
	DefaultSettings *config.Settings
}

// Server is the HTTP front end for the engine.
type Server struct {
	engine   *engine.Engine
	log      logger.Logger
	router   *chi.Mux
	preview  *bluemonday.Policy
	settings config.Settings
}

// New creates a server with the chi middleware stack: request IDs, real IP,
// httplog request logging, panic recovery, and per-IP rate limiting.
func New(eng *engine.Engine, log logger.Logger, cfg *Config) *Server {
	if log == nil {
		log = logger.Noop()
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 100
	}
	if cfg.RateLimitWindow == 0 {
		cfg.RateLimitWindow = time.Minute
	}
	accessLog := cfg.AccessLog
	if accessLog == nil {
		accessLog = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}

	defaults := config.Default()
	if cfg.DefaultSettings != nil {
		defaults = *cfg.DefaultSettings
	}

	s := &Server{
		engine:   eng,
		log:      log,
		preview:  bluemonday.UGCPolicy(),
		settings: defaults,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httplog.RequestLogger(accessLog, &httplog.Options{
		Level:         slog.LevelInfo,
		RecoverPanics: true,
	}))
	r.Use(RateLimit(RateLimitConfig{
		RequestLimit:   cfg.RateLimit,
		WindowDuration: cfg.RateLimitWindow,
		RedisClient:    cfg.RedisClient,
	}))

	r.Post("/v1/render", s.handleRender)
	r.Post("/v1/preview", s.handlePreview)
	r.Get("/health", s.handleHealth)

	s.router = r
	return s
}

// Router returns the underlying handler for mounting or serving.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves on addr until the context is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.log.Info("server started", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
