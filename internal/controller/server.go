// Package controller contains the controller-specific logic for the HTTP API.
package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"shiftplane/internal/controller/handlers"
	"shiftplane/internal/controller/middleware"
)

// Server is the HTTP server for the controller API.
type Server struct {
	httpServer *http.Server
	limiter    *middleware.RateLimiter
}

// Options carries the optional parts of the server.
type Options struct {
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	// RateLimit is requests per second per client; 0 disables limiting.
	RateLimit      float64
	RateLimitBurst int
	Logger         *slog.Logger
}

// New creates a new controller server.
func New(addr string, svc handlers.Scheduler, db handlers.Pinger, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	limiter := middleware.NewRateLimiter(opts.RateLimit, opts.RateLimitBurst)
	return &Server{
		limiter: limiter,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      newHandler(svc, db, opts, limiter),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelError),
		},
	}
}

// NewHandler builds the routed, middleware-wrapped API handler.
func NewHandler(svc handlers.Scheduler, db handlers.Pinger, opts Options) http.Handler {
	return newHandler(svc, db, opts, middleware.NewRateLimiter(opts.RateLimit, opts.RateLimitBurst))
}

func newHandler(svc handlers.Scheduler, db handlers.Pinger, opts Options, rl *middleware.RateLimiter) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	h := handlers.New(svc, db, log)
	limit := rl.Middleware()

	api := http.NewServeMux()
	api.HandleFunc("POST /jobs", h.CreateJob)
	api.HandleFunc("DELETE /jobs/{id}", h.CancelJob)
	api.HandleFunc("GET /jobs/{id}/shifts", h.GetShifts)
	api.HandleFunc("DELETE /shifts/{id}", h.CancelShift)
	api.HandleFunc("PATCH /shifts/{id}/book", h.BookTalent)
	api.HandleFunc("DELETE /talents/{id}/shifts", h.CancelTalentShifts)

	mux := http.NewServeMux()
	mux.Handle("/", middleware.RequestID(log)(limit(api)))

	// Probes and metrics bypass logging and rate limiting.
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}
	return mux
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go s.limiter.RunEviction(ctx)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
