package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"NiftySignal/internal/chatbot"
	"NiftySignal/internal/metrics"
	"NiftySignal/internal/model"
)

// Service is what the HTTP layer needs from the analysis service.
type Service interface {
	Analyze(ctx context.Context, ticker, appetite string, custom *model.CustomRisk) (*model.Analysis, error)
	Snapshot(ctx context.Context) (*model.Snapshot, error)
	Refresh(ctx context.Context) (*model.Snapshot, error)
	Movers(ctx context.Context, n int) (*model.Movers, error)
	Sentiment(ctx context.Context) (*model.Sentiment, error)
}

// Chatter answers chat messages. *chatbot.Bot implements it.
type Chatter interface {
	Reply(ctx context.Context, message string) chatbot.Reply
}

// Options configures the HTTP server.
type Options struct {
	Addr    string
	Version string
}

// Server manages the HTTP server and routes.
type Server struct {
	svc      Service
	bot      Chatter
	metrics  *metrics.Metrics
	validate *validator.Validate
	version  string
	now      func() time.Time

	router *http.ServeMux
	server *http.Server
}

// New creates a new HTTP server.
func New(opts Options, svc Service, bot Chatter, m *metrics.Metrics) *Server {
	s := &Server{
		svc:      svc,
		bot:      bot,
		metrics:  m,
		validate: validator.New(),
		version:  opts.Version,
		now:      time.Now,
	}

	s.router = s.setupRoutes()

	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // a cold snapshot analyses the whole watchlist
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Info().Str("address", s.server.Addr).Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info().Msg("HTTP server stopped")
	return nil
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
