// Package server exposes chat sessions over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"recipechat/internal/chat"
	"recipechat/internal/config"
)

// Server is the HTTP chat transport.
type Server struct {
	app      *chat.App
	config   *config.ServerConfig
	logger   *zap.Logger
	server   *http.Server
	mu       sync.RWMutex
	sessions map[string]*chat.Handler
}

// NewServer creates a server with the given dependencies.
func NewServer(app *chat.App, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		app:      app,
		config:   cfg,
		logger:   logger,
		sessions: make(map[string]*chat.Handler),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	// generation can take minutes on a cold model
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Post("/api/v1/sessions", s.handleStartSession)
	r.Post("/api/v1/sessions/{id}/messages", s.handleMessage)
	r.Post("/api/v1/sessions/{id}/audio", s.handleAudioChunk)
	r.Delete("/api/v1/sessions/{id}", s.handleEndSession)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) session(id string) (*chat.Handler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.sessions[id]
	return h, ok
}
