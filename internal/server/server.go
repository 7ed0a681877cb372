package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/RyanBlaney/sonido-scribe/logging"
	"github.com/RyanBlaney/sonido-scribe/transcription"
)

const defaultMaxUploadSize = 100 * 1024 * 1024 // 100MB

// Config holds server configuration
type Config struct {
	Port          int
	MaxUploadSize int64
	Transcriber   *transcription.TranscriberConfig
}

// Server is the HTTP transcription server
type Server struct {
	config      Config
	router      *chi.Mux
	transcriber *transcription.Transcriber
	logger      logging.Logger
}

// New creates a new server
func New(cfg Config) *Server {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = defaultMaxUploadSize
	}

	s := &Server{
		config:      cfg,
		router:      chi.NewRouter(),
		transcriber: transcription.NewTranscriber(cfg.Transcriber),
		logger: logging.WithFields(logging.Fields{
			"component": "server",
		}),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestFields)

	r.Get("/health", s.handleHealth)

	// API
	r.Post("/api/transcriptions", s.handleTranscription)
}

// requestFields stores per-request logging fields on the context so every
// handler's logger carries the request ID and path.
func (s *Server) requestFields(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.ContextWithFields(r.Context(), logging.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"path":       r.URL.Path,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Handler returns the server's HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the server and blocks until shutdown
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		s.logger.Info("Shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error(err, "Server shutdown failed")
		}
		close(done)
	}()

	s.logger.Info("Server starting", logging.Fields{
		"port": s.config.Port,
	})

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	<-done
	return nil
}
