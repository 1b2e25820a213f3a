package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/lingko/shadow_service/internal/config"
	httphandler "github.com/lingko/shadow_service/internal/handler/http"
	"github.com/lingko/shadow_service/internal/middleware"
	"github.com/lingko/shadow_service/internal/service"
)

// HTTPServer represents the HTTP server.
type HTTPServer struct {
	server *http.Server
	log    zerolog.Logger
}

// NewHTTPServer creates a new HTTP server.
func NewHTTPServer(
	cfg *config.Config,
	log zerolog.Logger,
	healthHandler *httphandler.HealthHandler,
	authHandler *httphandler.AuthHandler,
	lessonHandler *httphandler.LessonHandler,
	practiceHandler *httphandler.PracticeHandler,
	authService *service.AuthService,
) *HTTPServer {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(chimiddleware.Compress(5))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   cfg.CORSAllowedMethods,
		AllowedHeaders:   cfg.CORSAllowedHeaders,
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (public)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected endpoints (require JWT)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authService))

			// Lesson endpoints
			r.Post("/lessons", lessonHandler.Create)
			r.Get("/lessons", lessonHandler.List)
			r.Get("/lessons/{lessonID}", lessonHandler.Get)
			r.Delete("/lessons/{lessonID}", lessonHandler.Delete)

			// Transcription async endpoints (2-step pattern)
			r.Post("/lessons/{lessonID}/transcribe", lessonHandler.Transcribe)
			r.Get("/lessons/{lessonID}/transcript", lessonHandler.TranscriptResult)

			// Practice scoring endpoints
			r.Post("/lessons/{lessonID}/segments/{index}/attempts", practiceHandler.ScoreAttempt)
			r.Get("/lessons/{lessonID}/attempts", practiceHandler.ListAttempts)
		})
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &HTTPServer{
		server: server,
		log:    log,
	}
}

// Start starts the HTTP server.
func (s *HTTPServer) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
