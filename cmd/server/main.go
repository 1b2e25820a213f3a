package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lingko/shadow_service/internal/client"
	"github.com/lingko/shadow_service/internal/config"
	"github.com/lingko/shadow_service/internal/handler/http"
	"github.com/lingko/shadow_service/internal/logger"
	"github.com/lingko/shadow_service/internal/repository"
	"github.com/lingko/shadow_service/internal/server"
	"github.com/lingko/shadow_service/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info().Str("env", cfg.Environment).Msg("Starting shadow_service")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenAI client (Whisper transcription)
	var openaiClient *client.OpenAIClient
	if cfg.OpenAIAPIKey != "" {
		openaiClient = client.NewOpenAIClient(cfg.OpenAIAPIKey).WithModel(cfg.TranscribeModel)
		log.Info().Str("model", cfg.TranscribeModel).Msg("OpenAI transcription client initialized")
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set, transcription disabled")
	}

	// Initialize Redis client
	var redisClient *client.RedisClient
	if cfg.RedisURL != "" {
		var err error
		redisClient, err = client.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Redis client")
		} else {
			log.Info().Msg("Redis client initialized")
		}
	}

	// Initialize Cloudflare R2 client (using S3 protocol)
	var r2Client *client.R2Client
	if cfg.R2AccessKeyID != "" && cfg.R2SecretKey != "" && cfg.R2Endpoint != "" && cfg.R2BucketName != "" {
		var err error
		r2Client, err = client.NewR2Client(ctx,
			cfg.R2AccessKeyID,
			cfg.R2SecretKey,
			cfg.R2Endpoint,
			cfg.R2BucketName,
			cfg.R2PublicURL,
		)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize R2 client")
		} else {
			log.Info().Msg("Cloudflare R2 client initialized")
		}
	} else {
		log.Warn().Msg("R2 configuration missing, media uploads will not be stored")
	}

	// Initialize Pub/Sub event publisher (optional)
	var pubsubClient *client.PubSubClient
	if cfg.GCPProjectID != "" {
		var err error
		pubsubClient, err = client.NewPubSubClient(ctx, cfg.GCPProjectID, cfg.PubSubTopic)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Pub/Sub client")
		} else {
			log.Info().Str("topic", cfg.PubSubTopic).Msg("Pub/Sub publisher initialized")
		}
	}
	var events service.EventPublisher
	if pubsubClient != nil {
		events = pubsubClient
	}

	// Initialize Postgres client
	var postgresClient *client.PostgresClient
	if cfg.DatabaseURL != "" {
		var err error
		postgresClient, err = client.NewPostgresClient(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Postgres client")
		} else {
			log.Info().Msg("Postgres client initialized")
		}
	} else {
		log.Warn().Msg("DATABASE_URL not set, skipping Postgres initialization")
	}

	// Initialize repositories
	userRepo := repository.NewPostgresUserRepository(postgresClient)
	lessonRepo := repository.NewPostgresLessonRepository(postgresClient)
	attemptRepo := repository.NewPostgresAttemptRepository(postgresClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	lessonService := service.NewLessonService(lessonRepo)
	transcriptService := service.NewTranscriptService(openaiClient, r2Client, redisClient, lessonService, events, cfg.TranscriptWaitTime, cfg.TranscribeTimeout, log)
	practiceService := service.NewPracticeService(lessonService, attemptRepo, events, cfg.MaxScoreTextLen, log)

	// Initialize handlers
	healthHandler := http.NewHealthHandler()
	authHandler := http.NewAuthHandler(log, authService)
	lessonHandler := http.NewLessonHandler(log, lessonService, transcriptService)
	practiceHandler := http.NewPracticeHandler(log, practiceService)

	// Initialize HTTP server
	httpServer := server.NewHTTPServer(cfg, log, healthHandler, authHandler, lessonHandler, practiceHandler, authService)

	// Start server
	go func() {
		if err := httpServer.Start(); err != nil {
			log.Error().Err(err).Msg("HTTP server error")
			cancel()
		}
	}()

	log.Info().
		Str("http_addr", cfg.HTTPAddress()).
		Msg("Server started")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("Shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Close clients
	if pubsubClient != nil {
		pubsubClient.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}
	if postgresClient != nil {
		postgresClient.Close()
	}

	log.Info().Msg("Server stopped")
}
