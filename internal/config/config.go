package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Host     string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	HTTPPort int    `envconfig:"SERVER_HTTP_PORT" default:"8080"`

	Environment string `envconfig:"SERVER_ENV" default:"development"`

	// Timeouts
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// Logging. LogFormat defaults by environment: console in development,
	// json otherwise.
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT"`

	// Auth
	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"72h"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Redis
	RedisURL string `envconfig:"REDIS_URL"`

	// OpenAI (Whisper transcription)
	OpenAIAPIKey       string        `envconfig:"OPENAI_API_KEY"`
	TranscribeModel    string        `envconfig:"TRANSCRIBE_MODEL" default:"whisper-1"`
	TranscribeTimeout  time.Duration `envconfig:"TRANSCRIBE_TIMEOUT" default:"120s"`
	TranscriptWaitTime time.Duration `envconfig:"TRANSCRIPT_WAIT_TIME" default:"10s"`

	// Cloudflare R2 (media storage, S3 protocol)
	R2AccessKeyID string `envconfig:"R2_ACCESS_KEY_ID"`
	R2SecretKey   string `envconfig:"R2_SECRET_ACCESS_KEY"`
	R2Endpoint    string `envconfig:"R2_ENDPOINT"`
	R2PublicURL   string `envconfig:"R2_PUBLIC_URL"`
	R2BucketName  string `envconfig:"R2_BUCKET_NAME"`

	// Google Cloud Pub/Sub (attempt events, optional)
	GCPProjectID string `envconfig:"GCP_PROJECT_ID"`
	PubSubTopic  string `envconfig:"PUBSUB_TOPIC" default:"practice-events"`

	// Scoring limits
	MaxScoreTextLen int `envconfig:"MAX_SCORE_TEXT_LEN" default:"2000"`

	// CORS
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	CORSAllowedMethods []string `envconfig:"CORS_ALLOWED_METHODS" default:"GET,POST,PUT,DELETE,OPTIONS"`
	CORSAllowedHeaders []string `envconfig:"CORS_ALLOWED_HEADERS" default:"Accept,Authorization,Content-Type,X-Request-ID"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if cfg.LogFormat == "" {
		if cfg.IsDevelopment() {
			cfg.LogFormat = "console"
		} else {
			cfg.LogFormat = "json"
		}
	}

	// A missing secret means every token validates against ""; tolerable on a
	// laptop, not in production.
	if cfg.IsProduction() && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	return &cfg, nil
}

// HTTPAddress returns the HTTP server address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
