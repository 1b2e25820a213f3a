package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_ENV", "development")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogFormat != "console" {
		t.Errorf("development LogFormat = %q, want console", cfg.LogFormat)
	}
	if cfg.TranscribeTimeout != 120*time.Second {
		t.Errorf("TranscribeTimeout = %v, want 120s", cfg.TranscribeTimeout)
	}
	if got := cfg.HTTPAddress(); got != "0.0.0.0:8080" {
		t.Errorf("HTTPAddress() = %q, want 0.0.0.0:8080", got)
	}
}

func TestLoad_ProductionRequiresJWTSecret(t *testing.T) {
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load in production without JWT_SECRET should fail")
	}

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("production LogFormat = %q, want json", cfg.LogFormat)
	}
	if !cfg.IsProduction() || cfg.IsDevelopment() {
		t.Error("environment predicates disagree with SERVER_ENV=production")
	}
}

func TestLoad_ExplicitLogFormatWins(t *testing.T) {
	t.Setenv("SERVER_ENV", "development")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want explicit json kept", cfg.LogFormat)
	}
}
