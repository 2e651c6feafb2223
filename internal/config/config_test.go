package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" || !cfg.IsDevelopment() {
		t.Fatalf("expected default env development, got %s", cfg.Env)
	}
	if cfg.OpenAIAPIKey != "" {
		t.Fatalf("expected no openai key by default")
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("expected default model gpt-4o-mini, got %s", cfg.OpenAIModel)
	}
	if cfg.ClassifierTimeout != 4*time.Second {
		t.Fatalf("expected default classifier timeout, got %s", cfg.ClassifierTimeout)
	}
	if cfg.DefaultArea != "Houston" {
		t.Fatalf("expected default area Houston, got %s", cfg.DefaultArea)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no cors origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PUBLIC_BASE_URL", "https://htxdentalimplants.com/")
	t.Setenv("CLASSIFIER_TIMEOUT", "1500ms")
	t.Setenv("CHAT_TEMPERATURE", "0.2")
	t.Setenv("RATE_LIMIT_BURST", "3")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg := Load()
	if cfg.Port != "9090" || cfg.Env != "production" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("production must not report development")
	}
	if cfg.PublicBaseURL != "https://htxdentalimplants.com" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.PublicBaseURL)
	}
	if cfg.ClassifierTimeout != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s, got %s", cfg.ClassifierTimeout)
	}
	if cfg.ChatTemperature != float32(0.2) {
		t.Fatalf("expected 0.2, got %v", cfg.ChatTemperature)
	}
	if cfg.RateLimitBurst != 3 || !cfg.RedisTLS {
		t.Fatalf("unexpected burst/tls: %d %v", cfg.RateLimitBurst, cfg.RedisTLS)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors list: %v", cfg.CORSAllowedOrigins)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SINK_TIMEOUT", "soon")
	t.Setenv("CHAT_MAX_TOKENS", "lots")
	cfg := Load()
	if cfg.SinkTimeout != 10*time.Second {
		t.Fatalf("expected default sink timeout, got %s", cfg.SinkTimeout)
	}
	if cfg.ChatMaxTokens != 200 {
		t.Fatalf("expected default max tokens, got %d", cfg.ChatMaxTokens)
	}
}
