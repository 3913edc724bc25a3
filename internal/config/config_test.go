package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "QUEUE_BACKEND", "HISTORY_LIMIT", "WEBHOOK_TIMEOUT", "CORS_ALLOWED_ORIGINS", "EMAIL_PROVIDER", "FORM_VERSION"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.FormVersion != "2.0" {
		t.Fatalf("expected default form version, got %s", cfg.FormVersion)
	}
	if cfg.QueueBackend != BackendSQLite {
		t.Fatalf("expected sqlite queue by default, got %s", cfg.QueueBackend)
	}
	if cfg.HistoryLimit != 10 {
		t.Fatalf("expected history limit 10, got %d", cfg.HistoryLimit)
	}
	if cfg.WebhookTimeout != 0 {
		t.Fatalf("expected transport default timeout, got %s", cfg.WebhookTimeout)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "staging")
	t.Setenv("PRIMARY_WEBHOOK_URL", "https://hooks.example.com/a")
	t.Setenv("FALLBACK_WEBHOOK_URL", "https://hooks.example.com/b")
	t.Setenv("WEBHOOK_TIMEOUT", "8s")
	t.Setenv("QUEUE_BACKEND", "Redis")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("LEAD_NOTIFY_EMAIL", "office@example.com,owner@example.com")
	cfg := Load()
	if cfg.Port != "9090" || cfg.Env != "staging" {
		t.Fatalf("unexpected port/env: %s %s", cfg.Port, cfg.Env)
	}
	if cfg.FallbackWebhookURL != "https://hooks.example.com/b" {
		t.Fatalf("expected fallback override, got %s", cfg.FallbackWebhookURL)
	}
	if cfg.WebhookTimeout != 8*time.Second {
		t.Fatalf("expected 8s timeout, got %s", cfg.WebhookTimeout)
	}
	if cfg.QueueBackend != BackendRedis || !cfg.RedisTLS {
		t.Fatalf("expected redis queue with TLS, got %s %v", cfg.QueueBackend, cfg.RedisTLS)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rps 2.5, got %v", cfg.RateLimitRPS)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
	if len(cfg.LeadNotifyEmails) != 2 {
		t.Fatalf("unexpected notify emails: %v", cfg.LeadNotifyEmails)
	}
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("HISTORY_LIMIT", "ten")
	t.Setenv("WEBHOOK_TIMEOUT", "soon")
	cfg := Load()
	if cfg.HistoryLimit != 10 {
		t.Fatalf("expected fallback history limit, got %d", cfg.HistoryLimit)
	}
	if cfg.WebhookTimeout != 0 {
		t.Fatalf("expected fallback timeout, got %s", cfg.WebhookTimeout)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"postgres without url", func(c *Config) { c.QueueBackend = BackendPostgres }, true},
		{"postgres with url", func(c *Config) { c.QueueBackend = BackendPostgres; c.DatabaseURL = "postgres://x" }, false},
		{"unknown queue", func(c *Config) { c.QueueBackend = "kafka" }, true},
		{"unknown history", func(c *Config) { c.HistoryBackend = "disk" }, true},
		{"sendgrid without key", func(c *Config) { c.EmailProvider = EmailSendGrid }, true},
		{"unknown email", func(c *Config) { c.EmailProvider = "smtp" }, true},
		{"zero history", func(c *Config) { c.HistoryLimit = 0 }, true},
		{"production without secret", func(c *Config) { c.Env = "production" }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				Env:            "development",
				QueueBackend:   BackendSQLite,
				HistoryBackend: BackendMemory,
				HistoryLimit:   10,
				EmailProvider:  EmailNone,
			}
			tc.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
