package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Queue and history backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Email providers.
const (
	EmailNone     = "none"
	EmailSendGrid = "sendgrid"
	EmailSES      = "ses"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	FormVersion string
	FormsDir    string

	PrimaryWebhookURL  string
	FallbackWebhookURL string
	WebhookTimeout     time.Duration

	QueueBackend         string
	QueueSQLitePath      string
	QueueMonitorSchedule string
	HistoryBackend       string
	HistoryLimit         int

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	AdminJWTSecret     string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	AWSRegion            string
	AWSAccessKeyID       string
	AWSSecretAccessKey   string
	AWSEndpointOverride  string
	UploadsBucket        string
	UploadsPublicBaseURL string

	EmailProvider    string
	SendGridAPIKey   string
	EmailFromAddress string
	EmailFromName    string
	LeadNotifyEmails []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		FormVersion: getEnv("FORM_VERSION", "2.0"),
		FormsDir:    getEnv("FORMS_DIR", ""),

		PrimaryWebhookURL:  getEnv("PRIMARY_WEBHOOK_URL", ""),
		FallbackWebhookURL: getEnv("FALLBACK_WEBHOOK_URL", ""),
		WebhookTimeout:     getEnvAsDuration("WEBHOOK_TIMEOUT", 0),

		QueueBackend:         strings.ToLower(getEnv("QUEUE_BACKEND", BackendSQLite)),
		QueueSQLitePath:      getEnv("QUEUE_SQLITE_PATH", "data/lead_queue.db"),
		QueueMonitorSchedule: getEnv("QUEUE_MONITOR_SCHEDULE", "@every 1m"),
		HistoryBackend:       strings.ToLower(getEnv("HISTORY_BACKEND", BackendMemory)),
		HistoryLimit:         getEnvAsInt("HISTORY_LIMIT", 10),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 5),

		AWSRegion:            getEnv("AWS_REGION", "us-west-2"),
		AWSAccessKeyID:       getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride:  getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		UploadsBucket:        getEnv("UPLOADS_BUCKET", ""),
		UploadsPublicBaseURL: getEnv("UPLOADS_PUBLIC_BASE_URL", ""),

		EmailProvider:    strings.ToLower(getEnv("EMAIL_PROVIDER", EmailNone)),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", ""),
		LeadNotifyEmails: getEnvAsList("LEAD_NOTIFY_EMAIL", nil),
	}
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.QueueBackend {
	case BackendMemory, BackendSQLite, BackendRedis:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: QUEUE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("config: unknown QUEUE_BACKEND %q", c.QueueBackend)
	}
	switch c.HistoryBackend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("config: unknown HISTORY_BACKEND %q", c.HistoryBackend)
	}
	switch c.EmailProvider {
	case EmailNone, EmailSES:
	case EmailSendGrid:
		if c.SendGridAPIKey == "" {
			return fmt.Errorf("config: EMAIL_PROVIDER=sendgrid requires SENDGRID_API_KEY")
		}
	default:
		return fmt.Errorf("config: unknown EMAIL_PROVIDER %q", c.EmailProvider)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("config: HISTORY_LIMIT must be positive")
	}
	if c.Env == "production" && c.AdminJWTSecret == "" {
		return fmt.Errorf("config: ADMIN_JWT_SECRET is required in production")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
