package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment (and a
// .env file when present).
type Config struct {
	// Application
	AppEnv   string
	LogLevel string
	Version  string

	// Database. An empty DatabaseURL selects local SQLite mode.
	DatabaseURL      string
	DatabaseDriver   string
	SQLitePath       string
	DatabaseMaxConns int

	// Redis guards payment idempotency; empty disables the fast path.
	RedisURL string

	// RabbitMQ; empty means the in-process bus.
	RabbitMQURL string

	// Outbox
	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxRetryBackoffBase time.Duration
	OutboxRetryBackoffMax  time.Duration
	OutboxStatsInterval    time.Duration
	OutboxRetentionDays    int
	OutboxCleanupInterval  time.Duration
	OutboxProcessorEnabled bool

	// Worker
	WorkerHealthAddr string

	// HTTP API
	HTTPAddr             string
	SupabaseJWTSecret    string
	PaymentWebhookSecret string

	// Notifications
	ResendAPIKey  string
	ResendFrom    string
	AdminEmail    string
	PortalBaseURL string

	// Object storage
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageRegion    string
	StorageUseTLS    bool
	StorageURLTTL    time.Duration

	// Practice
	PracticeTimezone string
	AdminUserID      string

	// MCP
	MCPAddr      string
	MCPAuthToken string
}

// Load reads the configuration from the environment and an optional .env
// in the working directory.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit env file, which must exist. Values
// already in the environment win over the file.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		_ = godotenv.Load()
	} else if err := godotenv.Load(path); err != nil {
		return nil, fmt.Errorf("load env file %s: %w", path, err)
	}

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Version:  getEnv("PATENTDESK_VERSION", "dev"),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DatabaseDriver:   getEnv("DATABASE_DRIVER", "auto"),
		SQLitePath:       getEnv("SQLITE_PATH", ""),
		DatabaseMaxConns: getIntEnv("DATABASE_MAX_CONNS", 10),

		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		OutboxPollInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", time.Second),
		OutboxBatchSize:        getIntEnv("OUTBOX_BATCH_SIZE", 50),
		OutboxMaxRetries:       getIntEnv("OUTBOX_MAX_RETRIES", 8),
		OutboxRetryBackoffBase: getDurationEnv("OUTBOX_RETRY_BACKOFF_BASE", 5*time.Second),
		OutboxRetryBackoffMax:  getDurationEnv("OUTBOX_RETRY_BACKOFF_MAX", 30*time.Minute),
		OutboxStatsInterval:    getDurationEnv("OUTBOX_STATS_INTERVAL", time.Minute),
		OutboxRetentionDays:    getIntEnv("OUTBOX_RETENTION_DAYS", 30),
		OutboxCleanupInterval:  getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),
		OutboxProcessorEnabled: getBoolEnv("OUTBOX_PROCESSOR_ENABLED", true),

		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),

		HTTPAddr:             getEnv("HTTP_ADDR", "0.0.0.0:8080"),
		SupabaseJWTSecret:    getEnv("SUPABASE_JWT_SECRET", ""),
		PaymentWebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),

		ResendAPIKey:  getEnv("RESEND_API_KEY", ""),
		ResendFrom:    getEnv("RESEND_FROM", "Patent Desk <updates@example.com>"),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		PortalBaseURL: getEnv("PORTAL_BASE_URL", "http://localhost:3000"),

		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", ""),
		StorageAccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey: getEnv("STORAGE_SECRET_KEY", ""),
		StorageBucket:    getEnv("STORAGE_BUCKET", "project-documents"),
		StorageRegion:    getEnv("STORAGE_REGION", "us-east-1"),
		StorageUseTLS:    getBoolEnv("STORAGE_USE_TLS", true),
		StorageURLTTL:    getDurationEnv("STORAGE_URL_TTL", time.Hour),

		PracticeTimezone: getEnv("PRACTICE_TIMEZONE", "America/New_York"),
		AdminUserID:      getEnv("ADMIN_USER_ID", "00000000-0000-0000-0000-000000000001"),

		MCPAddr:      getEnv("MCP_ADDR", "127.0.0.1:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether APP_ENV is development.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LocalMode is true when no hosted database is configured.
func (c *Config) LocalMode() bool {
	return c.DatabaseURL == ""
}

// Location resolves PRACTICE_TIMEZONE. "Today" is always the practice's
// calendar day.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.PracticeTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid PRACTICE_TIMEZONE %q: %w", c.PracticeTimezone, err)
	}
	return loc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
