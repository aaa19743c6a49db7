package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/felixgeelhaar/studyload/internal/workload/application/services"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string
	TokenKey  string
	TokenTTL  time.Duration
	UserEmail string

	// Database
	DatabaseURL      string
	SQLitePath       string
	DatabaseMaxConns int

	// Redis
	RedisURL          string
	DashboardCacheTTL time.Duration

	// RabbitMQ
	RabbitMQURL string

	// Outbox
	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxStatsInterval    time.Duration
	OutboxRetentionDays    int
	OutboxCleanupInterval  time.Duration
	OutboxProcessorEnabled bool

	// HTTP
	APIAddr          string
	WorkerHealthAddr string

	// MCP
	MCPAddr      string
	MCPAuthToken string
	MCPUserEmail string

	// Narrative
	NarrativeProvider         string
	NarrativeEndpoint         string
	NarrativeModel            string
	NarrativeTimeout          time.Duration
	NarrativeMaxRetries       int
	NarrativeRateInterval     time.Duration
	NarrativeBreakerFailures  int
	NarrativeBreakerOpenAfter time.Duration

	// Scoring
	ScoringMaxDailyHours float64
	ScoringRiskLowMax    int
	ScoringRiskMediumMax int
}

// Narrative providers.
const (
	NarrativeProviderOllama   = "ollama"
	NarrativeProviderTemplate = "template"
)

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),
		TokenKey:  getEnv("STUDYLOAD_TOKEN_KEY", ""),
		TokenTTL:  getDurationEnv("STUDYLOAD_TOKEN_TTL", 7*24*time.Hour),
		UserEmail: getEnv("STUDYLOAD_USER_EMAIL", ""),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		SQLitePath:       getEnv("STUDYLOAD_SQLITE_PATH", defaultSQLitePath()),
		DatabaseMaxConns: getIntEnv("DATABASE_MAX_CONNS", 10),

		RedisURL:          getEnv("REDIS_URL", ""),
		DashboardCacheTTL: getDurationEnv("DASHBOARD_CACHE_TTL", 5*time.Minute),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		OutboxPollInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", 100*time.Millisecond),
		OutboxBatchSize:        getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:       getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxStatsInterval:    getDurationEnv("OUTBOX_STATS_INTERVAL", 30*time.Second),
		OutboxRetentionDays:    getIntEnv("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval:  getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),
		OutboxProcessorEnabled: getBoolEnv("OUTBOX_PROCESSOR_ENABLED", true),

		APIAddr:          getEnv("API_ADDR", "0.0.0.0:8080"),
		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),

		MCPAddr:      getEnv("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
		MCPUserEmail: getEnv("MCP_USER_EMAIL", ""),

		NarrativeProvider:         strings.ToLower(getEnv("NARRATIVE_PROVIDER", NarrativeProviderTemplate)),
		NarrativeEndpoint:         getEnv("NARRATIVE_ENDPOINT", "http://localhost:11434"),
		NarrativeModel:            getEnv("NARRATIVE_MODEL", "llama3.2"),
		NarrativeTimeout:          getDurationEnv("NARRATIVE_TIMEOUT", 10*time.Second),
		NarrativeMaxRetries:       getIntEnv("NARRATIVE_MAX_RETRIES", 2),
		NarrativeRateInterval:     getDurationEnv("NARRATIVE_RATE_INTERVAL", 200*time.Millisecond),
		NarrativeBreakerFailures:  getIntEnv("NARRATIVE_BREAKER_FAILURES", 5),
		NarrativeBreakerOpenAfter: getDurationEnv("NARRATIVE_BREAKER_OPEN_TIMEOUT", 30*time.Second),

		ScoringMaxDailyHours: getFloatEnv("SCORING_MAX_DAILY_HOURS", 12),
		ScoringRiskLowMax:    getIntEnv("SCORING_RISK_LOW_MAX", 35),
		ScoringRiskMediumMax: getIntEnv("SCORING_RISK_MEDIUM_MAX", 65),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.NarrativeProvider {
	case NarrativeProviderOllama, NarrativeProviderTemplate:
	default:
		return fmt.Errorf("config: unknown NARRATIVE_PROVIDER %q", c.NarrativeProvider)
	}
	if c.ScoringMaxDailyHours <= 0 {
		return fmt.Errorf("config: SCORING_MAX_DAILY_HOURS must be positive")
	}
	if c.ScoringRiskLowMax >= c.ScoringRiskMediumMax {
		return fmt.Errorf("config: SCORING_RISK_LOW_MAX must be below SCORING_RISK_MEDIUM_MAX")
	}
	if c.IsProduction() && c.TokenKey == "" {
		return fmt.Errorf("config: STUDYLOAD_TOKEN_KEY is required in production")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LocalMode reports whether the embedded SQLite store is used.
func (c *Config) LocalMode() bool {
	return c.DatabaseURL == "" || strings.HasSuffix(c.DatabaseURL, ".db")
}

// ScoringConfig maps the scoring thresholds onto the engine configs.
func (c *Config) ScoringConfig() services.ScoringConfig {
	scoring := services.DefaultScoringConfig()
	scoring.Stress.MaxDailyHours = c.ScoringMaxDailyHours
	scoring.Stress.RiskLowMax = c.ScoringRiskLowMax
	scoring.Stress.RiskMediumMax = c.ScoringRiskMediumMax
	return scoring
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

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".studyload/studyload.db"
	}
	return home + "/.studyload/studyload.db"
}
