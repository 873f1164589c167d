package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Config holds all application configuration
type Config struct {
	// Server settings
	ServerPort    int    `env:"SERVER_PORT" envDefault:"3002"`
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0"`
	Environment   string `env:"ENV" envDefault:"local"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	// Database settings
	Database DatabaseConfig

	// Redis (L1 cache) settings
	Redis RedisConfig

	// Auth collaborator settings
	Auth AuthConfig

	// Embeddings configuration
	Embeddings EmbeddingsConfig

	// LLM configuration (tier-3 query parsing)
	LLM LLMConfig

	// Search engine tunables
	Search SearchConfig

	// Server timeouts
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// IsProduction returns true when running in the prod environment
func (c *Config) IsProduction() bool {
	return c.Environment == "prod"
}

// IsLocal returns true for local or dev environments, where the quota gate
// is bypassed.
func (c *Config) IsLocal() bool {
	return c.Environment == "local" || c.Environment == "dev"
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port         int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User         string        `env:"POSTGRES_USER" envDefault:"stagedoor"`
	Password     string        `env:"POSTGRES_PASSWORD" envDefault:""`
	Database     string        `env:"POSTGRES_DB" envDefault:"stagedoor"`
	SSLMode      string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxIdleTime  time.Duration `env:"DB_MAX_IDLE_TIME" envDefault:"5m"`
	QueryDebug   bool          `env:"DB_QUERY_DEBUG" envDefault:"false"`
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// RedisConfig holds Redis (L1 cache) settings
type RedisConfig struct {
	// Enabled toggles the L1 layer; when false the cache hierarchy degrades
	// to the in-process L0 maps only.
	Enabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// AuthConfig holds settings for the external authentication collaborator
type AuthConfig struct {
	// IntrospectURL is the token introspection endpoint of the auth service
	IntrospectURL string `env:"AUTH_INTROSPECT_URL" envDefault:""`

	// Timeout for introspection calls
	Timeout time.Duration `env:"AUTH_TIMEOUT" envDefault:"3s"`

	// DebugToken bypasses introspection in non-prod environments
	DebugToken string `env:"AUTH_DEBUG_TOKEN" envDefault:""`

	// SuperuserEmails always pass the quota gate
	SuperuserEmails []string `env:"SUPERUSER_EMAILS" envSeparator:","`
}

// EmbeddingsConfig holds embedding service configuration
type EmbeddingsConfig struct {
	// Google API Key for the Gemini embeddings API
	GoogleAPIKey string `env:"GOOGLE_API_KEY" envDefault:""`

	// Embedding model name
	Model string `env:"EMBEDDING_MODEL" envDefault:"gemini-embedding-001"`

	// Dimension of generated and stored vectors. The dense retriever refuses
	// rows whose stored dimension differs.
	Dimension int `env:"EMBEDDING_DIMS" envDefault:"3072"`

	// Disable embeddings network calls (for testing)
	NetworkDisabled bool `env:"EMBEDDINGS_NETWORK_DISABLED" envDefault:"false"`
}

// IsEnabled returns true if embeddings are configured
func (e *EmbeddingsConfig) IsEnabled() bool {
	if e.NetworkDisabled {
		return false
	}
	return e.GoogleAPIKey != ""
}

// LLMConfig holds LLM configuration for tier-3 query parsing
type LLMConfig struct {
	GoogleAPIKey string `env:"GOOGLE_API_KEY" envDefault:""`

	Model string `env:"LLM_MODEL" envDefault:"gemini-3-flash-preview"`

	// Temperature stays at or below 0.1 so identical queries produce
	// identical, cacheable parses
	Temperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.1"`

	Timeout time.Duration `env:"LLM_TIMEOUT" envDefault:"10s"`

	NetworkDisabled bool `env:"LLM_NETWORK_DISABLED" envDefault:"false"`
}

// IsEnabled returns true if the LLM parser is configured
func (l *LLMConfig) IsEnabled() bool {
	if l.NetworkDisabled {
		return false
	}
	return l.GoogleAPIKey != ""
}

// SearchConfig holds search engine tunables
type SearchConfig struct {
	DefaultPageSize    int     `env:"DEFAULT_PAGE_SIZE" envDefault:"20"`
	MaxPageSize        int     `env:"MAX_PAGE_SIZE" envDefault:"100"`
	MaxCandidates      int     `env:"MAX_CANDIDATES" envDefault:"500"`
	BestMatchThreshold float64 `env:"BEST_MATCH_THRESHOLD" envDefault:"0.90"`

	// RequestDeadlineMS is the per-search deadline in milliseconds
	RequestDeadlineMS int `env:"REQUEST_DEADLINE_MS" envDefault:"5000"`

	// DemoRateLimitWindowSec is the unauthenticated per-IP throttle window
	// in seconds
	DemoRateLimitWindowSec int `env:"DEMO_RATE_LIMIT_WINDOW_SEC" envDefault:"300"`

	// WarmQueries are embedded into the cache on a schedule so common
	// searches never pay the embedding API cost.
	WarmQueries []string `env:"WARM_QUERIES" envSeparator:"|"`

	// WarmSchedule is a cron expression for the cache warming job.
	// Empty disables warming.
	WarmSchedule string `env:"WARM_SCHEDULE" envDefault:"0 4 * * *"`
}

// RequestDeadline returns the per-search deadline as a duration
func (s *SearchConfig) RequestDeadline() time.Duration {
	return time.Duration(s.RequestDeadlineMS) * time.Millisecond
}

// DemoRateLimitWindow returns the demo throttle window as a duration
func (s *SearchConfig) DemoRateLimitWindow() time.Duration {
	return time.Duration(s.DemoRateLimitWindowSec) * time.Second
}

// NewConfig loads configuration from environment variables
func NewConfig(log *slog.Logger) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	log.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.ServerPort),
		slog.String("db_host", cfg.Database.Host),
		slog.Bool("redis_enabled", cfg.Redis.Enabled),
		slog.Int("embedding_dims", cfg.Embeddings.Dimension),
	)

	return cfg, nil
}
