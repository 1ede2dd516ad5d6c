package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// Source kinds for CATALOG_SOURCE.
const (
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"APP_ENV"` specify the environment variable name.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"` // debug, info, warn, error
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	Source     string `envconfig:"CATALOG_SOURCE" default:"http"`
	Upstream   UpstreamConfig
	Postgres   PostgresConfig
	Notify     NotifyConfig
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
}

// GrpcServerConfig holds gRPC server-specific configurations.
type GrpcServerConfig struct {
	Port string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
}

// UpstreamConfig points at the REST API the catalog is seeded from.
type UpstreamConfig struct {
	BaseURL             string        `envconfig:"UPSTREAM_BASE_URL" default:"https://fakestoreapi.com"`
	Timeout             time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"10s"`
	BreakerMinRequests  uint32        `envconfig:"UPSTREAM_BREAKER_MIN_REQUESTS" default:"3"`
	BreakerFailureRatio float64       `envconfig:"UPSTREAM_BREAKER_FAILURE_RATIO" default:"0.6"`
	BreakerOpenTimeout  time.Duration `envconfig:"UPSTREAM_BREAKER_OPEN_TIMEOUT" default:"30s"`
}

// PostgresConfig holds PostgreSQL connection details, used when CATALOG_SOURCE=postgres.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	DBName   string `envconfig:"POSTGRES_DBNAME"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

// NotifyConfig sizes the notification feed.
type NotifyConfig struct {
	FeedSize int `envconfig:"NOTIFY_FEED_SIZE" default:"50"`
}

// DSN constructs the Data Source Name string for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName, pc.SSLMode)
}

// Load reads the configuration from environment variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	switch c.Source {
	case SourceHTTP:
		if c.Upstream.BaseURL == "" {
			return fmt.Errorf("UPSTREAM_BASE_URL is required when CATALOG_SOURCE=%s", SourceHTTP)
		}
	case SourcePostgres:
		if c.Postgres.Host == "" || c.Postgres.User == "" || c.Postgres.DBName == "" {
			return fmt.Errorf("POSTGRES_HOST, POSTGRES_USER and POSTGRES_DBNAME are required when CATALOG_SOURCE=%s", SourcePostgres)
		}
	default:
		return fmt.Errorf("invalid CATALOG_SOURCE %q: allowed %s, %s", c.Source, SourceHTTP, SourcePostgres)
	}
	if c.Upstream.BreakerFailureRatio <= 0 || c.Upstream.BreakerFailureRatio > 1 {
		return fmt.Errorf("UPSTREAM_BREAKER_FAILURE_RATIO must be in (0, 1], got %v", c.Upstream.BreakerFailureRatio)
	}
	if c.Notify.FeedSize < 1 {
		return fmt.Errorf("NOTIFY_FEED_SIZE must be positive, got %d", c.Notify.FeedSize)
	}
	return nil
}
