// Package config provides configuration management for the research
// discovery service.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the research discovery service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Pipeline contains discovery pipeline settings.
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	// Sources contains upstream API configurations.
	Sources SourcesConfig `mapstructure:"sources"`
	// Ranking contains journal ranking table settings.
	Ranking RankingConfig `mapstructure:"ranking"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing the response.
	// Searches fan out to upstream APIs, so this stays generous.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for the metrics endpoint.
	Path string `mapstructure:"path"`
	// Namespace prefixes all metric names.
	Namespace string `mapstructure:"namespace"`
}

// PipelineConfig holds discovery pipeline settings.
type PipelineConfig struct {
	// KeywordConcurrency is the maximum number of keyword searches running
	// at once.
	KeywordConcurrency int `mapstructure:"keyword_concurrency"`
	// EnrichConcurrency is the maximum number of in-flight metadata
	// lookups across the process.
	EnrichConcurrency int `mapstructure:"enrich_concurrency"`
	// Pages is the default per-keyword result-page budget.
	Pages int `mapstructure:"pages"`
}

// SourcesConfig holds configuration for the upstream APIs.
type SourcesConfig struct {
	// MinRequestSpacing is the minimum interval between consecutive
	// requests to the same upstream host.
	MinRequestSpacing time.Duration `mapstructure:"min_request_spacing"`
	// MaxAttempts is the attempt budget per upstream call.
	MaxAttempts int `mapstructure:"max_attempts"`
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	// BackoffFactor multiplies the delay after each retry.
	BackoffFactor float64 `mapstructure:"backoff_factor"`
	// OpenAlex contains discovery source settings.
	OpenAlex SourceConfig `mapstructure:"openalex"`
	// Crossref contains metadata source settings.
	Crossref SourceConfig `mapstructure:"crossref"`
}

// SourceConfig holds configuration for a single upstream API.
type SourceConfig struct {
	// BaseURL is the API base URL.
	BaseURL string `mapstructure:"base_url"`
	// Email identifies this service to the upstream for polite-pool
	// treatment.
	Email string `mapstructure:"email"`
	// Timeout is the per-request timeout for API calls.
	Timeout time.Duration `mapstructure:"timeout"`
	// PerPage is the page size for paginated endpoints.
	PerPage int `mapstructure:"per_page"`
}

// RankingConfig holds journal ranking table settings.
type RankingConfig struct {
	// Path is the ranking table JSON file. A missing or unreadable file
	// downgrades to an empty table at startup rather than failing.
	Path string `mapstructure:"path"`
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("RESEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/research-discovery-service")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "research_discovery")

	// Pipeline defaults
	v.SetDefault("pipeline.keyword_concurrency", 5)
	v.SetDefault("pipeline.enrich_concurrency", 5)
	v.SetDefault("pipeline.pages", 4)

	// Upstream source defaults
	v.SetDefault("sources.min_request_spacing", "300ms")
	v.SetDefault("sources.max_attempts", 5)
	v.SetDefault("sources.initial_backoff", "2s")
	v.SetDefault("sources.backoff_factor", 1.5)
	v.SetDefault("sources.openalex.base_url", "https://api.openalex.org")
	v.SetDefault("sources.openalex.email", "research@example.org")
	v.SetDefault("sources.openalex.timeout", "30s")
	v.SetDefault("sources.openalex.per_page", 200)
	v.SetDefault("sources.crossref.base_url", "https://api.crossref.org")
	v.SetDefault("sources.crossref.email", "research@example.org")
	v.SetDefault("sources.crossref.timeout", "15s")

	// Ranking defaults
	v.SetDefault("ranking.path", "data/scimagojr_rankings.json")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Pipeline.KeywordConcurrency <= 0 {
		return fmt.Errorf("pipeline keyword_concurrency must be positive")
	}
	if c.Pipeline.EnrichConcurrency <= 0 {
		return fmt.Errorf("pipeline enrich_concurrency must be positive")
	}
	if c.Pipeline.Pages <= 0 {
		return fmt.Errorf("pipeline pages must be positive")
	}

	if c.Sources.MinRequestSpacing < 0 {
		return fmt.Errorf("sources min_request_spacing must not be negative")
	}
	if c.Sources.MaxAttempts <= 0 {
		return fmt.Errorf("sources max_attempts must be positive")
	}
	if c.Sources.BackoffFactor < 1 {
		return fmt.Errorf("sources backoff_factor must be at least 1")
	}
	if c.Sources.OpenAlex.BaseURL == "" {
		return fmt.Errorf("sources openalex base_url is required")
	}
	if c.Sources.Crossref.BaseURL == "" {
		return fmt.Errorf("sources crossref base_url is required")
	}

	return nil
}
