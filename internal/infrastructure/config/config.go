package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	Pipe      PipeConfig
	Types     TypeConfig
	RateLimit RateLimitConfig
	Version   string `envconfig:"PIPECORE_VERSION" default:"0.3.0"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	// Compression gzips large responses for clients that accept it
	Compression bool `envconfig:"HTTP_COMPRESSION" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// PipeConfig holds pipe buffer configuration.
type PipeConfig struct {
	Capacity int `envconfig:"PIPE_CAPACITY" default:"65536"`
}

// TypeConfig holds type-expression validation settings.
type TypeConfig struct {
	// CatalogGlob selects YAML/TOML catalog files; empty means scalars only.
	CatalogGlob string `envconfig:"TYPE_CATALOG" default:""`
	CacheSize   uint64 `envconfig:"TYPE_CACHE_SIZE" default:"1024"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects values the runtime cannot work with.
func (c *Config) Validate() error {
	if c.Pipe.Capacity <= 0 {
		return fmt.Errorf("invalid config: PIPE_CAPACITY must be positive, got %d", c.Pipe.Capacity)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("invalid config: rate limit needs positive RATE_LIMIT_RPS and RATE_LIMIT_BURST")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			Compression: true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Pipe: PipeConfig{
			Capacity: 64 * 1024,
		},
		Types: TypeConfig{
			CacheSize: 1024,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Version: "0.3.0",
	}
}
