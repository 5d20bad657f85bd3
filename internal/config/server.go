package config

import (
	"fmt"
	"time"

	"github.com/rezkam/taskboard/internal/env"
)

// Runtime environments. Internal error details are only exposed outside production.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// ServerConfig holds all configuration for the server binary.
type ServerConfig struct {
	Env             string `env:"TASKBOARD_ENV" default:"development"`
	Storage         StorageConfig
	HTTP            HTTPConfig
	Export          ExportConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"TASKBOARD_SHUTDOWN_TIMEOUT" default:"10s"`
}

// HTTPConfig holds HTTP server configuration.
// Zero values fall back to the HTTP server's defaults.
type HTTPConfig struct {
	Host              string        `env:"TASKBOARD_HTTP_HOST"`
	Port              string        `env:"TASKBOARD_HTTP_PORT" default:"8081"`
	ReadTimeout       time.Duration `env:"TASKBOARD_HTTP_READ_TIMEOUT"`
	WriteTimeout      time.Duration `env:"TASKBOARD_HTTP_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `env:"TASKBOARD_HTTP_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `env:"TASKBOARD_HTTP_READ_HEADER_TIMEOUT"`
	MaxHeaderBytes    int           `env:"TASKBOARD_HTTP_MAX_HEADER_BYTES"`
	MaxBodyBytes      int64         `env:"TASKBOARD_HTTP_MAX_BODY_BYTES"`
}

// IsProduction reports whether internal error details must be hidden.
func (c *ServerConfig) IsProduction() bool {
	return c.Env == EnvProduction
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("unknown TASKBOARD_ENV %q: use 'development' or 'production'", c.Env)
	}
	return nil
}

// LoadServerConfig loads and validates server configuration from environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}
