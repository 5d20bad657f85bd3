package config

import (
	"fmt"

	"github.com/rezkam/taskboard/internal/env"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	// PostgresDSN enables the PostgreSQL integration tests when set.
	PostgresDSN string `env:"TASKBOARD_TEST_POSTGRES_DSN"`
	// GCSEndpoint enables the GCS export tests against an emulator when set.
	GCSEndpoint string `env:"TASKBOARD_TEST_GCS_ENDPOINT"`
	GCSBucket   string `env:"TASKBOARD_TEST_GCS_BUCKET" default:"taskboard-test"`
}

// LoadTestConfig loads test configuration from environment.
func LoadTestConfig() (*TestConfig, error) {
	cfg := &TestConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load test config: %w", err)
	}

	return cfg, nil
}
