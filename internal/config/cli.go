package config

import (
	"fmt"

	"github.com/rezkam/taskboard/internal/env"
)

// CLIConfig holds configuration for the taskctl binary.
type CLIConfig struct {
	Storage StorageConfig
}

// LoadCLIConfig loads and validates CLI configuration from environment.
func LoadCLIConfig() (*CLIConfig, error) {
	cfg := &CLIConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load cli config: %w", err)
	}

	return cfg, nil
}
