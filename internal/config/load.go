package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file at path. Values absent from the
// file keep their defaults. The result is validated but not modified by
// environment variables; use LoadWithEnvOverrides for that.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}
	cfg.Path = path

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads configuration from path and then applies
// environment variable overrides, which always take precedence.
//
// The loading sequence is:
// 1. Load YAML from file over the defaults
// 2. Apply environment variable overrides
// 3. Validate final configuration
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies FERRY_SECTION_FIELD environment variables.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("FERRY_DATABASE_DRIVER"); val != "" {
		cfg.Database.Driver = val
	}
	if val := os.Getenv("FERRY_DATABASE_DSN"); val != "" {
		cfg.Database.DSN = val
	}
	if val := os.Getenv("FERRY_DATABASE_MAX_OPEN_CONNS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Database.MaxOpenConns = n
		}
	}

	if val := os.Getenv("FERRY_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("FERRY_LOG_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}

	if val := os.Getenv("FERRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("FERRY_METRICS_PUSHGATEWAY_URL"); val != "" {
		cfg.Metrics.PushgatewayURL = val
	}

	if val := os.Getenv("FERRY_EVENTS_NATS_URL"); val != "" {
		cfg.Events.NATSURL = val
	}
}
