// Package config loads the ferry configuration file: database connection,
// entity catalog, export defaults, logging, metrics and event publishing.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ALT-F4-LLC/ferry/internal/export"
	"github.com/ALT-F4-LLC/ferry/internal/format"
	"github.com/ALT-F4-LLC/ferry/internal/schema"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "ferry.yaml"

// Config is the complete ferry configuration.
type Config struct {
	Database DatabaseConfig   `yaml:"database"`
	Entities []*schema.Entity `yaml:"entities,omitempty"`
	Export   ExportConfig     `yaml:"export"`
	Logging  LoggingConfig    `yaml:"logging"`
	Metrics  MetricsConfig    `yaml:"metrics"`
	Events   EventsConfig     `yaml:"events"`

	// Path is the file the configuration was read from, empty when no
	// file was found.
	Path string `yaml:"-"`
}

// DatabaseConfig selects the database to export from.
type DatabaseConfig struct {
	Driver       string `yaml:"driver"`
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns,omitempty"`
}

// ExportConfig holds defaults for export requests and format settings.
type ExportConfig struct {
	Format          string         `yaml:"format"`
	Options         export.Options `yaml:"options"`
	format.Settings `yaml:",inline"`
}

// LoggingConfig controls the diagnostic logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls export metrics collection.
type MetricsConfig struct {
	Enabled        bool   `yaml:"enabled"`
	PushgatewayURL string `yaml:"pushgateway_url,omitempty"`
	Job            string `yaml:"job,omitempty"`
}

// EventsConfig controls lifecycle event publishing over NATS.
type EventsConfig struct {
	NATSURL       string `yaml:"nats_url,omitempty"`
	SubjectPrefix string `yaml:"subject_prefix,omitempty"`
}

// ResolvePath returns the configuration path to use. The explicit path
// wins, then FERRY_CONFIG, then ferry.yaml in the working directory. The
// second result reports whether the path was chosen explicitly.
func ResolvePath(explicit string) (string, bool, error) {
	if explicit != "" {
		return explicit, true, nil
	}
	if envPath := os.Getenv("FERRY_CONFIG"); envPath != "" {
		return envPath, true, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, err
	}
	return filepath.Join(cwd, FileName), false, nil
}

// Resolve locates and loads the configuration with environment overrides.
// A missing ferry.yaml in the working directory is not an error; defaults
// and environment overrides are used instead. A missing explicit path is.
func Resolve(explicit string) (*Config, error) {
	path, chosen, err := ResolvePath(explicit)
	if err != nil {
		return nil, fmt.Errorf("resolving configuration path: %w", err)
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !chosen {
		cfg := Default()
		applyEnvOverrides(cfg)
		if err := Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return LoadWithEnvOverrides(path)
}

// Catalog builds the entity catalog from the configured entities.
func (c *Config) Catalog() (*schema.Catalog, error) {
	return schema.NewCatalog(c.Entities...)
}

// ExportOptions returns a copy of the configured export options.
func (c *Config) ExportOptions() export.Options {
	return c.Export.Options.Resolved()
}

// Save writes cfg as YAML to path, replacing any existing file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing configuration file %q: %w", path, err)
	}
	return nil
}
