package config

import "github.com/ALT-F4-LLC/ferry/internal/export"

// Default values for configuration fields.
const (
	DefaultDriver         = "sqlite"
	DefaultFormat         = "csv"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultMetricsJob     = "ferry"
	DefaultSubjectPrefix  = "ferry.exports"
	DefaultCSVDelimiter   = ","
	DefaultCSVEnclosure   = `"`
	DefaultXMLRootElement = "data"
	DefaultXMLItemElement = "item"
)

// Default returns a configuration with every default applied. Boolean
// defaults that are true can only be set here, before the file is decoded
// on top of them.
func Default() *Config {
	cfg := &Config{
		Export: ExportConfig{Options: export.DefaultOptions()},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills empty fields with their default values.
func ApplyDefaults(cfg *Config) {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DefaultDriver
	}

	if cfg.Export.Format == "" {
		cfg.Export.Format = DefaultFormat
	}
	if cfg.Export.Options.DateTimeFormat == "" {
		cfg.Export.Options.DateTimeFormat = export.DefaultDateTimeFormat
	}
	if cfg.Export.CSV.Delimiter == "" {
		cfg.Export.CSV.Delimiter = DefaultCSVDelimiter
	}
	if cfg.Export.CSV.Enclosure == "" {
		cfg.Export.CSV.Enclosure = DefaultCSVEnclosure
	}
	if cfg.Export.XML.Root == "" {
		cfg.Export.XML.Root = DefaultXMLRootElement
	}
	if cfg.Export.XML.Item == "" {
		cfg.Export.XML.Item = DefaultXMLItemElement
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	if cfg.Metrics.Job == "" {
		cfg.Metrics.Job = DefaultMetricsJob
	}
	if cfg.Events.SubjectPrefix == "" {
		cfg.Events.SubjectPrefix = DefaultSubjectPrefix
	}
}
