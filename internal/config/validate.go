package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/ALT-F4-LLC/ferry/internal/db"
	"github.com/ALT-F4-LLC/ferry/internal/format"
	"github.com/ALT-F4-LLC/ferry/internal/schema"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "database.driver").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every problem found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
	natsSchemes     = []string{"nats", "tls", "ws", "wss"}
)

// Validate checks cfg and returns a ValidationError listing every problem,
// or nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateDatabase(&cfg.Database)...)
	errs = append(errs, validateEntities(cfg.Entities)...)
	errs = append(errs, validateExport(&cfg.Export)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateMetrics(&cfg.Metrics)...)
	errs = append(errs, validateEvents(&cfg.Events)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateDatabase(d *DatabaseConfig) []FieldError {
	var errs []FieldError
	if _, err := db.ParseDialect(d.Driver); err != nil {
		errs = append(errs, FieldError{Field: "database.driver", Message: err.Error()})
	}
	if d.MaxOpenConns < 0 {
		errs = append(errs, FieldError{Field: "database.max_open_conns", Message: "must not be negative"})
	}
	return errs
}

func validateEntities(entities []*schema.Entity) []FieldError {
	for i, e := range entities {
		if e == nil {
			return []FieldError{{Field: fmt.Sprintf("entities[%d]", i), Message: "entity is empty"}}
		}
	}
	if _, err := schema.NewCatalog(entities...); err != nil {
		return []FieldError{{Field: "entities", Message: strings.ReplaceAll(err.Error(), "\n", "; ")}}
	}
	return nil
}

func validateExport(e *ExportConfig) []FieldError {
	var errs []FieldError
	if _, err := format.ParseFormat(e.Format); err != nil {
		errs = append(errs, FieldError{Field: "export.format", Message: err.Error()})
	}
	if utf8.RuneCountInString(e.CSV.Delimiter) != 1 {
		errs = append(errs, FieldError{Field: "export.csv.delimiter", Message: "must be a single character"})
	}
	if utf8.RuneCountInString(e.CSV.Enclosure) != 1 {
		errs = append(errs, FieldError{Field: "export.csv.enclosure", Message: "must be a single character"})
	}
	if e.CSV.Delimiter == e.CSV.Enclosure {
		errs = append(errs, FieldError{Field: "export.csv.enclosure", Message: "must differ from the delimiter"})
	}
	if format.SanitizeTagName(e.XML.Root) != e.XML.Root {
		errs = append(errs, FieldError{Field: "export.xml.root", Message: fmt.Sprintf("%q is not a valid element name", e.XML.Root)})
	}
	if format.SanitizeTagName(e.XML.Item) != e.XML.Item {
		errs = append(errs, FieldError{Field: "export.xml.item", Message: fmt.Sprintf("%q is not a valid element name", e.XML.Item)})
	}
	switch v := e.Options.NullValue.(type) {
	case nil, string, int, int64, uint64, float64:
	default:
		errs = append(errs, FieldError{Field: "export.options.null_value", Message: fmt.Sprintf("must be a string or number, got %T", v)})
	}
	return errs
}

func validateLogging(l *LoggingConfig) []FieldError {
	var errs []FieldError
	if !slices.Contains(validLogLevels, strings.ToLower(l.Level)) {
		errs = append(errs, FieldError{Field: "logging.level", Message: fmt.Sprintf("must be one of %v", validLogLevels)})
	}
	if !slices.Contains(validLogFormats, strings.ToLower(l.Format)) {
		errs = append(errs, FieldError{Field: "logging.format", Message: fmt.Sprintf("must be one of %v", validLogFormats)})
	}
	return errs
}

func validateMetrics(m *MetricsConfig) []FieldError {
	var errs []FieldError
	if m.PushgatewayURL != "" {
		u, err := url.Parse(m.PushgatewayURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, FieldError{Field: "metrics.pushgateway_url", Message: "must be an http or https URL"})
		}
	}
	if strings.TrimSpace(m.Job) == "" {
		errs = append(errs, FieldError{Field: "metrics.job", Message: "must not be empty"})
	}
	return errs
}

func validateEvents(e *EventsConfig) []FieldError {
	var errs []FieldError
	if e.NATSURL != "" {
		u, err := url.Parse(e.NATSURL)
		if err != nil || !slices.Contains(natsSchemes, u.Scheme) || u.Host == "" {
			errs = append(errs, FieldError{Field: "events.nats_url", Message: fmt.Sprintf("must be a URL with scheme %v", natsSchemes)})
		}
	}
	if strings.ContainsAny(e.SubjectPrefix, " *>") || strings.HasPrefix(e.SubjectPrefix, ".") || strings.HasSuffix(e.SubjectPrefix, ".") {
		errs = append(errs, FieldError{Field: "events.subject_prefix", Message: "must be a literal NATS subject without wildcards"})
	}
	return errs
}
