// Package format turns record rows into serialized output fragments. Each
// strategy produces an optional header, one fragment per row, and an
// optional footer, so a result set can be written without holding it in
// memory.
package format

import (
	"fmt"
	"slices"
	"strings"
)

// Format identifies an output format. Values are lowercase.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	XML  Format = "xml"
)

var builtinFormats = []Format{CSV, JSON, XML}

// ParseFormat normalizes s to lowercase and returns the matching built-in
// format.
func ParseFormat(s string) (Format, error) {
	f := Normalize(s)
	if slices.Contains(builtinFormats, f) {
		return f, nil
	}
	return "", &UnsupportedFormatError{Format: s, Supported: builtinFormats}
}

// Normalize trims and lowercases a format identifier without checking that
// it is known.
func Normalize(s string) Format {
	return Format(strings.ToLower(strings.TrimSpace(s)))
}

// String returns the identifier.
func (f Format) String() string { return string(f) }

// Extension returns the conventional file extension, without the dot.
func (f Format) Extension() string { return string(f) }

// MimeType returns the media type written for this format.
func (f Format) MimeType() string {
	switch f {
	case CSV:
		return "text/csv"
	case JSON:
		return "application/json"
	case XML:
		return "application/xml"
	default:
		return "application/octet-stream"
	}
}

// UnsupportedFormatError is returned when no strategy is registered for a
// requested format.
type UnsupportedFormatError struct {
	Format    string
	Supported []Format
}

// Error implements the error interface.
func (e *UnsupportedFormatError) Error() string {
	if len(e.Supported) == 0 {
		return fmt.Sprintf("unsupported format %q", e.Format)
	}
	names := make([]string, len(e.Supported))
	for i, f := range e.Supported {
		names[i] = string(f)
	}
	return fmt.Sprintf("unsupported format %q: must be one of %s", e.Format, strings.Join(names, ", "))
}
