package format

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ALT-F4-LLC/ferry/internal/record"
)

// JSONOptions configures the structured-document strategy.
type JSONOptions struct {
	Pretty bool `yaml:"pretty,omitempty" json:"pretty,omitempty"`
}

// JSONStrategy writes a JSON array with one object per row. Each row is
// encoded on its own, so only the first-row flag is carried between rows.
type JSONStrategy struct {
	pretty bool
	first  bool
}

// NewJSON returns a JSON strategy.
func NewJSON(opts JSONOptions) *JSONStrategy {
	return &JSONStrategy{pretty: opts.Pretty, first: true}
}

// Format returns JSON.
func (s *JSONStrategy) Format() Format { return JSON }

// Header opens the array and resets the first-row flag.
func (s *JSONStrategy) Header(fields []string) (string, bool) {
	s.first = true
	return "[", true
}

// Row encodes the row as an object preceded by the row separator.
func (s *JSONStrategy) Row(row *record.Row) (string, error) {
	b, err := row.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("encoding row: %w", err)
	}
	if s.pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, b, "", "    "); err != nil {
			return "", fmt.Errorf("indenting row: %w", err)
		}
		b = buf.Bytes()
	}

	if s.first {
		s.first = false
		return "\n" + string(b), nil
	}
	return ",\n" + string(b), nil
}

// Footer closes the array.
func (s *JSONStrategy) Footer() (string, bool) {
	return "\n]\n", true
}
