package format

import (
	"strings"

	"github.com/ALT-F4-LLC/ferry/internal/record"
)

// CSVOptions configures the delimited-text strategy.
type CSVOptions struct {
	Delimiter string `yaml:"delimiter,omitempty" json:"delimiter,omitempty"`
	Enclosure string `yaml:"enclosure,omitempty" json:"enclosure,omitempty"`
}

// CSVStrategy writes one delimited line per row. The header is the field
// list rendered as a row; there is no footer.
type CSVStrategy struct {
	delimiter string
	enclosure string
}

// NewCSV returns a CSV strategy. Empty options default to a comma delimiter
// and double-quote enclosure.
func NewCSV(opts CSVOptions) *CSVStrategy {
	s := &CSVStrategy{delimiter: opts.Delimiter, enclosure: opts.Enclosure}
	if s.delimiter == "" {
		s.delimiter = ","
	}
	if s.enclosure == "" {
		s.enclosure = `"`
	}
	return s
}

// Format returns CSV.
func (s *CSVStrategy) Format() Format { return CSV }

// Header renders the field names as the first line.
func (s *CSVStrategy) Header(fields []string) (string, bool) {
	values := make([]string, len(fields))
	copy(values, fields)
	return s.line(values), true
}

// Row renders the row values in key order.
func (s *CSVStrategy) Row(row *record.Row) (string, error) {
	vals := row.Values()
	values := make([]string, len(vals))
	for i, v := range vals {
		values[i] = stringify(v)
	}
	return s.line(values), nil
}

// Footer reports that CSV has no footer.
func (s *CSVStrategy) Footer() (string, bool) { return "", false }

func (s *CSVStrategy) line(values []string) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteString(s.delimiter)
		}
		b.WriteString(s.escape(v))
	}
	b.WriteByte('\n')
	return b.String()
}

// escape quotes a field that contains the delimiter, the enclosure or a
// line break, doubling any enclosure inside it.
func (s *CSVStrategy) escape(v string) string {
	if !strings.Contains(v, s.delimiter) &&
		!strings.Contains(v, s.enclosure) &&
		!strings.ContainsAny(v, "\r\n") {
		return v
	}
	escaped := strings.ReplaceAll(v, s.enclosure, s.enclosure+s.enclosure)
	return s.enclosure + escaped + s.enclosure
}
