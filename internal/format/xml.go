package format

import (
	"encoding/xml"
	"regexp"
	"strings"

	"github.com/ALT-F4-LLC/ferry/internal/record"
)

const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>`

var (
	invalidTagChars = regexp.MustCompile(`[^a-zA-Z0-9_\-.]`)
	invalidTagStart = regexp.MustCompile(`^[0-9.\-]`)
)

// XMLOptions configures the markup-tree strategy.
type XMLOptions struct {
	Root   string `yaml:"root,omitempty" json:"root,omitempty"`
	Item   string `yaml:"item,omitempty" json:"item,omitempty"`
	Pretty bool   `yaml:"pretty,omitempty" json:"pretty,omitempty"`
}

// XMLStrategy writes a root element holding one item element per row, with
// one child element per field.
type XMLStrategy struct {
	root   string
	item   string
	pretty bool
}

// NewXML returns an XML strategy. Root and item element names default to
// "data" and "item".
func NewXML(opts XMLOptions) *XMLStrategy {
	s := &XMLStrategy{root: "data", item: "item", pretty: opts.Pretty}
	if opts.Root != "" {
		s.root = SanitizeTagName(opts.Root)
	}
	if opts.Item != "" {
		s.item = SanitizeTagName(opts.Item)
	}
	return s
}

// Format returns XML.
func (s *XMLStrategy) Format() Format { return XML }

// Header writes the XML declaration and opens the root element.
func (s *XMLStrategy) Header(fields []string) (string, bool) {
	return xmlDeclaration + "\n<" + s.root + ">\n", true
}

// Row writes one item element.
func (s *XMLStrategy) Row(row *record.Row) (string, error) {
	var b strings.Builder
	if s.pretty {
		b.WriteString("  ")
	}
	b.WriteString("<" + s.item + ">")
	for k, v := range row.All() {
		tag := SanitizeTagName(k)
		if s.pretty {
			b.WriteString("\n    ")
		}
		b.WriteString("<" + tag + ">")
		if err := xml.EscapeText(&b, []byte(stringify(v))); err != nil {
			return "", err
		}
		b.WriteString("</" + tag + ">")
	}
	if s.pretty && row.Len() > 0 {
		b.WriteString("\n  ")
	}
	b.WriteString("</" + s.item + ">\n")
	return b.String(), nil
}

// Footer closes the root element.
func (s *XMLStrategy) Footer() (string, bool) {
	return "</" + s.root + ">\n", true
}

// SanitizeTagName turns a field name into a valid element name. Characters
// outside letters, digits, underscore, hyphen and period become underscores,
// names starting with a digit, period or hyphen get a leading underscore,
// and an empty name becomes "field".
func SanitizeTagName(name string) string {
	s := invalidTagChars.ReplaceAllString(name, "_")
	if s == "" {
		return "field"
	}
	if invalidTagStart.MatchString(s) {
		s = "_" + s
	}
	return s
}
