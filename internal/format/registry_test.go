package format

import (
	"errors"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", CSV, false},
		{"JSON", JSON, false},
		{" Xml ", XML, false},
		{"yaml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMetadata(t *testing.T) {
	tests := []struct {
		f         Format
		ext, mime string
	}{
		{CSV, "csv", "text/csv"},
		{JSON, "json", "application/json"},
		{XML, "xml", "application/xml"},
	}
	for _, tt := range tests {
		if got := tt.f.Extension(); got != tt.ext {
			t.Errorf("%s.Extension() = %q, want %q", tt.f, got, tt.ext)
		}
		if got := tt.f.MimeType(); got != tt.mime {
			t.Errorf("%s.MimeType() = %q, want %q", tt.f, got, tt.mime)
		}
	}
}

func TestRegistryLookup(t *testing.T) {
	r := DefaultRegistry(Settings{})

	for _, f := range []Format{CSV, JSON, XML, "JSON"} {
		s, err := r.Strategy(f)
		if err != nil {
			t.Fatalf("Strategy(%q): %v", f, err)
		}
		if s.Format() != Normalize(string(f)) {
			t.Errorf("Strategy(%q).Format() = %q", f, s.Format())
		}
	}

	_, err := r.Strategy("yaml")
	var ufe *UnsupportedFormatError
	if !errors.As(err, &ufe) {
		t.Fatalf("Strategy(yaml) error = %v, want UnsupportedFormatError", err)
	}
	if !strings.Contains(err.Error(), "csv, json, xml") {
		t.Errorf("error = %q, want supported list", err)
	}
}

func TestRegistryReturnsFreshStrategies(t *testing.T) {
	r := DefaultRegistry(Settings{})
	a, _ := r.Strategy(JSON)
	b, _ := r.Strategy(JSON)
	if a == b {
		t.Error("expected distinct strategy instances")
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	if r.Has(CSV) {
		t.Fatal("new registry should be empty")
	}
	r.Register("TSV", func() Strategy { return NewCSV(CSVOptions{Delimiter: "\t"}) })
	if !r.Has("tsv") {
		t.Error("expected tsv to be registered")
	}
	if got := r.Formats(); len(got) != 1 || got[0] != "tsv" {
		t.Errorf("Formats() = %v", got)
	}
}
