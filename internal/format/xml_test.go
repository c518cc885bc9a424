package format

import (
	"encoding/xml"
	"strings"
	"testing"
)

func TestSanitizeTagName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"email", "email"},
		{"123invalid", "_123invalid"},
		{"with spaces", "with_spaces"},
		{".hidden", "_.hidden"},
		{"-dash", "_-dash"},
		{"a&b<c>", "a_b_c_"},
		{"first.name-2", "first.name-2"},
		{"", "field"},
	}
	for _, tt := range tests {
		if got := SanitizeTagName(tt.in); got != tt.want {
			t.Errorf("SanitizeTagName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestXMLFragments(t *testing.T) {
	s := NewXML(XMLOptions{})

	header, ok := s.Header([]string{"id"})
	if !ok {
		t.Fatal("expected header")
	}
	if header != "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<data>\n" {
		t.Errorf("Header() = %q", header)
	}

	row, err := s.Row(rowOf("id", 1, "123invalid", "x", "note", "a & b < c > d"))
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	want := "<item><id>1</id><_123invalid>x</_123invalid><note>a &amp; b &lt; c &gt; d</note></item>\n"
	if row != want {
		t.Errorf("Row() = %q, want %q", row, want)
	}

	footer, ok := s.Footer()
	if !ok || footer != "</data>\n" {
		t.Errorf("Footer() = %q, %v", footer, ok)
	}
}

func TestXMLCustomElementsAndPretty(t *testing.T) {
	s := NewXML(XMLOptions{Root: "users", Item: "user", Pretty: true})
	h, _ := s.Header(nil)
	row, err := s.Row(rowOf("id", 7, "name", "Ann"))
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	f, _ := s.Footer()

	wantRow := "  <user>\n    <id>7</id>\n    <name>Ann</name>\n  </user>\n"
	if row != wantRow {
		t.Errorf("Row() = %q, want %q", row, wantRow)
	}

	doc := h + row + f
	var parsed struct {
		XMLName xml.Name `xml:"users"`
		Users   []struct {
			ID   int    `xml:"id"`
			Name string `xml:"name"`
		} `xml:"user"`
	}
	if err := xml.NewDecoder(strings.NewReader(doc)).Decode(&parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(parsed.Users) != 1 || parsed.Users[0].ID != 7 || parsed.Users[0].Name != "Ann" {
		t.Errorf("parsed = %+v", parsed)
	}
}

func TestXMLArrayValue(t *testing.T) {
	s := NewXML(XMLOptions{})
	row, err := s.Row(rowOf("tags", []any{1, 2}))
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	if !strings.Contains(row, "<tags>[1,2]</tags>") {
		t.Errorf("Row() = %q", row)
	}
}
