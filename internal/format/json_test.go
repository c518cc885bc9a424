package format

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONFragments(t *testing.T) {
	s := NewJSON(JSONOptions{})

	header, ok := s.Header([]string{"id", "name"})
	if !ok || header != "[" {
		t.Fatalf("Header() = %q, %v", header, ok)
	}

	first, err := s.Row(rowOf("id", 1, "name", "Ann"))
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	if first != "\n{\"id\":1,\"name\":\"Ann\"}" {
		t.Errorf("first row = %q", first)
	}

	second, err := s.Row(rowOf("id", 2, "name", "Bo/b"))
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	if second != ",\n{\"id\":2,\"name\":\"Bo/b\"}" {
		t.Errorf("second row = %q", second)
	}

	footer, ok := s.Footer()
	if !ok || footer != "\n]\n" {
		t.Errorf("Footer() = %q, %v", footer, ok)
	}
}

func TestJSONHeaderResetsFirstRow(t *testing.T) {
	s := NewJSON(JSONOptions{})
	s.Header(nil)
	s.Row(rowOf("a", 1))
	s.Header(nil)

	got, err := s.Row(rowOf("a", 2))
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	if !strings.HasPrefix(got, "\n{") {
		t.Errorf("row after reset = %q, want no separator", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	s := NewJSON(JSONOptions{})
	var b strings.Builder
	h, _ := s.Header([]string{"id", "tags"})
	b.WriteString(h)
	for i, tags := range [][]any{{1, 2}, {}} {
		frag, err := s.Row(rowOf("id", i, "tags", tags, "note", "ünïcode <ok>"))
		if err != nil {
			t.Fatalf("Row: %v", err)
		}
		b.WriteString(frag)
	}
	f, _ := s.Footer()
	b.WriteString(f)

	var got []map[string]any
	if err := json.Unmarshal([]byte(b.String()), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", b.String(), err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0]["note"] != "ünïcode <ok>" {
		t.Errorf("note = %v", got[0]["note"])
	}
	if !strings.Contains(b.String(), "ünïcode <ok>") {
		t.Error("expected unicode and HTML characters to stay unescaped")
	}
}

func TestJSONEmpty(t *testing.T) {
	s := NewJSON(JSONOptions{})
	h, _ := s.Header(nil)
	f, _ := s.Footer()
	var got []any
	if err := json.Unmarshal([]byte(h+f), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestJSONPretty(t *testing.T) {
	s := NewJSON(JSONOptions{Pretty: true})
	s.Header(nil)
	got, err := s.Row(rowOf("id", 1))
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	want := "\n{\n    \"id\": 1\n}"
	if got != want {
		t.Errorf("Row() = %q, want %q", got, want)
	}
}
