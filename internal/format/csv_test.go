package format

import (
	"testing"

	"github.com/ALT-F4-LLC/ferry/internal/record"
)

func rowOf(pairs ...any) *record.Row {
	r := &record.Row{}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i].(string), pairs[i+1])
	}
	return r
}

func TestCSVHeader(t *testing.T) {
	s := NewCSV(CSVOptions{})
	got, ok := s.Header([]string{"id", "email", "first,name"})
	if !ok {
		t.Fatal("expected CSV header")
	}
	want := "id,email,\"first,name\"\n"
	if got != want {
		t.Errorf("Header() = %q, want %q", got, want)
	}
}

func TestCSVEscaping(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"plain", "hello", "hello\n"},
		{"delimiter", "a,b", "\"a,b\"\n"},
		{"quote", `say "hi"`, "\"say \"\"hi\"\"\"\n"},
		{"newline", "line1\nline2", "\"line1\nline2\"\n"},
		{"carriage return", "a\rb", "\"a\rb\"\n"},
		{"leading space unquoted", " padded", " padded\n"},
		{"nil", nil, "\n"},
		{"int", 42, "42\n"},
		{"float", 3.5, "3.5\n"},
		{"slice", []any{1, "x"}, "\"[1,\"\"x\"\"]\"\n"},
		{"struct", struct{}{}, "\n"},
	}

	s := NewCSV(CSVOptions{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Row(rowOf("v", tt.value))
			if err != nil {
				t.Fatalf("Row: %v", err)
			}
			if got != tt.want {
				t.Errorf("Row() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCSVCustomDelimiter(t *testing.T) {
	s := NewCSV(CSVOptions{Delimiter: ";", Enclosure: "'"})
	got, err := s.Row(rowOf("a", "x;y", "b", "it's", "c", "a,b"))
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	want := "'x;y';'it''s';a,b\n"
	if got != want {
		t.Errorf("Row() = %q, want %q", got, want)
	}
}

func TestCSVNoFooter(t *testing.T) {
	if _, ok := NewCSV(CSVOptions{}).Footer(); ok {
		t.Error("CSV should not produce a footer")
	}
}
