package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/ALT-F4-LLC/ferry/internal/export"
	"github.com/ALT-F4-LLC/ferry/internal/format"
)

func TestWriteJSONSuccess(t *testing.T) {
	var buf bytes.Buffer
	writeJSONSuccess(&buf, map[string]string{"key": "val"}, "it worked")

	var env successEnvelope
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !env.OK {
		t.Error("ok = false, want true")
	}
	if env.Message != "it worked" {
		t.Errorf("message = %q, want %q", env.Message, "it worked")
	}
	data, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("data type = %T, want map", env.Data)
	}
	if data["key"] != "val" {
		t.Errorf("data.key = %v, want %q", data["key"], "val")
	}
}

func TestWriteJSONSuccessOmitsEmptyMessage(t *testing.T) {
	var buf bytes.Buffer
	writeJSONSuccess(&buf, "data", "")

	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, exists := raw["message"]; exists {
		t.Error("expected message to be omitted when empty")
	}
}

func TestWriteJSONError(t *testing.T) {
	var buf bytes.Buffer
	writeJSONError(&buf, errors.New("something broke"), ErrNotFound)

	var env errorEnvelope
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.OK {
		t.Error("ok = true, want false")
	}
	if env.Error != "something broke" {
		t.Errorf("error = %q, want %q", env.Error, "something broke")
	}
	if env.Code != ErrNotFound {
		t.Errorf("code = %q, want %q", env.Code, ErrNotFound)
	}
}

func TestWriterErrorJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	w := &Writer{JSONMode: true, Stdout: &stdout, Stderr: &stderr}

	code := w.Error(errors.New("fail"), ErrValidation)
	if code != ExitValidation {
		t.Errorf("exit code = %d, want %d", code, ExitValidation)
	}
	if stdout.Len() == 0 {
		t.Error("expected JSON error on stdout")
	}
	var env errorEnvelope
	if err := json.Unmarshal(stdout.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.OK {
		t.Error("ok = true, want false")
	}
	if env.Code != ErrValidation {
		t.Errorf("code = %q, want %q", env.Code, ErrValidation)
	}
}

func TestWriterErrorHuman(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var stdout, stderr bytes.Buffer
	w := &Writer{JSONMode: false, Stdout: &stdout, Stderr: &stderr}

	code := w.Error(errors.New("fail"), ErrGeneral)
	if code != ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, ExitGeneral)
	}
	if stderr.String() != "Error: fail\n" {
		t.Errorf("stderr = %q, want %q", stderr.String(), "Error: fail\n")
	}
}

func TestWriterInfoSuppressedInJSONMode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	w := &Writer{JSONMode: true, Stdout: &stdout, Stderr: &stderr}

	w.Info("should not appear")
	if stderr.Len() != 0 {
		t.Errorf("expected no stderr output in JSON mode, got %q", stderr.String())
	}
}

func TestWriterInfoSuppressedInQuietMode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	w := &Writer{QuietMode: true, Stdout: &stdout, Stderr: &stderr}

	w.Info("should not appear")
	if stderr.Len() != 0 {
		t.Errorf("expected no stderr output in quiet mode, got %q", stderr.String())
	}
}

func TestWriterInfoEmitsInDefaultMode(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var stdout, stderr bytes.Buffer
	w := &Writer{Stdout: &stdout, Stderr: &stderr}

	w.Info("hello %s", "world")
	if stderr.String() != "hello world\n" {
		t.Errorf("stderr = %q, want %q", stderr.String(), "hello world\n")
	}
}

func TestWriteJSONErrorValidationDetails(t *testing.T) {
	var buf bytes.Buffer
	err := fmt.Errorf("querying user: %w", &export.ValidationError{
		Entity:    "user",
		Field:     "nope",
		Context:   "criteria",
		Available: []string{"id", "email"},
	})
	writeJSONError(&buf, err, ErrValidation)

	var env errorEnvelope
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := &errorDetails{Entity: "user", Field: "nope", Context: "criteria", Available: []string{"id", "email"}}
	if !reflect.DeepEqual(env.Details, want) {
		t.Errorf("details = %+v, want %+v", env.Details, want)
	}
}

func TestWriteJSONErrorSinkAndFormatDetails(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want *errorDetails
	}{
		{"sink", &export.SinkIOError{Op: "write", Path: "out.csv", Cause: errors.New("disk full")}, &errorDetails{Op: "write", Path: "out.csv"}},
		{"format", &format.UnsupportedFormatError{Format: "yaml", Supported: []format.Format{format.CSV, format.JSON}}, &errorDetails{Format: "yaml", Supported: []string{"csv", "json"}}},
		{"entity", export.NewSourceNotFoundError("widget", nil), &errorDetails{Entity: "widget"}},
		{"plain", errors.New("boom"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writeJSONError(&buf, tt.err, ErrGeneral)

			var env errorEnvelope
			if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !reflect.DeepEqual(env.Details, tt.want) {
				t.Errorf("details = %+v, want %+v", env.Details, tt.want)
			}
		})
	}
}

func TestWriterErrorHumanListsAvailableFields(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var stdout, stderr bytes.Buffer
	w := &Writer{Stdout: &stdout, Stderr: &stderr}

	w.Error(&export.ValidationError{
		Entity:    "user",
		Field:     "nope",
		Context:   "order by",
		Available: []string{"id", "email", "author"},
	}, ErrValidation)

	want := "Error: field \"nope\" does not exist in entity \"user\" (used in order by)\n" +
		"  Available fields: id, email, author\n"
	if stderr.String() != want {
		t.Errorf("stderr = %q, want %q", stderr.String(), want)
	}
}

func TestWriterErrorHumanSinkHints(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	tests := []struct {
		op   string
		want string
	}{
		{"open", "Error: sink open \"out/x.csv\": denied\n  Check that the directory for out/x.csv exists and is writable.\n"},
		{"write", "Error: sink write \"out/x.csv\": denied\n  Output written before the failure remains in out/x.csv.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			w := &Writer{Stdout: &stdout, Stderr: &stderr}

			code := w.Error(&export.SinkIOError{Op: tt.op, Path: "out/x.csv", Cause: errors.New("denied")}, ErrIO)
			if code != ExitIO {
				t.Errorf("exit code = %d, want %d", code, ExitIO)
			}
			if stderr.String() != tt.want {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.want)
			}
		})
	}
}

func TestCodeFor(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCode
	}{
		{&export.ValidationError{Entity: "user", Field: "x"}, ErrValidation},
		{export.NewSourceNotFoundError("widget", nil), ErrNotFound},
		{&format.UnsupportedFormatError{Format: "yaml"}, ErrUnsupportedFormat},
		{fmt.Errorf("wrapped: %w", &export.SinkIOError{Op: "open", Cause: errors.New("denied")}), ErrIO},
		{errors.New("other"), ErrGeneral},
	}

	for _, tt := range tests {
		if got := CodeFor(tt.err); got != tt.want {
			t.Errorf("CodeFor(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestWriterSummaryDestination(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	s := ExportSummary{Entity: "tag", Format: "csv", Records: 2, Bytes: 10, Duration: time.Millisecond}

	var stdout, stderr bytes.Buffer
	w := &Writer{Stdout: &stdout, Stderr: &stderr}
	s.Destination = StdoutDestination
	w.Summary(s)
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty for a stdout export", stdout.String())
	}
	if stderr.String() != s.String()+"\n" {
		t.Errorf("stderr = %q, want %q", stderr.String(), s.String()+"\n")
	}

	stdout.Reset()
	stderr.Reset()
	s.Destination = "tags.csv"
	w.Summary(s)
	if stdout.String() != s.String()+"\n" {
		t.Errorf("stdout = %q, want %q", stdout.String(), s.String()+"\n")
	}
}

func TestExitCodeForErrorMapping(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrGeneral, ExitGeneral},
		{ErrNotFound, ExitNotFound},
		{ErrValidation, ExitValidation},
		{ErrConflict, ExitConflict},
		{ErrUnsupportedFormat, ExitUnsupportedFormat},
		{ErrIO, ExitIO},
		{ErrorCode("unknown"), ExitGeneral},
	}

	for _, tt := range tests {
		if got := ExitCodeForError(tt.code); got != tt.want {
			t.Errorf("ExitCodeForError(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestExportSummaryString(t *testing.T) {
	tests := []struct {
		name string
		s    ExportSummary
		want string
	}{
		{
			name: "many records",
			s: ExportSummary{
				Entity:      "user",
				Format:      "csv",
				Destination: "users.csv",
				Records:     12045,
				Bytes:       2_500_000,
				Duration:    1234567 * time.Microsecond,
			},
			want: "Exported 12,045 user records as csv to users.csv (2.5 MB in 1.235s)",
		},
		{
			name: "single record",
			s: ExportSummary{
				Entity:      "tag",
				Format:      "json",
				Destination: "stdout",
				Records:     1,
				Bytes:       42,
				Duration:    3 * time.Millisecond,
			},
			want: "Exported 1 tag record as json to stdout (42 B in 3ms)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
