package output

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/ALT-F4-LLC/ferry/internal/export"
	"github.com/ALT-F4-LLC/ferry/internal/format"
)

// ErrorCode represents a machine-readable error classification.
type ErrorCode string

// Error code constants.
const (
	ErrGeneral           ErrorCode = "GENERAL_ERROR"
	ErrNotFound          ErrorCode = "NOT_FOUND"
	ErrValidation        ErrorCode = "VALIDATION_ERROR"
	ErrConflict          ErrorCode = "CONFLICT"
	ErrUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	ErrIO                ErrorCode = "IO_ERROR"
)

// Exit code constants.
const (
	ExitSuccess           = 0
	ExitGeneral           = 1
	ExitNotFound          = 2
	ExitValidation        = 3
	ExitConflict          = 4
	ExitUnsupportedFormat = 5
	ExitIO                = 6
)

// ExitCodeForError maps an ErrorCode to its corresponding exit code.
func ExitCodeForError(code ErrorCode) int {
	switch code {
	case ErrNotFound:
		return ExitNotFound
	case ErrValidation:
		return ExitValidation
	case ErrConflict:
		return ExitConflict
	case ErrUnsupportedFormat:
		return ExitUnsupportedFormat
	case ErrIO:
		return ExitIO
	default:
		return ExitGeneral
	}
}

// CodeFor classifies an export failure.
func CodeFor(err error) ErrorCode {
	switch {
	case export.IsValidation(err):
		return ErrValidation
	case export.IsSourceNotFound(err):
		return ErrNotFound
	case export.IsUnsupportedFormat(err):
		return ErrUnsupportedFormat
	case export.IsSinkIO(err):
		return ErrIO
	default:
		return ErrGeneral
	}
}

// successEnvelope is the JSON structure for successful responses.
type successEnvelope struct {
	OK      bool   `json:"ok"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// errorEnvelope is the JSON structure for error responses.
type errorEnvelope struct {
	OK      bool          `json:"ok"`
	Error   string        `json:"error"`
	Code    ErrorCode     `json:"code"`
	Details *errorDetails `json:"details,omitempty"`
}

// errorDetails holds the structured parts of an export failure.
type errorDetails struct {
	Entity    string   `json:"entity,omitempty"`
	Field     string   `json:"field,omitempty"`
	Context   string   `json:"context,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	Available []string `json:"available,omitempty"`
	Format    string   `json:"format,omitempty"`
	Supported []string `json:"supported,omitempty"`
	Op        string   `json:"op,omitempty"`
	Path      string   `json:"path,omitempty"`
}

// detailsOf returns the details of the first known failure in err's chain,
// or nil.
func detailsOf(err error) *errorDetails {
	var (
		ve *export.ValidationError
		se *export.SinkIOError
		fe *format.UnsupportedFormatError
		ne *export.SourceNotFoundError
	)
	switch {
	case errors.As(err, &ve):
		return &errorDetails{
			Entity:    ve.Entity,
			Field:     ve.Field,
			Context:   ve.Context,
			Reason:    ve.Reason,
			Available: ve.Available,
		}
	case errors.As(err, &se):
		return &errorDetails{Op: se.Op, Path: se.Path}
	case errors.As(err, &fe):
		d := &errorDetails{Format: fe.Format}
		for _, f := range fe.Supported {
			d.Supported = append(d.Supported, string(f))
		}
		return d
	case errors.As(err, &ne):
		return &errorDetails{Entity: ne.Entity}
	}
	return nil
}

// writeJSONSuccess writes a success envelope to w.
func writeJSONSuccess(w io.Writer, data any, message string) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(successEnvelope{
		OK:      true,
		Data:    data,
		Message: message,
	})
}

// writeJSONError writes an error envelope, with details when err carries
// them, to w.
func writeJSONError(w io.Writer, err error, code ErrorCode) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(errorEnvelope{
		OK:      false,
		Error:   err.Error(),
		Code:    code,
		Details: detailsOf(err),
	})
}
