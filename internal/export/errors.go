package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ALT-F4-LLC/ferry/internal/format"
)

// ValidationError reports a request that refers to a field the entity does
// not have, or carries an otherwise invalid parameter.
type ValidationError struct {
	Entity    string   // entity being exported
	Field     string   // offending field or parameter name
	Context   string   // where the field was used ("criteria", "order by", "fields", ...)
	Reason    string   // set for invalid parameters rather than unknown fields
	Available []string // known fields and associations
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s for entity %q: %s", e.Field, e.Entity, e.Reason)
	}
	msg := fmt.Sprintf("field %q does not exist in entity %q", e.Field, e.Entity)
	if e.Context != "" {
		msg += " (used in " + e.Context + ")"
	}
	if len(e.Available) > 0 {
		msg += ". Available fields: " + strings.Join(e.Available, ", ")
	}
	return msg
}

// SourceNotFoundError reports that the source has no handler for an entity.
type SourceNotFoundError struct {
	Entity string
	Cause  error
}

// Error implements the error interface.
func (e *SourceNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("no source for entity %q: %v", e.Entity, e.Cause)
	}
	return fmt.Sprintf("no source for entity %q", e.Entity)
}

// Unwrap returns the underlying cause error.
func (e *SourceNotFoundError) Unwrap() error {
	return e.Cause
}

// NewSourceNotFoundError creates a new SourceNotFoundError.
func NewSourceNotFoundError(entity string, cause error) *SourceNotFoundError {
	return &SourceNotFoundError{Entity: entity, Cause: cause}
}

// UnsupportedFormatError reports that no strategy is registered for the
// requested format.
type UnsupportedFormatError = format.UnsupportedFormatError

// SinkIOError reports a failure to open, write or close the output sink.
type SinkIOError struct {
	Op    string // "open", "write" or "close"
	Path  string // sink description, empty when unknown
	Cause error
}

// Error implements the error interface.
func (e *SinkIOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("sink %s %q: %v", e.Op, e.Path, e.Cause)
	}
	return fmt.Sprintf("sink %s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *SinkIOError) Unwrap() error {
	return e.Cause
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsSourceNotFound reports whether err is or wraps a *SourceNotFoundError.
func IsSourceNotFound(err error) bool {
	var target *SourceNotFoundError
	return errors.As(err, &target)
}

// IsUnsupportedFormat reports whether err is or wraps an
// *UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool {
	var target *UnsupportedFormatError
	return errors.As(err, &target)
}

// IsSinkIO reports whether err is or wraps a *SinkIOError.
func IsSinkIO(err error) bool {
	var target *SinkIOError
	return errors.As(err, &target)
}
