package export

import "time"

// DefaultDateTimeFormat is the layout used for date/time values when no
// other layout is configured.
const DefaultDateTimeFormat = time.RFC3339

// Options controls value normalization and field handling for one export.
type Options struct {
	// BooleanToInteger renders booleans as 1/0 instead of "true"/"false".
	// Nil means true.
	BooleanToInteger *bool `yaml:"boolean_to_integer,omitempty" json:"boolean_to_integer,omitempty"`
	// DateTimeFormat is a Go time layout.
	DateTimeFormat string `yaml:"datetime_format" json:"datetime_format"`
	// NullValue replaces nil field values. Only non-boolean scalars are
	// honored; anything else falls back to nil.
	NullValue any `yaml:"null_value" json:"null_value"`
	// StrictFields turns unknown requested fields into validation errors.
	StrictFields bool `yaml:"strict_fields" json:"strict_fields"`
	// DisableDefaultExtraction skips the built-in FieldExtractor so that
	// caller transformers populate every field.
	DisableDefaultExtraction bool `yaml:"disable_default_extraction" json:"disable_default_extraction"`
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		BooleanToInteger: Bool(true),
		DateTimeFormat:   DefaultDateTimeFormat,
	}
}

// Bool returns a pointer to b, for setting Options.BooleanToInteger.
func Bool(b bool) *bool { return &b }

// IntegerBooleans reports whether booleans render as 1/0.
func (o Options) IntegerBooleans() bool {
	return o.BooleanToInteger == nil || *o.BooleanToInteger
}

// Resolved returns a copy with unset options replaced by their defaults and
// an unsupported null value replaced by nil.
func (o Options) Resolved() Options {
	o.BooleanToInteger = Bool(o.IntegerBooleans())
	if o.DateTimeFormat == "" {
		o.DateTimeFormat = DefaultDateTimeFormat
	}
	o.NullValue = scalarOrNil(o.NullValue)
	return o
}

func scalarOrNil(v any) any {
	switch v.(type) {
	case string, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return v
	}
	return nil
}
