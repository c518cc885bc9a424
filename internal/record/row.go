// Package record holds the ordered field mapping that travels through the
// transformer chain for a single exported record.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"math"
)

// Row is an insertion-ordered mapping from field name to value. The zero
// value is an empty row ready for use.
type Row struct {
	keys   []string
	values map[string]any
}

// New returns a row whose keys are the given fields, each set to nil.
// Duplicate field names keep their first position.
func New(fields []string) *Row {
	r := &Row{
		keys:   make([]string, 0, len(fields)),
		values: make(map[string]any, len(fields)),
	}
	for _, f := range fields {
		r.Set(f, nil)
	}
	return r
}

// Set assigns v to key. A key not yet present is appended at the end.
func (r *Row) Set(key string, v any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value stored under key and whether the key exists.
func (r *Row) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is present.
func (r *Row) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Len returns the number of keys.
func (r *Row) Len() int { return len(r.keys) }

// Keys returns a copy of the keys in order.
func (r *Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Values returns the values in key order.
func (r *Row) Values() []any {
	out := make([]any, len(r.keys))
	for i, k := range r.keys {
		out[i] = r.values[k]
	}
	return out
}

// All iterates over the key/value pairs in order.
func (r *Row) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range r.keys {
			if !yield(k, r.values[k]) {
				return
			}
		}
	}
}

// MarshalJSON encodes the row as a JSON object preserving key order.
// HTML characters are left unescaped and non-finite floats encode as null.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeValue(&buf, k); err != nil {
			return nil, fmt.Errorf("encoding key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := encodeValue(&buf, finite(r.values[k])); err != nil {
			return nil, fmt.Errorf("encoding value of %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

func finite(v any) any {
	switch f := v.(type) {
	case float64:
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
	case float32:
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return nil
		}
	}
	return v
}
