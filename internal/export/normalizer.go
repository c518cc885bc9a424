package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// Normalizer converts arbitrary field values into an integer, float, string
// or nil according to Options.
type Normalizer struct{}

// Normalize converts v. Plain scalars come back unchanged, including
// numeric strings and non-finite floats.
func (n Normalizer) Normalize(v any, opts Options) any {
	switch x := v.(type) {
	case nil:
		return opts.Resolved().NullValue
	case time.Time:
		return x.Format(opts.Resolved().DateTimeFormat)
	case *time.Time:
		if x == nil {
			return opts.Resolved().NullValue
		}
		return x.Format(opts.Resolved().DateTimeFormat)
	case bool:
		return normalizeBool(x, opts)
	case string, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return x
	case []byte:
		return string(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return opts.Resolved().NullValue
		}
	case reflect.Slice, reflect.Map:
		if rv.IsNil() {
			return "[]"
		}
	}

	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return n.Normalize(rv.Elem().Interface(), opts)
	case reflect.Slice, reflect.Array, reflect.Map:
		return compositeJSON(rv)
	case reflect.Struct:
		return rv.Type().String()
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return normalizeBool(rv.Bool(), opts)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return nil
}

func normalizeBool(b bool, opts Options) any {
	if opts.IntegerBooleans() {
		if b {
			return 1
		}
		return 0
	}
	if b {
		return "true"
	}
	return "false"
}

// compositeJSON encodes a slice, array or map. Empty composites and values
// that cannot be encoded become "[]".
func compositeJSON(rv reflect.Value) string {
	if rv.Len() == 0 {
		return "[]"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rv.Interface()); err != nil {
		return "[]"
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
