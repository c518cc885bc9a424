package sqlsource

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ALT-F4-LLC/ferry/internal/schema"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.DateOnly,
}

// decode converts a raw driver value into the Go type implied by the
// declared field type. Values that do not parse are returned unchanged.
func decode(raw any, t schema.FieldType) any {
	if raw == nil {
		return nil
	}
	if b, ok := raw.([]byte); ok && t != schema.TypeJSON {
		raw = string(b)
	}

	switch t {
	case schema.TypeInteger:
		return decodeInteger(raw)
	case schema.TypeFloat:
		return decodeFloat(raw)
	case schema.TypeBoolean:
		return decodeBool(raw)
	case schema.TypeDateTime, schema.TypeDate:
		return decodeTime(raw)
	case schema.TypeJSON:
		return decodeJSON(raw)
	}
	return raw
}

// decodeKey normalizes a foreign key value.
func decodeKey(raw any) any {
	if b, ok := raw.([]byte); ok {
		s := string(b)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		return s
	}
	return raw
}

func decodeInteger(raw any) any {
	switch v := raw.(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int64(v)
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return raw
}

func decodeFloat(raw any) any {
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return raw
}

func decodeBool(raw any) any {
	switch v := raw.(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return raw
}

func decodeTime(raw any) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return raw
}

func decodeJSON(raw any) any {
	var data []byte
	switch v := raw.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return raw
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return string(data)
	}
	return out
}
