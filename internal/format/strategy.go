package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/ALT-F4-LLC/ferry/internal/record"
)

// Strategy renders rows for one format. A strategy may keep state between
// calls (for example whether a row was already written); Header resets that
// state, so a single instance can serve consecutive exports but never
// concurrent ones.
type Strategy interface {
	Format() Format
	// Header returns the opening fragment for the given field list and
	// whether the format has one.
	Header(fields []string) (string, bool)
	// Row returns the fragment for one row.
	Row(row *record.Row) (string, error)
	// Footer returns the closing fragment and whether the format has one.
	Footer() (string, bool)
}

// stringify converts a row value to text for the delimited and markup
// formats. Composite values become JSON and values with no natural text
// form become the empty string.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(x).Int(), 10)
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(x).Uint(), 10)
	case float32:
		return formatFloat(float64(x), 32)
	case float64:
		return formatFloat(x, 64)
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return jsonText(v)
	}
	return ""
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NAN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

func jsonText(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "[]"
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
