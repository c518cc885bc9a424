package export_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ALT-F4-LLC/ferry/internal/export"
	"github.com/ALT-F4-LLC/ferry/internal/record"
)

type label string

type plain struct{ A int }

type named struct{ name string }

func (n named) String() string { return "named:" + n.name }

func TestNormalize(t *testing.T) {
	n := export.Normalizer{}
	def := export.DefaultOptions()

	noInts := def
	noInts.BooleanToInteger = export.Bool(false)

	withNull := def
	withNull.NullValue = "N/A"

	boolNull := def
	boolNull.NullValue = true

	custom := def
	custom.DateTimeFormat = "02/01/2006 15:04"

	seven := 7
	var nilPtr *int
	stamp := fixedTime
	var nilTime *time.Time

	tests := []struct {
		name string
		in   any
		opts export.Options
		want any
	}{
		{"datetime default", fixedTime, def, "2024-01-15T10:30:00Z"},
		{"datetime custom", fixedTime, custom, "15/01/2024 10:30"},
		{"datetime empty layout", fixedTime, export.Options{}, "2024-01-15T10:30:00Z"},
		{"datetime pointer", &stamp, def, "2024-01-15T10:30:00Z"},
		{"datetime pointer custom", &stamp, custom, "15/01/2024 10:30"},
		{"nil datetime pointer", nilTime, withNull, "N/A"},
		{"true as int", true, def, 1},
		{"false as int", false, def, 0},
		{"true as string", true, noInts, "true"},
		{"false as string", false, noInts, "false"},
		{"true with unset boolean option", true, export.Options{StrictFields: true}, 1},
		{"nil", nil, def, nil},
		{"nil with null value", nil, withNull, "N/A"},
		{"bool null value rejected", nil, boolNull, nil},
		{"slice", []any{1, "two"}, def, `[1,"two"]`},
		{"empty slice", []int{}, def, "[]"},
		{"nil slice", []string(nil), def, "[]"},
		{"map", map[string]int{"a": 1}, def, `{"a":1}`},
		{"stringer", named{"x"}, def, "named:x"},
		{"struct", plain{A: 1}, def, "export_test.plain"},
		{"numeric string", "42", def, "42"},
		{"int", 42, def, 42},
		{"int64", int64(42), def, int64(42)},
		{"float", 3.14, def, 3.14},
		{"bytes", []byte("raw"), def, "raw"},
		{"named string", label("tag"), def, "tag"},
		{"pointer", &seven, def, 7},
		{"nil pointer", nilPtr, withNull, "N/A"},
		{"channel", make(chan int), def, nil},
		{"func", func() {}, def, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in, tt.opts))
		})
	}
}

func TestNormalizeNonFiniteFloats(t *testing.T) {
	n := export.Normalizer{}
	opts := export.DefaultOptions()

	assert.True(t, math.IsInf(n.Normalize(math.Inf(1), opts).(float64), 1))
	assert.True(t, math.IsInf(n.Normalize(math.Inf(-1), opts).(float64), -1))
	assert.True(t, math.IsNaN(n.Normalize(math.NaN(), opts).(float64)))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := export.Normalizer{}
	opts := export.DefaultOptions()
	opts.NullValue = "-"

	for _, in := range []any{"plain", 12, 1.5, true, nil, fixedTime, []any{1}, named{"y"}} {
		once := n.Normalize(in, opts)
		assert.Equal(t, once, n.Normalize(once, opts), "input %v", in)
	}
}

func TestOptionsResolved(t *testing.T) {
	o := export.Options{NullValue: []int{1}}.Resolved()
	assert.Equal(t, export.DefaultDateTimeFormat, o.DateTimeFormat)
	assert.Nil(t, o.NullValue)
	require.NotNil(t, o.BooleanToInteger)
	assert.True(t, *o.BooleanToInteger)

	o = export.Options{BooleanToInteger: export.Bool(false)}.Resolved()
	assert.False(t, o.IntegerBooleans())

	o = export.Options{NullValue: 0, DateTimeFormat: time.Kitchen}.Resolved()
	assert.Equal(t, 0, o.NullValue)
	assert.Equal(t, time.Kitchen, o.DateTimeFormat)
}

func TestChainRestoresDroppedKeys(t *testing.T) {
	chain := export.NewChain(nil)
	replace := export.TransformerFunc(func(_ context.Context, _ export.Record, _ *record.Row, _ export.Options) (*record.Row, error) {
		r := &record.Row{}
		r.Set("extra", 1)
		return r, nil
	})

	row, err := chain.Process(context.Background(), nil, []string{"a", "b"}, export.DefaultOptions(), []export.Transformer{replace})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "extra"}, row.Keys())
}

func TestChainRestoresDroppedKeyInPlace(t *testing.T) {
	chain := export.NewChain(nil)
	dropMiddle := export.TransformerFunc(func(_ context.Context, _ export.Record, _ *record.Row, _ export.Options) (*record.Row, error) {
		r := &record.Row{}
		r.Set("c", 3)
		r.Set("a", 1)
		return r, nil
	})

	row, err := chain.Process(context.Background(), nil, []string{"a", "b", "c"}, export.DefaultOptions(), []export.Transformer{dropMiddle})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, row.Keys())
	assert.Equal(t, []any{1, nil, 3}, row.Values())
}

func TestChainNilResultKeepsRow(t *testing.T) {
	chain := export.NewChain(nil)
	set := export.TransformerFunc(func(_ context.Context, _ export.Record, row *record.Row, _ export.Options) (*record.Row, error) {
		row.Set("a", "set")
		return nil, nil
	})

	row, err := chain.Process(context.Background(), nil, []string{"a"}, export.DefaultOptions(), []export.Transformer{set})
	require.NoError(t, err)
	v, _ := row.Get("a")
	assert.Equal(t, "set", v)
}
