// Package transform provides ready-made export transformers and parses
// them from short command-line specs such as "mask:email" or
// "concat:displayName=firstName,lastName".
package transform

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ALT-F4-LLC/ferry/internal/export"
	"github.com/ALT-F4-LLC/ferry/internal/record"
)

// stringFunc rewrites a string field in place. Non-string values, including
// nil, are left alone.
func stringFunc(field string, fn func(string) string) export.Transformer {
	return export.TransformerFunc(func(_ context.Context, _ export.Record, row *record.Row, _ export.Options) (*record.Row, error) {
		if v, ok := row.Get(field); ok {
			if s, ok := v.(string); ok {
				row.Set(field, fn(s))
			}
		}
		return row, nil
	})
}

// Mask hides the local part of an email address except its first
// character: "john@example.com" becomes "j***@example.com". Values without
// an "@" are unchanged.
func Mask(field string) export.Transformer {
	return stringFunc(field, MaskEmail)
}

// MaskEmail masks every character between the first one and the last "@".
func MaskEmail(s string) string {
	at := strings.LastIndex(s, "@")
	if at <= 0 {
		return s
	}
	local := []rune(s[:at])
	for i := 1; i < len(local); i++ {
		local[i] = '*'
	}
	return string(local) + s[at:]
}

// Upper upper-cases a string field.
func Upper(field string) export.Transformer {
	return stringFunc(field, strings.ToUpper)
}

// Lower lower-cases a string field.
func Lower(field string) export.Transformer {
	return stringFunc(field, strings.ToLower)
}

// Bracket wraps a string field in square brackets.
func Bracket(field string) export.Transformer {
	return stringFunc(field, func(s string) string { return "[" + s + "]" })
}

// Constant sets field to value on every row, adding the field when absent.
func Constant(field string, value any) export.Transformer {
	return export.TransformerFunc(func(_ context.Context, _ export.Record, row *record.Row, _ export.Options) (*record.Row, error) {
		row.Set(field, value)
		return row, nil
	})
}

// Concat sets target to the values of fields joined by sep. Missing and nil
// values contribute an empty string.
func Concat(target, sep string, fields ...string) export.Transformer {
	return export.TransformerFunc(func(_ context.Context, _ export.Record, row *record.Row, _ export.Options) (*record.Row, error) {
		parts := make([]string, len(fields))
		for i, f := range fields {
			v, _ := row.Get(f)
			if v != nil {
				parts[i] = fmt.Sprint(v)
			}
		}
		row.Set(target, strings.Join(parts, sep))
		return row, nil
	})
}

type parser func(args string) (export.Transformer, error)

var parsers = map[string]parser{
	"mask":    fieldParser(Mask),
	"upper":   fieldParser(Upper),
	"lower":   fieldParser(Lower),
	"bracket": fieldParser(Bracket),
	"const":   parseConstant,
	"concat":  parseConcat,
}

// Names returns the recognized transformer names.
func Names() []string {
	names := make([]string, 0, len(parsers))
	for name := range parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse builds one transformer from a spec of the form "name:args".
//
//	mask:email
//	upper:lastName
//	lower:email
//	bracket:firstName
//	const:source=crm
//	concat:displayName=firstName,lastName
func Parse(spec string) (export.Transformer, error) {
	name, args, ok := strings.Cut(strings.TrimSpace(spec), ":")
	if !ok || args == "" {
		return nil, fmt.Errorf("invalid transform %q: expected name:args", spec)
	}
	p, ok := parsers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown transform %q: must be one of %s", name, strings.Join(Names(), ", "))
	}
	t, err := p(args)
	if err != nil {
		return nil, fmt.Errorf("invalid transform %q: %w", spec, err)
	}
	return t, nil
}

// ParseAll parses each spec in order.
func ParseAll(specs []string) ([]export.Transformer, error) {
	out := make([]export.Transformer, 0, len(specs))
	for _, spec := range specs {
		t, err := Parse(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func fieldParser(build func(string) export.Transformer) parser {
	return func(args string) (export.Transformer, error) {
		field := strings.TrimSpace(args)
		if strings.ContainsAny(field, "=,") {
			return nil, fmt.Errorf("expected a single field name, got %q", args)
		}
		return build(field), nil
	}
}

func parseConstant(args string) (export.Transformer, error) {
	field, value, ok := strings.Cut(args, "=")
	if !ok || strings.TrimSpace(field) == "" {
		return nil, fmt.Errorf("expected field=value")
	}
	return Constant(strings.TrimSpace(field), value), nil
}

func parseConcat(args string) (export.Transformer, error) {
	target, list, ok := strings.Cut(args, "=")
	target = strings.TrimSpace(target)
	if !ok || target == "" || list == "" {
		return nil, fmt.Errorf("expected target=field,field")
	}
	var fields []string
	for _, f := range strings.Split(list, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("concat needs at least one source field")
	}
	return Concat(target, " ", fields...), nil
}
