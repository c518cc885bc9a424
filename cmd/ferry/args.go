package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ALT-F4-LLC/ferry/internal/export"
)

// parseCriteria turns field=value pairs into export criteria. The literal
// null matches a null value; integers, floats and true/false are decoded,
// anything else is compared as a string. Quote a value to keep it a string.
func parseCriteria(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		field, raw, ok := strings.Cut(p, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid filter %q: expected field=value", p)
		}
		if _, dup := out[field]; dup {
			return nil, fmt.Errorf("duplicate filter for field %q", field)
		}
		out[field] = parseValue(raw)
	}
	return out, nil
}

func parseValue(raw string) any {
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		return raw[1 : len(raw)-1]
	}
	if raw == "null" {
		return nil
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}

// parseSort turns field[:asc|desc] specs into sort keys.
func parseSort(specs []string) ([]export.SortKey, error) {
	keys := make([]export.SortKey, 0, len(specs))
	for _, s := range specs {
		field, dir, _ := strings.Cut(s, ":")
		field = strings.TrimSpace(field)
		if field == "" {
			return nil, fmt.Errorf("invalid sort %q: expected field[:asc|desc]", s)
		}
		d, err := export.ParseDirection(dir)
		if err != nil {
			return nil, err
		}
		keys = append(keys, export.SortKey{Field: field, Direction: d})
	}
	return keys, nil
}

// parseNullValue decodes the --null-value flag. Numbers are kept numeric.
func parseNullValue(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
