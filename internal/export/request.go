package export

import (
	"maps"
	"slices"

	"github.com/ALT-F4-LLC/ferry/internal/format"
)

// Request describes one export call. It must not be modified while the
// export runs.
type Request struct {
	Entity       string
	Format       format.Format
	Criteria     map[string]any
	OrderBy      []SortKey
	Limit        int // 0 means no limit
	Offset       int
	Fields       []string // empty means every plain field
	Options      *Options // nil means DefaultOptions
	Transformers []Transformer
}

func (r Request) options() Options {
	if r.Options == nil {
		return DefaultOptions()
	}
	return r.Options.Resolved()
}

// criteria returns the filters ordered by field name.
func (r Request) criteria() []Criterion {
	keys := slices.Sorted(maps.Keys(r.Criteria))
	out := make([]Criterion, len(keys))
	for i, k := range keys {
		out[i] = Criterion{Field: k, Value: r.Criteria[k]}
	}
	return out
}

// orderBy returns the sort keys with normalized directions.
func (r Request) orderBy() []SortKey {
	out := make([]SortKey, len(r.OrderBy))
	for i, k := range r.OrderBy {
		if d, err := ParseDirection(string(k.Direction)); err == nil {
			k.Direction = d
		}
		out[i] = k
	}
	return out
}

// requestedFields returns the requested fields without duplicates.
func (r Request) requestedFields() []string {
	seen := make(map[string]bool, len(r.Fields))
	out := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
