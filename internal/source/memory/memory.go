// Package memory implements an export.Source over records held in memory.
// It is meant for tests and for embedding small, fixed datasets.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ALT-F4-LLC/ferry/internal/export"
	"github.com/ALT-F4-LLC/ferry/internal/schema"
)

// Record is an in-memory record. To-one associations hold a *Record and
// to-many associations hold a []*Record.
type Record struct {
	entity string
	values map[string]any
}

// NewRecord returns a record of the given entity type.
func NewRecord(entity string, values map[string]any) *Record {
	return &Record{entity: entity, values: values}
}

// Type implements export.Record.
func (r *Record) Type() string { return r.entity }

// Value implements export.Record. Missing values are nil.
func (r *Record) Value(name string) (any, error) {
	v := r.values[name]
	if rel, ok := v.(*Record); ok && rel == nil {
		return nil, nil
	}
	if rels, ok := v.([]*Record); ok {
		out := make([]export.Record, 0, len(rels))
		for _, rel := range rels {
			if rel != nil {
				out = append(out, rel)
			}
		}
		return out, nil
	}
	return v, nil
}

// Source stores records per entity and serves them in insertion order
// unless a sort order is requested.
type Source struct {
	mu       sync.RWMutex
	catalog  *schema.Catalog
	records  map[string][]*Record
	detached int
}

// New returns an empty source for the entities in catalog.
func New(catalog *schema.Catalog) *Source {
	return &Source{
		catalog: catalog,
		records: make(map[string][]*Record),
	}
}

// Add appends records. Every record's type must be in the catalog.
func (s *Source) Add(recs ...*Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recs {
		if _, ok := s.catalog.Lookup(r.entity); !ok {
			return export.NewSourceNotFoundError(r.entity, nil)
		}
		s.records[r.entity] = append(s.records[r.entity], r)
	}
	return nil
}

// Metadata implements export.MetadataProvider.
func (s *Source) Metadata(entity string) (*schema.Entity, error) {
	e, ok := s.catalog.Lookup(entity)
	if !ok {
		return nil, export.NewSourceNotFoundError(entity, nil)
	}
	return e, nil
}

// Query implements export.Source.
func (s *Source) Query(ctx context.Context, q export.Query) (export.Cursor, error) {
	entity, err := s.Metadata(q.Entity)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	all := s.records[entity.Name]
	matched := make([]*Record, 0, len(all))
	for _, r := range all {
		if s.matches(r, q.Criteria) {
			matched = append(matched, r)
		}
	}
	s.mu.RUnlock()

	if len(q.OrderBy) > 0 {
		slices.SortStableFunc(matched, func(a, b *Record) int {
			for _, k := range q.OrderBy {
				c := compareValues(s.sortValue(a, k.Field), s.sortValue(b, k.Field))
				if k.Direction == export.Descending {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[q.Offset:]
		}
	}
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	return &cursor{ctx: ctx, records: matched}, nil
}

// Detach implements export.Source by counting released records.
func (s *Source) Detach(rec export.Record) {
	s.mu.Lock()
	s.detached++
	s.mu.Unlock()
}

// Detached returns how many records have been released.
func (s *Source) Detached() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detached
}

func (s *Source) matches(r *Record, criteria []export.Criterion) bool {
	for _, c := range criteria {
		v := s.sortValue(r, c.Field)
		if c.Value == nil {
			if v != nil {
				return false
			}
			continue
		}
		if v == nil || compareValues(v, c.Value) != 0 {
			return false
		}
	}
	return true
}

// sortValue returns the comparable value of a field. A to-one association
// compares by the related record's identifier.
func (s *Source) sortValue(r *Record, field string) any {
	v := r.values[field]
	rel, ok := v.(*Record)
	if !ok {
		return v
	}
	if rel == nil {
		return nil
	}
	target, err := s.Metadata(rel.entity)
	if err != nil {
		return nil
	}
	return rel.values[target.IdentifierFields()[0]]
}

type cursor struct {
	ctx     context.Context
	records []*Record
	pos     int
	cur     *Record
	err     error
	closed  bool
}

func (c *cursor) Next() bool {
	if c.closed || c.err != nil || c.pos >= len(c.records) {
		return false
	}
	if err := c.ctx.Err(); err != nil {
		c.err = err
		return false
	}
	c.cur = c.records[c.pos]
	c.pos++
	return true
}

func (c *cursor) Record() export.Record { return c.cur }

func (c *cursor) Err() error { return c.err }

func (c *cursor) Close() error {
	c.closed = true
	c.records = nil
	return nil
}

// compareValues orders nil first, then numbers, times and finally the
// string forms of anything else.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return cmp.Compare(af, bf)
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Bool:
		if rv.Bool() {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
