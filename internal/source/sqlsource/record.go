package sqlsource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ALT-F4-LLC/ferry/internal/export"
	"github.com/ALT-F4-LLC/ferry/internal/schema"
)

// ErrDetached is returned when a detached record is read.
var ErrDetached = errors.New("record has been detached")

// Record is one row of an entity table. A record reached through a to-one
// association starts as a reference holding only its identifier; its other
// fields are loaded on first access.
type Record struct {
	src      *Source
	ctx      context.Context
	q        queryer
	entity   *schema.Entity
	values   map[string]any
	refs     map[string]any
	related  map[string]any
	loaded   bool
	detached bool
}

func newRecord(ctx context.Context, src *Source, q queryer, e *schema.Entity) *Record {
	return &Record{
		src:     src,
		ctx:     ctx,
		q:       q,
		entity:  e,
		values:  make(map[string]any, len(e.Fields)),
		refs:    make(map[string]any),
		related: make(map[string]any),
	}
}

// Type implements export.Record.
func (r *Record) Type() string { return r.entity.Name }

// Value implements export.Record. Names that are neither fields nor
// associations yield nil.
func (r *Record) Value(name string) (any, error) {
	if r.detached {
		return nil, fmt.Errorf("reading %s.%s: %w", r.entity.Name, name, ErrDetached)
	}

	if r.entity.HasField(name) {
		if v, ok := r.values[name]; ok || r.loaded {
			return v, nil
		}
		if err := r.load(); err != nil {
			return nil, err
		}
		return r.values[name], nil
	}

	a, ok := r.entity.Association(name)
	if !ok {
		return nil, nil
	}
	if v, ok := r.related[name]; ok {
		return v, nil
	}
	v, err := r.resolve(a)
	if err != nil {
		return nil, fmt.Errorf("resolving %s.%s: %w", r.entity.Name, name, err)
	}
	r.related[name] = v
	return v, nil
}

func (r *Record) id() any {
	return r.values[r.entity.IdentifierFields()[0]]
}

// assign stores one scanned row.
func (r *Record) assign(cols []column, raw []any) {
	for i, c := range cols {
		if c.fk {
			r.refs[c.name] = decodeKey(raw[i])
			continue
		}
		r.values[c.name] = decode(raw[i], c.typ)
	}
	r.loaded = true
}

// load fills a reference record from its table. A dangling reference keeps
// only its identifier.
func (r *Record) load() error {
	cols := r.src.columns(r.entity, "")
	raw, ptrs := scanTargets(len(cols))
	query := r.src.byIDQuery(r.entity)

	r.src.logger.DebugContext(r.ctx, "loading reference", "entity", r.entity.Name, "sql", query)
	err := r.q.QueryRowContext(r.ctx, query, r.id()).Scan(ptrs...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		r.loaded = true
		return nil
	case err != nil:
		return fmt.Errorf("loading %s: %w", r.entity.Name, err)
	}
	r.assign(cols, raw)
	return nil
}

func (r *Record) resolve(a schema.Association) (any, error) {
	target, ok := r.src.catalog.Lookup(a.Target)
	if !ok {
		return nil, export.NewSourceNotFoundError(a.Target, nil)
	}

	if a.Kind == schema.ToOne {
		if !r.loaded {
			if err := r.load(); err != nil {
				return nil, err
			}
		}
		key := r.refs[a.Name]
		if key == nil {
			return nil, nil
		}
		ref := newRecord(r.ctx, r.src, r.q, target)
		ref.values[target.IdentifierFields()[0]] = key
		return ref, nil
	}

	out := []export.Record{}
	owner := r.id()
	if owner == nil {
		return out, nil
	}

	rows, err := r.src.query(r.ctx, r.q, r.src.relatedQuery(target, a), []any{owner})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := r.src.columns(target, "")
	for rows.Next() {
		raw, ptrs := scanTargets(len(cols))
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", target.Name, err)
		}
		rel := newRecord(r.ctx, r.src, r.q, target)
		rel.assign(cols, raw)
		out = append(out, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Record) release() {
	r.detached = true
	r.values = nil
	r.refs = nil
	r.related = nil
	r.q = nil
}

func scanTargets(n int) ([]any, []any) {
	raw := make([]any, n)
	ptrs := make([]any, n)
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	return raw, ptrs
}
