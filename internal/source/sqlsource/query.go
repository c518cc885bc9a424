package sqlsource

import (
	"fmt"
	"strings"

	"github.com/ALT-F4-LLC/ferry/internal/export"
	"github.com/ALT-F4-LLC/ferry/internal/schema"
)

// column is one selected column and the field or association it feeds.
type column struct {
	name string
	sql  string
	typ  schema.FieldType
	fk   bool
}

// columns returns the plain field columns followed by the foreign keys of
// to-one associations. prefix qualifies each column when non-empty.
func (s *Source) columns(e *schema.Entity, prefix string) []column {
	cols := make([]column, 0, len(e.Fields)+len(e.Associations))
	for _, f := range e.Fields {
		cols = append(cols, column{name: f.Name, sql: prefix + s.dialect.Quote(f.ColumnName()), typ: f.Type})
	}
	for _, a := range e.Associations {
		if a.Kind == schema.ToOne {
			cols = append(cols, column{name: a.Name, sql: prefix + s.dialect.Quote(a.Column), fk: true})
		}
	}
	return cols
}

func selectList(cols []column) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c.sql
	}
	return strings.Join(parts, ", ")
}

// buildSelect renders the statement for q. Criteria and sort keys may name
// plain fields or to-one associations.
func (s *Source) buildSelect(e *schema.Entity, q export.Query) (string, []any, error) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(selectList(s.columns(e, "")))
	b.WriteString(" FROM ")
	b.WriteString(s.dialect.Quote(e.TableName()))

	var (
		args  []any
		conds []string
	)
	for _, c := range q.Criteria {
		col, err := s.filterColumn(e, c.Field, "criteria")
		if err != nil {
			return "", nil, err
		}
		v, err := s.criterionValue(c.Value)
		if err != nil {
			return "", nil, err
		}
		if v == nil {
			conds = append(conds, col+" IS NULL")
			continue
		}
		args = append(args, v)
		conds = append(conds, col+" = "+s.dialect.Placeholder(len(args)))
	}
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}

	var order []string
	for _, k := range q.OrderBy {
		col, err := s.filterColumn(e, k.Field, "order by")
		if err != nil {
			return "", nil, err
		}
		dir, err := export.ParseDirection(string(k.Direction))
		if err != nil {
			return "", nil, err
		}
		order = append(order, col+" "+string(dir))
	}

	paging := s.dialect.Paginate(q.Limit, q.Offset)
	if len(order) == 0 && paging != "" && s.dialect.PagingNeedsOrder() {
		order = append(order, s.dialect.Quote(idColumn(e)))
	}
	if len(order) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(order, ", "))
	}
	if paging != "" {
		b.WriteString(" ")
		b.WriteString(paging)
	}
	return b.String(), args, nil
}

// filterColumn resolves a criteria or sort name to a quoted column.
func (s *Source) filterColumn(e *schema.Entity, name, usage string) (string, error) {
	if f, ok := e.Field(name); ok {
		return s.dialect.Quote(f.ColumnName()), nil
	}
	if a, ok := e.Association(name); ok {
		if a.Kind != schema.ToOne {
			return "", &export.ValidationError{
				Entity: e.Name,
				Field:  name,
				Reason: fmt.Sprintf("to-many association cannot be used in %s", usage),
			}
		}
		return s.dialect.Quote(a.Column), nil
	}
	return "", &export.ValidationError{Entity: e.Name, Field: name, Context: usage, Available: e.Available()}
}

// criterionValue turns a related record into its identifier so it can be
// compared with a foreign key column.
func (s *Source) criterionValue(v any) (any, error) {
	rec, ok := v.(export.Record)
	if !ok {
		return v, nil
	}
	if r, ok := rec.(*Record); ok && r == nil {
		return nil, nil
	}
	meta, err := s.Metadata(rec.Type())
	if err != nil {
		return nil, err
	}
	return rec.Value(meta.IdentifierFields()[0])
}

// idColumn returns the column of the first identifier field.
func idColumn(e *schema.Entity) string {
	f, _ := e.Field(e.IdentifierFields()[0])
	return f.ColumnName()
}

// byIDQuery selects one row of e by identifier.
func (s *Source) byIDQuery(e *schema.Entity) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		selectList(s.columns(e, "")),
		s.dialect.Quote(e.TableName()),
		s.dialect.Quote(idColumn(e)),
		s.dialect.Placeholder(1),
	)
}

// relatedQuery selects the targets of a to-many association owned by the
// record whose identifier is bound to the only placeholder.
func (s *Source) relatedQuery(target *schema.Entity, a schema.Association) string {
	q := s.dialect.Quote
	if a.JoinTable != "" {
		return fmt.Sprintf("SELECT %s FROM %s t INNER JOIN %s j ON j.%s = t.%s WHERE j.%s = %s ORDER BY t.%s",
			selectList(s.columns(target, "t.")),
			q(target.TableName()),
			q(a.JoinTable),
			q(a.InverseColumn),
			q(idColumn(target)),
			q(a.JoinColumn),
			s.dialect.Placeholder(1),
			q(idColumn(target)),
		)
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s ORDER BY %s",
		selectList(s.columns(target, "")),
		q(target.TableName()),
		q(a.MappedBy),
		s.dialect.Placeholder(1),
		q(idColumn(target)),
	)
}
