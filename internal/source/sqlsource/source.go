// Package sqlsource implements export.Source over a database/sql
// connection. Entities map to tables through their schema definitions;
// to-one associations are read from foreign key columns and to-many
// associations are queried lazily when a transformer asks for them.
package sqlsource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/ALT-F4-LLC/ferry/internal/db"
	"github.com/ALT-F4-LLC/ferry/internal/export"
	"github.com/ALT-F4-LLC/ferry/internal/schema"
)

// Source reads records from SQL tables described by a schema catalog.
type Source struct {
	conn     *sql.DB
	dialect  db.Dialect
	catalog  *schema.Catalog
	logger   *slog.Logger
	detached atomic.Int64
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger used for query tracing.
func WithLogger(l *slog.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a source reading through conn. Every table and column named
// by the catalog must be a plain SQL identifier.
func New(conn *sql.DB, dialect db.Dialect, catalog *schema.Catalog, opts ...Option) (*Source, error) {
	if err := validateCatalog(catalog); err != nil {
		return nil, fmt.Errorf("invalid catalog for sql source: %w", err)
	}
	s := &Source{
		conn:    conn,
		dialect: dialect,
		catalog: catalog,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "sqlsource", "dialect", string(dialect))
	return s, nil
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
	e, err := s.Metadata(q.Entity)
	if err != nil {
		return nil, err
	}

	query, args, err := s.buildSelect(e, q)
	if err != nil {
		return nil, err
	}

	// SQLite pools hold a single connection, so association lookups made
	// while the cursor is open must share the cursor's connection.
	var (
		pinned *sql.Conn
		conn   queryer = s.conn
	)
	if s.dialect == db.SQLite {
		pinned, err = s.conn.Conn(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquiring connection: %w", err)
		}
		conn = pinned
	}

	rows, err := s.query(ctx, conn, query, args)
	if err != nil {
		if pinned != nil {
			pinned.Close()
		}
		return nil, fmt.Errorf("querying %s: %w", e.Name, err)
	}
	return &cursor{src: s, ctx: ctx, q: conn, pinned: pinned, rows: rows, entity: e}, nil
}

// Detach implements export.Source. It drops the values held by rec and any
// associations resolved through it.
func (s *Source) Detach(rec export.Record) {
	if r, ok := rec.(*Record); ok && r != nil && r.src == s {
		r.release()
	}
	s.detached.Add(1)
}

// Detached returns how many records have been detached.
func (s *Source) Detached() int {
	return int(s.detached.Load())
}

// queryer is satisfied by both *sql.DB and *sql.Conn.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Source) query(ctx context.Context, q queryer, query string, args []any) (*sql.Rows, error) {
	s.logger.DebugContext(ctx, "running query", "sql", query, "args", len(args))
	return q.QueryContext(ctx, query, args...)
}

func validateCatalog(c *schema.Catalog) error {
	var errs []error
	check := func(entity, what, name string) {
		if !db.ValidIdentifier(name) {
			errs = append(errs, fmt.Errorf("entity %q: invalid %s %q", entity, what, name))
		}
	}

	for _, e := range c.Entities() {
		check(e.Name, "table", e.TableName())
		for _, f := range e.Fields {
			check(e.Name, "column", f.ColumnName())
		}
		for _, a := range e.Associations {
			switch {
			case a.Kind == schema.ToOne:
				check(e.Name, "column for association "+a.Name, a.Column)
			case a.JoinTable != "":
				check(e.Name, "join table", a.JoinTable)
				check(e.Name, "join column", a.JoinColumn)
				check(e.Name, "inverse column", a.InverseColumn)
			case a.MappedBy != "":
				check(e.Name, "mapped_by column", a.MappedBy)
			default:
				errs = append(errs, fmt.Errorf("entity %q association %q: join_table or mapped_by is required", e.Name, a.Name))
			}
		}
	}
	return errors.Join(errs...)
}
