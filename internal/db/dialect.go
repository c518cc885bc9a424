package db

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Dialect identifies a SQL flavor and knows how to spell the few pieces of
// syntax that differ between them.
type Dialect string

const (
	SQLite    Dialect = "sqlite"
	Postgres  Dialect = "postgres"
	MySQL     Dialect = "mysql"
	SQLServer Dialect = "sqlserver"
)

var dialectAliases = map[string]Dialect{
	"sqlite":     SQLite,
	"sqlite3":    SQLite,
	"postgres":   Postgres,
	"postgresql": Postgres,
	"pgx":        Postgres,
	"mysql":      MySQL,
	"mariadb":    MySQL,
	"sqlserver":  SQLServer,
	"mssql":      SQLServer,
}

// Dialects returns the canonical dialect names.
func Dialects() []Dialect {
	return []Dialect{SQLite, Postgres, MySQL, SQLServer}
}

// ParseDialect maps a driver name or alias to its dialect.
func ParseDialect(s string) (Dialect, error) {
	d, ok := dialectAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unsupported database driver %q: must be one of %v", s, Dialects())
	}
	return d, nil
}

// DriverName returns the database/sql driver registered for d.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "pgx"
	}
	return string(d)
}

// Placeholder returns the bind parameter for the n-th argument, counting
// from 1.
func (d Dialect) Placeholder(n int) string {
	switch d {
	case Postgres:
		return "$" + strconv.Itoa(n)
	case SQLServer:
		return "@p" + strconv.Itoa(n)
	}
	return "?"
}

// Quote returns ident quoted as an identifier. Callers must have checked
// ident with ValidIdentifier.
func (d Dialect) Quote(ident string) string {
	switch d {
	case MySQL:
		return "`" + ident + "`"
	case SQLServer:
		return "[" + ident + "]"
	}
	return `"` + ident + `"`
}

// Paginate returns the clause that applies limit and offset, or "" when
// both are zero. A zero limit means no limit.
func (d Dialect) Paginate(limit, offset int) string {
	if limit <= 0 && offset <= 0 {
		return ""
	}
	switch d {
	case SQLServer:
		clause := fmt.Sprintf("OFFSET %d ROWS", max(offset, 0))
		if limit > 0 {
			clause += fmt.Sprintf(" FETCH NEXT %d ROWS ONLY", limit)
		}
		return clause
	case Postgres:
		if limit <= 0 {
			return fmt.Sprintf("OFFSET %d", offset)
		}
	case MySQL:
		if limit <= 0 {
			return fmt.Sprintf("LIMIT 18446744073709551615 OFFSET %d", offset)
		}
	case SQLite:
		if limit <= 0 {
			return fmt.Sprintf("LIMIT -1 OFFSET %d", offset)
		}
	}
	if offset <= 0 {
		return fmt.Sprintf("LIMIT %d", limit)
	}
	return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
}

// PagingNeedsOrder reports whether Paginate's clause is only valid after an
// ORDER BY.
func (d Dialect) PagingNeedsOrder() bool {
	return d == SQLServer
}

// safeIdentifier matches table and column names that may be interpolated
// into SQL after quoting.
var safeIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to use as a table or column.
func ValidIdentifier(name string) bool {
	return safeIdentifier.MatchString(name)
}

// MakePlaceholders returns n comma-separated placeholders starting at the
// given argument position.
func (d Dialect) MakePlaceholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = d.Placeholder(start + i)
	}
	return strings.Join(parts, ", ")
}
