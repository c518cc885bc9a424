package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/ALT-F4-LLC/ferry/internal/schema"
)

// Record is one unit of source data.
type Record interface {
	// Type returns the entity name of the record.
	Type() string
	// Value returns the value of a field or association. A to-one
	// association yields a Record or nil; a to-many association yields a
	// slice whose Record elements are the related records.
	Value(name string) (any, error)
}

// MetadataProvider looks up the field map of an entity type.
type MetadataProvider interface {
	// Metadata returns the entity definition or a *SourceNotFoundError.
	Metadata(entity string) (*schema.Entity, error)
}

// Cursor is a forward-only, unbuffered sequence of records.
type Cursor interface {
	Next() bool
	Record() Record
	Err() error
	Close() error
}

// Source is the persistence collaborator of an export.
type Source interface {
	MetadataProvider
	// Query opens a cursor honoring the criteria, sort order, limit and
	// offset. Field names in q have already been validated.
	Query(ctx context.Context, q Query) (Cursor, error)
	// Detach releases any state the source keeps for rec. It is called
	// exactly once per record returned by a cursor.
	Detach(rec Record)
}

// Query is the source-facing form of a request.
type Query struct {
	Entity   string
	Criteria []Criterion
	OrderBy  []SortKey
	Limit    int // 0 means no limit
	Offset   int
}

// Criterion is an equality filter. A nil Value matches null.
type Criterion struct {
	Field string
	Value any
}

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// ParseDirection accepts "asc" or "desc" in any case. An empty string
// means ascending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ASC":
		return Ascending, nil
	case "DESC":
		return Descending, nil
	}
	return "", fmt.Errorf("invalid sort direction %q: must be asc or desc", s)
}

// SortKey is one component of a sort order.
type SortKey struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}
