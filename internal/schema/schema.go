// Package schema describes the record types that can be exported: their
// plain fields, their associations to other record types, and the fields
// that identify a single record.
package schema

import (
	"errors"
	"fmt"
	"slices"
)

// FieldType is the declared value type of a field. Sources use it to decode
// raw column values into Go values before normalization.
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeInteger  FieldType = "integer"
	TypeFloat    FieldType = "float"
	TypeBoolean  FieldType = "boolean"
	TypeDateTime FieldType = "datetime"
	TypeDate     FieldType = "date"
	TypeJSON     FieldType = "json"
)

var validFieldTypes = []FieldType{
	TypeString,
	TypeInteger,
	TypeFloat,
	TypeBoolean,
	TypeDateTime,
	TypeDate,
	TypeJSON,
}

// ValidateFieldType returns an error if t is not a recognized field type.
func ValidateFieldType(t FieldType) error {
	if slices.Contains(validFieldTypes, t) {
		return nil
	}
	return fmt.Errorf("invalid field type %q: must be one of %v", t, validFieldTypes)
}

// AssociationKind distinguishes single-valued from collection-valued
// relations.
type AssociationKind string

const (
	ToOne  AssociationKind = "to_one"
	ToMany AssociationKind = "to_many"
)

// ValidateAssociationKind returns an error if k is not a recognized kind.
func ValidateAssociationKind(k AssociationKind) error {
	switch k {
	case ToOne, ToMany:
		return nil
	}
	return fmt.Errorf("invalid association kind %q: must be one of [%s %s]", k, ToOne, ToMany)
}

// Field is a named scalar attribute of a record.
type Field struct {
	Name   string    `yaml:"name" json:"name"`
	Column string    `yaml:"column,omitempty" json:"column,omitempty"`
	Type   FieldType `yaml:"type,omitempty" json:"type,omitempty"`
}

// ColumnName returns the storage column, defaulting to the field name.
func (f Field) ColumnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// Association is a named relation from a record to one or more records of
// the target type.
//
// A to-one association is stored as a foreign key Column on the owning
// table. A to-many association is stored either in a JoinTable (JoinColumn
// references the owner, InverseColumn references the target) or as a
// foreign key MappedBy on the target table.
type Association struct {
	Name          string          `yaml:"name" json:"name"`
	Kind          AssociationKind `yaml:"kind" json:"kind"`
	Target        string          `yaml:"target" json:"target"`
	Column        string          `yaml:"column,omitempty" json:"column,omitempty"`
	JoinTable     string          `yaml:"join_table,omitempty" json:"join_table,omitempty"`
	JoinColumn    string          `yaml:"join_column,omitempty" json:"join_column,omitempty"`
	InverseColumn string          `yaml:"inverse_column,omitempty" json:"inverse_column,omitempty"`
	MappedBy      string          `yaml:"mapped_by,omitempty" json:"mapped_by,omitempty"`
}

// Entity is the field map of one record type.
type Entity struct {
	Name         string        `yaml:"name" json:"name"`
	Table        string        `yaml:"table,omitempty" json:"table,omitempty"`
	Identifier   []string      `yaml:"identifier,omitempty" json:"identifier,omitempty"`
	Description  string        `yaml:"description,omitempty" json:"description,omitempty"`
	Fields       []Field       `yaml:"fields" json:"fields"`
	Associations []Association `yaml:"associations,omitempty" json:"associations,omitempty"`
}

// TableName returns the storage table, defaulting to the entity name.
func (e *Entity) TableName() string {
	if e.Table != "" {
		return e.Table
	}
	return e.Name
}

// IdentifierFields returns the identifier field names, defaulting to "id".
func (e *Entity) IdentifierFields() []string {
	if len(e.Identifier) == 0 {
		return []string{"id"}
	}
	return e.Identifier
}

// Field looks up a plain field by name.
func (e *Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Association looks up an association by name.
func (e *Entity) Association(name string) (Association, bool) {
	for _, a := range e.Associations {
		if a.Name == name {
			return a, true
		}
	}
	return Association{}, false
}

// HasField reports whether name is a plain field.
func (e *Entity) HasField(name string) bool {
	_, ok := e.Field(name)
	return ok
}

// HasAssociation reports whether name is an association.
func (e *Entity) HasAssociation(name string) bool {
	_, ok := e.Association(name)
	return ok
}

// Has reports whether name is either a field or an association.
func (e *Entity) Has(name string) bool {
	return e.HasField(name) || e.HasAssociation(name)
}

// FieldNames returns the plain field names in declared order.
func (e *Entity) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	return names
}

// AssociationNames returns the association names in declared order.
func (e *Entity) AssociationNames() []string {
	names := make([]string, len(e.Associations))
	for i, a := range e.Associations {
		names[i] = a.Name
	}
	return names
}

// Available returns every field name followed by every association name.
func (e *Entity) Available() []string {
	return append(e.FieldNames(), e.AssociationNames()...)
}

// Validate checks the entity definition for structural problems. All
// problems are reported together.
func (e *Entity) Validate() error {
	var errs []error
	if e.Name == "" {
		errs = append(errs, errors.New("entity name is required"))
	}
	if len(e.Fields) == 0 {
		errs = append(errs, fmt.Errorf("entity %q: at least one field is required", e.Name))
	}

	seen := make(map[string]bool)
	for _, f := range e.Fields {
		if f.Name == "" {
			errs = append(errs, fmt.Errorf("entity %q: field name is required", e.Name))
			continue
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("entity %q: duplicate name %q", e.Name, f.Name))
		}
		seen[f.Name] = true
		if f.Type != "" {
			if err := ValidateFieldType(f.Type); err != nil {
				errs = append(errs, fmt.Errorf("entity %q field %q: %w", e.Name, f.Name, err))
			}
		}
	}

	for _, a := range e.Associations {
		if a.Name == "" {
			errs = append(errs, fmt.Errorf("entity %q: association name is required", e.Name))
			continue
		}
		if seen[a.Name] {
			errs = append(errs, fmt.Errorf("entity %q: duplicate name %q", e.Name, a.Name))
		}
		seen[a.Name] = true
		if err := ValidateAssociationKind(a.Kind); err != nil {
			errs = append(errs, fmt.Errorf("entity %q association %q: %w", e.Name, a.Name, err))
		}
		if a.Target == "" {
			errs = append(errs, fmt.Errorf("entity %q association %q: target is required", e.Name, a.Name))
		}
	}

	for _, id := range e.IdentifierFields() {
		if !e.HasField(id) {
			errs = append(errs, fmt.Errorf("entity %q: identifier %q is not a field", e.Name, id))
		}
	}

	return errors.Join(errs...)
}
