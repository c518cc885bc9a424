package export

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	"github.com/ALT-F4-LLC/ferry/internal/record"
)

// FieldExtractor is the default transformer. It fills each row key from the
// matching record field, normalizing plain values and reducing associations
// to the identifiers of the related records.
type FieldExtractor struct {
	meta       MetadataProvider
	normalizer Normalizer
}

// NewFieldExtractor returns an extractor that resolves field maps through
// meta.
func NewFieldExtractor(meta MetadataProvider) *FieldExtractor {
	return &FieldExtractor{meta: meta}
}

// Process implements Transformer. Keys that name neither a field nor an
// association are left untouched unless opts.StrictFields is set.
func (x *FieldExtractor) Process(ctx context.Context, rec Record, row *record.Row, opts Options) (*record.Row, error) {
	entity, err := x.meta.Metadata(rec.Type())
	if err != nil {
		return nil, err
	}

	for _, key := range row.Keys() {
		switch {
		case entity.HasAssociation(key):
			v, err := rec.Value(key)
			if err != nil {
				return nil, fmt.Errorf("reading %s.%s: %w", entity.Name, key, err)
			}
			id, err := x.associationIdentifiers(v)
			if err != nil {
				return nil, fmt.Errorf("resolving %s.%s: %w", entity.Name, key, err)
			}
			row.Set(key, id)

		case entity.HasField(key):
			v, err := rec.Value(key)
			if err != nil {
				return nil, fmt.Errorf("reading %s.%s: %w", entity.Name, key, err)
			}
			row.Set(key, x.normalizer.Normalize(v, opts))

		case opts.StrictFields:
			return nil, &ValidationError{
				Entity:    entity.Name,
				Field:     key,
				Context:   "extraction",
				Available: entity.Available(),
			}
		}
	}
	return row, nil
}

// associationIdentifiers reduces a to-one value to a single identifier and
// a to-many value to the identifiers of its record elements.
func (x *FieldExtractor) associationIdentifiers(v any) (any, error) {
	switch rel := v.(type) {
	case nil:
		return nil, nil
	case Record:
		if isNil(rel) {
			return nil, nil
		}
		return x.identifier(rel)
	case []Record:
		ids := make([]any, 0, len(rel))
		for _, r := range rel {
			if isNil(r) {
				continue
			}
			id, err := x.identifier(r)
			if err != nil {
				return nil, err
			}
			if id != nil {
				ids = append(ids, id)
			}
		}
		return ids, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, nil
	}
	ids := make([]any, 0, rv.Len())
	for i := range rv.Len() {
		r, ok := rv.Index(i).Interface().(Record)
		if !ok || isNil(r) {
			continue
		}
		id, err := x.identifier(r)
		if err != nil {
			return nil, err
		}
		if id != nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// identifier returns the first identifier component of rec, as an integer
// when it is one and as a string otherwise. Non-scalar components yield nil.
func (x *FieldExtractor) identifier(rec Record) (any, error) {
	entity, err := x.meta.Metadata(rec.Type())
	if err != nil {
		return nil, err
	}
	ids := entity.IdentifierFields()
	v, err := rec.Value(ids[0])
	if err != nil {
		return nil, fmt.Errorf("reading identifier of %s: %w", entity.Name, err)
	}
	return scalarIdentifier(v), nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func scalarIdentifier(v any) any {
	switch id := v.(type) {
	case nil:
		return nil
	case int:
		return id
	case int8, int16, int32, int64:
		return reflect.ValueOf(id).Int()
	case uint, uint8, uint16, uint32, uint64:
		return reflect.ValueOf(id).Uint()
	case string:
		return id
	case []byte:
		return string(id)
	case bool:
		return strconv.FormatBool(id)
	case float32:
		return strconv.FormatFloat(float64(id), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case fmt.Stringer:
		return id.String()
	}
	return nil
}
