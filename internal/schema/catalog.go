package schema

import (
	"errors"
	"fmt"
)

// Catalog is the set of known entity types, keyed by name.
type Catalog struct {
	entities map[string]*Entity
	order    []string
}

// NewCatalog validates the given entities and indexes them by name.
// Association targets must refer to entities in the same catalog.
func NewCatalog(entities ...*Entity) (*Catalog, error) {
	c := &Catalog{entities: make(map[string]*Entity, len(entities))}

	var errs []error
	for _, e := range entities {
		if err := e.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := c.entities[e.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate entity %q", e.Name))
			continue
		}
		c.entities[e.Name] = e
		c.order = append(c.order, e.Name)
	}

	for _, name := range c.order {
		e := c.entities[name]
		for _, a := range e.Associations {
			if _, ok := c.entities[a.Target]; !ok {
				errs = append(errs, fmt.Errorf("entity %q association %q: unknown target %q", e.Name, a.Name, a.Target))
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

// Lookup returns the entity with the given name.
func (c *Catalog) Lookup(name string) (*Entity, bool) {
	e, ok := c.entities[name]
	return e, ok
}

// Entities returns all entities in registration order.
func (c *Catalog) Entities() []*Entity {
	out := make([]*Entity, len(c.order))
	for i, name := range c.order {
		out[i] = c.entities[name]
	}
	return out
}

// Names returns all entity names in registration order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
