// Package catalog holds the read-only set of properties that every ranking
// pass scores. It is loaded once at startup.
package catalog

import (
	"errors"
	"fmt"

	"properly/internal/model"
)

// ErrPropertyNotFound is returned when an id is not in the catalog
var ErrPropertyNotFound = errors.New("property not found")

// Catalog is an ordered, immutable collection of properties
type Catalog struct {
	properties []model.Property
	index      map[string]int
}

// New builds a catalog, rejecting duplicate ids and unknown property types
func New(properties []model.Property) (*Catalog, error) {
	c := &Catalog{
		properties: make([]model.Property, 0, len(properties)),
		index:      make(map[string]int, len(properties)),
	}

	for i, p := range properties {
		if p.ID == "" {
			return nil, fmt.Errorf("property at index %d has no id", i)
		}
		if _, dup := c.index[p.ID]; dup {
			return nil, fmt.Errorf("duplicate property id %q", p.ID)
		}
		if !p.PropertyType.Valid() {
			return nil, fmt.Errorf("property %q: unknown property type %q", p.ID, p.PropertyType)
		}
		if p.Amenities == nil {
			p.Amenities = []string{}
		}
		c.index[p.ID] = len(c.properties)
		c.properties = append(c.properties, p)
	}

	return c, nil
}

// All returns the properties in catalog order. The slice is a copy.
func (c *Catalog) All() []model.Property {
	out := make([]model.Property, len(c.properties))
	copy(out, c.properties)
	return out
}

// Get returns the property with the given id
func (c *Catalog) Get(id string) (model.Property, error) {
	i, ok := c.index[id]
	if !ok {
		return model.Property{}, fmt.Errorf("%w: %s", ErrPropertyNotFound, id)
	}
	return c.properties[i], nil
}

// Len returns the number of properties
func (c *Catalog) Len() int {
	return len(c.properties)
}
