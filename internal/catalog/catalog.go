// Package catalog holds the canonical registry of standardized lab
// parameters. Every mapped value must resolve to one of its entries.
package catalog

import (
	"sort"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/entity"
)

// Catalog is an immutable, key-indexed view over the parameter
// definitions. Safe for concurrent use.
type Catalog struct {
	params []entity.StandardParameter
	byKey  map[string]*entity.StandardParameter
}

// New builds the catalog from the built-in definitions.
func New() *Catalog {
	params := parameterDefinitions()
	c := &Catalog{
		params: params,
		byKey:  make(map[string]*entity.StandardParameter, len(params)),
	}
	for i := range c.params {
		if c.params[i].Kind == "" {
			c.params[i].Kind = entity.ValueKindNumeric
		}
		c.byKey[c.params[i].Key] = &c.params[i]
	}
	return c
}

// Lookup returns the parameter for a canonical key.
func (c *Catalog) Lookup(key string) (*entity.StandardParameter, bool) {
	p, ok := c.byKey[key]
	return p, ok
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.params)
}

// All returns every parameter in definition order.
func (c *Catalog) All() []entity.StandardParameter {
	out := make([]entity.StandardParameter, len(c.params))
	copy(out, c.params)
	return out
}

// ByCategory returns the parameters of one category in definition order.
func (c *Catalog) ByCategory(cat constants.ParameterCategory) []entity.StandardParameter {
	var out []entity.StandardParameter
	for _, p := range c.params {
		if p.Category == cat {
			out = append(out, p)
		}
	}
	return out
}

// ForTestType returns the parameters of one specimen namespace.
func (c *Catalog) ForTestType(tt constants.TestType) []entity.StandardParameter {
	var out []entity.StandardParameter
	for _, p := range c.params {
		if p.Category.TestType() == tt {
			out = append(out, p)
		}
	}
	return out
}

// Keys returns all canonical keys, sorted.
func (c *Catalog) Keys() []string {
	out := make([]string, 0, len(c.params))
	for _, p := range c.params {
		out = append(out, p.Key)
	}
	sort.Strings(out)
	return out
}
