package filter

import (
	"errors"
	"fmt"

	"github.com/jengzang/incidentmap/internal/models"
)

var (
	// ErrUnknownAttribute is returned for attributes that are not filterable
	ErrUnknownAttribute = errors.New("unknown filter attribute")
	// ErrKindMismatch is returned when a predicate kind does not match its attribute
	ErrKindMismatch = errors.New("predicate kind does not match attribute")
)

// Catalog is what a query needs to know about the dataset
type Catalog interface {
	Range(attr string) (models.Range, bool)
}

// Query maps every filterable attribute to exactly one predicate
type Query struct {
	order []string
	preds map[string]Predicate
}

// NewQuery returns the default query: the full range for every quantitative
// attribute and All for every nominal one.
func NewQuery(catalog Catalog) *Query {
	q := &Query{preds: make(map[string]Predicate, len(models.Filterable))}
	for _, attr := range models.Filterable {
		q.order = append(q.order, attr.Name)
		switch attr.Kind {
		case models.Quantitative:
			r, _ := catalog.Range(attr.Name)
			q.preds[attr.Name] = FullRange(attr.Name, r)
		case models.Nominal:
			q.preds[attr.Name] = All(attr.Name)
		}
	}
	return q
}

// Set replaces the predicate of p's attribute
func (q *Query) Set(p Predicate) error {
	attr, ok := models.LookupAttribute(p.Attribute())
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAttribute, p.Attribute())
	}
	if attr.Kind != p.Kind() {
		return fmt.Errorf("%w: %s is %s", ErrKindMismatch, attr.Name, attr.Kind)
	}
	q.preds[attr.Name] = p
	return nil
}

// Get returns the predicate of attr
func (q *Query) Get(attr string) (Predicate, bool) {
	p, ok := q.preds[attr]
	return p, ok
}

// Nominal returns the nominal predicate of attr, or All when absent
func (q *Query) Nominal(attr string) NominalPredicate {
	if p, ok := q.preds[attr].(NominalPredicate); ok {
		return p
	}
	return All(attr)
}

// Predicates returns the predicates in attribute order
func (q *Query) Predicates() []Predicate {
	out := make([]Predicate, 0, len(q.order))
	for _, name := range q.order {
		out = append(out, q.preds[name])
	}
	return out
}

// Clone returns an independent copy. Predicates are values and are never
// mutated in place, so sharing them is safe.
func (q *Query) Clone() *Query {
	c := &Query{
		order: append([]string(nil), q.order...),
		preds: make(map[string]Predicate, len(q.preds)),
	}
	for k, v := range q.preds {
		c.preds[k] = v
	}
	return c
}
