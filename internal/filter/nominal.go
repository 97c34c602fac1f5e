package filter

import (
	"strings"

	"github.com/jengzang/incidentmap/internal/models"
)

// NominalPredicate is either AllSelected (no restriction) or a subset of
// admissible category values. Build it with All, Subset or Transition; the
// zero value of a subset with no values rejects every record.
type NominalPredicate struct {
	Attr   string
	all    bool
	values []string
	set    map[string]struct{}
}

// All returns the unrestricted predicate
func All(attr string) NominalPredicate {
	return NominalPredicate{Attr: attr, all: true}
}

// Subset returns a predicate admitting exactly values. Use Transition when
// the selection comes from a widget.
func Subset(attr string, values ...string) NominalPredicate {
	p := NominalPredicate{Attr: attr, set: make(map[string]struct{}, len(values))}
	for _, v := range values {
		if _, dup := p.set[v]; dup {
			continue
		}
		p.set[v] = struct{}{}
		p.values = append(p.values, v)
	}
	return p
}

func (p NominalPredicate) Attribute() string          { return p.Attr }
func (p NominalPredicate) Kind() models.AttributeKind { return models.Nominal }

// IsAll reports whether the predicate is the "All" sentinel
func (p NominalPredicate) IsAll() bool { return p.all }

// Values returns the selected values in selection order, or [All]
func (p NominalPredicate) Values() []string {
	if p.all {
		return []string{models.AllOption}
	}
	out := make([]string, len(p.values))
	copy(out, p.values)
	return out
}

// Selected reports whether value is part of the selection
func (p NominalPredicate) Selected(value string) bool {
	if value == models.AllOption {
		return p.all
	}
	_, ok := p.set[value]
	return ok && !p.all
}

// Match admits every record under "All", otherwise members of the set only.
// An empty subset admits nothing.
func (p NominalPredicate) Match(r *models.Record) bool {
	if p.all {
		return true
	}
	_, ok := p.set[r.Category(p.Attr)]
	return ok
}

func (p NominalPredicate) String() string {
	return p.Attr + " in {" + strings.Join(p.Values(), ", ") + "}"
}

// Transition is the single state-transition function for nominal widgets.
// Given the previous predicate and the values the widget now reports:
//   - nothing selected re-selects All;
//   - All newly selected clears every other value;
//   - another value selected while All was active drops All;
//   - All alone stays All.
func Transition(prev NominalPredicate, requested []string) NominalPredicate {
	hasAll := false
	var others []string
	for _, v := range requested {
		if v == models.AllOption {
			hasAll = true
			continue
		}
		others = append(others, v)
	}

	switch {
	case len(others) == 0:
		return All(prev.Attr)
	case hasAll && !prev.all:
		return All(prev.Attr)
	default:
		return Subset(prev.Attr, others...)
	}
}

// Toggle flips one option the way a click on a multi-select list does
func Toggle(prev NominalPredicate, value string) NominalPredicate {
	if value == models.AllOption {
		if prev.all {
			return prev
		}
		return All(prev.Attr)
	}

	var next []string
	if !prev.all {
		next = prev.Values()
	}
	if prev.Selected(value) {
		next = remove(next, value)
	} else {
		next = append(next, value)
	}
	return Transition(prev, next)
}

func remove(values []string, v string) []string {
	out := values[:0]
	for _, x := range values {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
