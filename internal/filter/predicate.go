// Package filter holds the filter predicates, the filter query and the engine
// that evaluates a query against the record store.
package filter

import (
	"math"
	"strconv"

	"github.com/jengzang/incidentmap/internal/models"
)

// Predicate is the admissibility rule for one attribute
type Predicate interface {
	Attribute() string
	Kind() models.AttributeKind
	Match(r *models.Record) bool
}

// RangePredicate admits records whose value lies in [Low, High]. With
// OpenHigh set the upper bound is ignored ("Low or greater"). Full marks the
// untouched default predicate, which applies no bound at all.
type RangePredicate struct {
	Attr     string  `json:"attribute"`
	Low      float64 `json:"low"`
	High     float64 `json:"high"`
	OpenHigh bool    `json:"open_high"`
	Full     bool    `json:"full"`
}

// FullRange returns the default predicate spanning r. It admits every
// record, including those whose value is missing.
func FullRange(attr string, r models.Range) RangePredicate {
	if !r.Valid {
		return RangePredicate{Attr: attr, High: math.Inf(1), OpenHigh: true, Full: true}
	}
	return RangePredicate{Attr: attr, Low: r.Min, High: r.Max, Full: true}
}

// NewRange returns the inclusive predicate [low, high]
func NewRange(attr string, low, high float64) RangePredicate {
	return RangePredicate{Attr: attr, Low: low, High: high}
}

// AtLeast returns the open-ended predicate [low, +inf)
func AtLeast(attr string, low float64) RangePredicate {
	return RangePredicate{Attr: attr, Low: low, High: math.Inf(1), OpenHigh: true}
}

func (p RangePredicate) Attribute() string          { return p.Attr }
func (p RangePredicate) Kind() models.AttributeKind { return models.Quantitative }

// Match compares the record's value (its year for dates). A missing value
// never satisfies a bound.
func (p RangePredicate) Match(r *models.Record) bool {
	if p.Full {
		return true
	}
	v, ok := r.Number(p.Attr)
	if !ok {
		return false
	}
	if v < p.Low {
		return false
	}
	return p.OpenHigh || v <= p.High
}

func (p RangePredicate) String() string {
	if p.Full {
		return p.Attr + " (any)"
	}
	low := strconv.FormatFloat(p.Low, 'f', -1, 64)
	if p.OpenHigh {
		return p.Attr + " >= " + low
	}
	return p.Attr + " in [" + low + ", " + strconv.FormatFloat(p.High, 'f', -1, 64) + "]"
}
