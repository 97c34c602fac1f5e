package repository

import (
	"errors"
	"fmt"
	"math"

	"github.com/jengzang/incidentmap/internal/models"
)

// ErrDuplicateCase is returned when two records share a case key
var ErrDuplicateCase = errors.New("duplicate case key")

// RecordStore holds the loaded dataset. It is immutable after construction:
// ranges and option lists are computed once here and never change.
type RecordStore struct {
	records []models.Record
	index   map[string]int
	ranges  map[string]models.Range
	options map[string][]string
}

// NewRecordStore builds the store and its per-attribute ranges and options.
// declared gives the option order of nominal attributes; values observed in
// the data but not declared are appended in order of first appearance.
func NewRecordStore(records []models.Record, declared map[string][]string) (*RecordStore, error) {
	s := &RecordStore{
		records: records,
		index:   make(map[string]int, len(records)),
		ranges:  make(map[string]models.Range),
		options: make(map[string][]string),
	}

	for i := range records {
		key := records[i].Case
		if key == "" {
			return nil, fmt.Errorf("record %d has an empty case key", i)
		}
		if _, exists := s.index[key]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCase, key)
		}
		s.index[key] = i
	}

	for _, attr := range models.Filterable {
		switch attr.Kind {
		case models.Quantitative:
			s.ranges[attr.Name] = computeRange(records, attr.Name)
		case models.Nominal:
			s.options[attr.Name] = computeOptions(records, attr.Name, declared[attr.Name])
		}
	}

	return s, nil
}

// computeRange returns the [min, max] of present values; missing values are skipped
func computeRange(records []models.Record, attr string) models.Range {
	r := models.Range{Min: math.Inf(1), Max: math.Inf(-1)}
	for i := range records {
		v, ok := records[i].Number(attr)
		if !ok {
			continue
		}
		r.Min = math.Min(r.Min, v)
		r.Max = math.Max(r.Max, v)
		r.Valid = true
	}
	if !r.Valid {
		return models.Range{}
	}
	return r
}

func computeOptions(records []models.Record, attr string, declared []string) []string {
	seen := make(map[string]bool)
	var options []string
	for _, v := range declared {
		if v == models.AllOption || seen[v] {
			continue
		}
		seen[v] = true
		options = append(options, v)
	}
	for i := range records {
		v := records[i].Category(attr)
		if v == models.AllOption || seen[v] {
			continue
		}
		seen[v] = true
		options = append(options, v)
	}
	return options
}

// Records returns the dataset in load order. Callers must not modify it.
func (s *RecordStore) Records() []models.Record {
	return s.records
}

// Len returns the number of records
func (s *RecordStore) Len() int {
	return len(s.records)
}

// Lookup finds a record by case key
func (s *RecordStore) Lookup(key string) (models.Record, bool) {
	i, ok := s.index[key]
	if !ok {
		return models.Record{}, false
	}
	return s.records[i], true
}

// Range returns the full-dataset range of a quantitative attribute
func (s *RecordStore) Range(attr string) (models.Range, bool) {
	r, ok := s.ranges[attr]
	return r, ok
}

// Options returns the declared option order of a nominal attribute, without
// the "All" sentinel
func (s *RecordStore) Options(attr string) []string {
	opts, ok := s.options[attr]
	if !ok {
		return nil
	}
	out := make([]string, len(opts))
	copy(out, opts)
	return out
}

// Ranges returns a copy of every quantitative range
func (s *RecordStore) Ranges() map[string]models.Range {
	out := make(map[string]models.Range, len(s.ranges))
	for k, v := range s.ranges {
		out[k] = v
	}
	return out
}
