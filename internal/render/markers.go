// Package render keeps the Rendered Marker Set and reconciles it against each
// new visible subset by record key.
//
// A marker's position is computed exactly once, when its key first enters
// the visible subset. Later passes only refresh color and radius, so a
// marker is never recreated because the color attribute or the zoom changed.
package render

import (
	"github.com/jengzang/incidentmap/internal/models"
)

// MarkerSet maps record keys to marker state, remembering render order
type MarkerSet struct {
	order   []string
	markers map[string]*models.Marker
}

// NewMarkerSet returns an empty set
func NewMarkerSet() *MarkerSet {
	return &MarkerSet{markers: make(map[string]*models.Marker)}
}

// Len returns the number of rendered markers
func (s *MarkerSet) Len() int { return len(s.order) }

// Has reports whether key is rendered
func (s *MarkerSet) Has(key string) bool {
	_, ok := s.markers[key]
	return ok
}

// Get returns a copy of the marker for key
func (s *MarkerSet) Get(key string) (models.Marker, bool) {
	m, ok := s.markers[key]
	if !ok {
		return models.Marker{}, false
	}
	return *m, true
}

// Keys returns the rendered keys in render order
func (s *MarkerSet) Keys() []string {
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

// Markers returns copies of all markers in render order
func (s *MarkerSet) Markers() []models.Marker {
	out := make([]models.Marker, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, *s.markers[k])
	}
	return out
}

func (s *MarkerSet) ref(key string) *models.Marker {
	return s.markers[key]
}

// replace installs the new render order and drops removed keys
func (s *MarkerSet) replace(order []string, created map[string]*models.Marker, removed []string) {
	for _, k := range removed {
		delete(s.markers, k)
	}
	for k, m := range created {
		s.markers[k] = m
	}
	s.order = order
}
