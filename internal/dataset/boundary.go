package dataset

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// Boundary is the static polygon data drawn underneath the markers. The core
// never reads it; it is handed through to the presentation layer.
type Boundary struct {
	Features *geojson.FeatureCollection
	Bound    orb.Bound
}

// ParseBoundary decodes a GeoJSON FeatureCollection and simplifies its
// geometry with Douglas-Peucker when tolerance > 0 (in degrees).
func ParseBoundary(data []byte, tolerance float64) (*Boundary, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode boundary geojson: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("boundary geojson has no features")
	}

	var simplifier *simplify.DouglasPeuckerSimplifier
	if tolerance > 0 {
		simplifier = simplify.DouglasPeucker(tolerance)
	}

	b := &Boundary{Features: fc}
	for i, f := range fc.Features {
		if f.Geometry == nil {
			return nil, fmt.Errorf("boundary feature %d has no geometry", i)
		}
		if simplifier != nil {
			f.Geometry = simplifier.Simplify(f.Geometry)
		}
		if i == 0 {
			b.Bound = f.Geometry.Bound()
		} else {
			b.Bound = b.Bound.Union(f.Geometry.Bound())
		}
	}

	return b, nil
}

// Contains reports whether the point lies inside any polygon feature
func (b *Boundary) Contains(lat, lon float64) bool {
	p := orb.Point{lon, lat}
	if !b.Bound.Contains(p) {
		return false
	}
	for _, f := range b.Features.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			if planar.PolygonContains(g, p) {
				return true
			}
		case orb.MultiPolygon:
			if planar.MultiPolygonContains(g, p) {
				return true
			}
		}
	}
	return false
}

// MarshalJSON returns the (simplified) feature collection
func (b *Boundary) MarshalJSON() ([]byte, error) {
	return b.Features.MarshalJSON()
}
