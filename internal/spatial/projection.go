package spatial

import (
	"math"

	"github.com/golang/geo/r2"
)

const (
	radians = math.Pi / 180
	epsilon = 1e-6
)

// Projector maps a coordinate to a point in map space
type Projector interface {
	Project(lat, lon float64) (r2.Point, bool)
}

// conic is a conic equal-area (Albers) projection followed by a scale and
// translation
type conic struct {
	n, c, r0 float64
	rotate   float64 // longitude rotation, radians
	k        float64
	dx, dy   float64
}

// newConic builds the projection so that center (in rotated degrees) lands
// on translate
func newConic(parallels [2]float64, rotate float64, center [2]float64, k float64, translate r2.Point) conic {
	sy0 := math.Sin(parallels[0] * radians)
	n := (sy0 + math.Sin(parallels[1]*radians)) / 2
	c := 1 + sy0*(2*n-sy0)
	p := conic{n: n, c: c, r0: math.Sqrt(c) / n, rotate: rotate * radians, k: k}

	cx, cy := p.raw(center[0]*radians, center[1]*radians)
	p.dx = translate.X - k*cx
	p.dy = translate.Y + k*cy
	return p
}

func (p conic) raw(lambda, phi float64) (float64, float64) {
	r := math.Sqrt(p.c-2*p.n*math.Sin(phi)) / p.n
	lambda *= p.n
	return r * math.Sin(lambda), p.r0 - r*math.Cos(lambda)
}

func (p conic) project(lat, lon float64) r2.Point {
	lambda := lon*radians + p.rotate
	if lambda > math.Pi {
		lambda -= 2 * math.Pi
	} else if lambda < -math.Pi {
		lambda += 2 * math.Pi
	}
	x, y := p.raw(lambda, lat*radians)
	return r2.Point{X: p.dx + p.k*x, Y: p.dy - p.k*y}
}

// AlbersUSA is the composite projection of the United States: the lower 48
// states plus Alaska and Hawaii insets, each clipped to its own extent.
type AlbersUSA struct {
	parts   [3]conic
	extents [3]r2.Rect
}

// DefaultScale and DefaultTranslate fit a 960x500 canvas
const DefaultScale = 1070

// DefaultTranslate is the screen position of the lower-48 center
var DefaultTranslate = r2.Point{X: 480, Y: 250}

// NewAlbersUSA builds the composite projection for scale k and translate t
func NewAlbersUSA(k float64, t r2.Point) *AlbersUSA {
	x, y := t.X, t.Y
	a := &AlbersUSA{}

	a.parts[0] = newConic([2]float64{29.5, 45.5}, 96, [2]float64{-0.6, 38.7}, k, t)
	a.extents[0] = r2.RectFromPoints(
		r2.Point{X: x - 0.455*k, Y: y - 0.238*k},
		r2.Point{X: x + 0.455*k, Y: y + 0.238*k},
	)

	a.parts[1] = newConic([2]float64{55, 65}, 154, [2]float64{-2, 58.5}, k*0.35,
		r2.Point{X: x - 0.307*k, Y: y + 0.201*k})
	a.extents[1] = r2.RectFromPoints(
		r2.Point{X: x - 0.425*k + epsilon, Y: y + 0.120*k + epsilon},
		r2.Point{X: x - 0.214*k - epsilon, Y: y + 0.234*k - epsilon},
	)

	a.parts[2] = newConic([2]float64{8, 18}, 157, [2]float64{-3, 19.9}, k,
		r2.Point{X: x - 0.205*k, Y: y + 0.212*k})
	a.extents[2] = r2.RectFromPoints(
		r2.Point{X: x - 0.214*k + epsilon, Y: y + 0.166*k + epsilon},
		r2.Point{X: x - 0.115*k - epsilon, Y: y + 0.234*k - epsilon},
	)

	return a
}

// Project returns the map position of (lat, lon). The second result is false
// when the coordinate is invalid or falls outside all three extents.
func (a *AlbersUSA) Project(lat, lon float64) (r2.Point, bool) {
	if !ValidLatLng(lat, lon) {
		return r2.Point{}, false
	}
	for i, part := range a.parts {
		p := part.project(lat, lon)
		if a.extents[i].ContainsPoint(p) {
			return p, true
		}
	}
	return r2.Point{}, false
}
