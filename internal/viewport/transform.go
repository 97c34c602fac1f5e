// Package viewport tracks the pan/zoom state of the map.
//
// The view holds one affine transform, a translation plus a uniform scale K
// clamped to [MinScale, MaxScale]. Marker radii are divided by K so that
// markers keep the same on-screen size at every zoom level.
package viewport

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/jengzang/incidentmap/internal/models"
)

// State is the gesture state of the view
type State int

const (
	Idle State = iota
	Gesturing
)

func (s State) String() string {
	if s == Gesturing {
		return "gesturing"
	}
	return "idle"
}

// Options configures a View
type Options struct {
	MinScale        float64
	MaxScale        float64
	Radius          float64 // nominal marker radius at scale 1
	HoverMultiplier float64 // hovered radius = Radius * HoverMultiplier
	Width           float64 // canvas size in screen pixels; 0 means unbounded
	Height          float64
}

// View is the pan/zoom transform plus its gesture state
type View struct {
	opts  Options
	state State
	t     models.Transform
}

// New returns an idle view at the identity transform
func New(opts Options) *View {
	if opts.MinScale <= 0 {
		opts.MinScale = 1
	}
	if opts.MaxScale < opts.MinScale {
		opts.MaxScale = opts.MinScale
	}
	if opts.HoverMultiplier <= 0 {
		opts.HoverMultiplier = 1
	}
	v := &View{opts: opts}
	v.Reset()
	return v
}

// Begin enters the gesturing state
func (v *View) Begin() { v.state = Gesturing }

// End returns to idle
func (v *View) End() { v.state = Idle }

// State returns the gesture state
func (v *View) State() State { return v.state }

// Apply stores t with its scale clamped into range and returns the stored
// transform. It never fails; a zero or non-finite scale keeps the current one.
func (v *View) Apply(t models.Transform) models.Transform {
	k := t.K
	if math.IsNaN(k) || math.IsInf(k, 0) || k == 0 {
		k = v.t.K
		if k == 0 {
			k = 1
		}
	}
	k = math.Max(v.opts.MinScale, math.Min(v.opts.MaxScale, k))

	x, y := t.X, t.Y
	if math.IsNaN(x) || math.IsInf(x, 0) {
		x = v.t.X
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		y = v.t.Y
	}

	v.t = models.Transform{X: x, Y: y, K: k}
	return v.t
}

// Reset returns to the identity transform
func (v *View) Reset() models.Transform {
	v.state = Idle
	return v.Apply(models.Identity)
}

// Transform returns the current transform
func (v *View) Transform() models.Transform { return v.t }

// Radius is the nominal radius divided by the current scale
func (v *View) Radius() float64 {
	return v.opts.Radius / v.t.K
}

// HoverRadius is the enlarged hover radius, also zoom adjusted
func (v *View) HoverRadius() float64 {
	return v.opts.Radius * v.opts.HoverMultiplier / v.t.K
}

// FromScreen maps a screen point back into projected map coordinates by
// undoing the current transform
func (v *View) FromScreen(p r2.Point) r2.Point {
	return p.Sub(r2.Point{X: v.t.X, Y: v.t.Y}).Mul(1 / v.t.K)
}

// InCanvas reports whether a screen point lies on the canvas
func (v *View) InCanvas(p r2.Point) bool {
	if v.opts.Width <= 0 || v.opts.Height <= 0 {
		return true
	}
	canvas := r2.RectFromPoints(r2.Point{}, r2.Point{X: v.opts.Width, Y: v.opts.Height})
	return canvas.ContainsPoint(p)
}
