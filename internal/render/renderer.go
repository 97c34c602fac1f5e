package render

import (
	"time"

	"github.com/golang/geo/r2"

	"github.com/jengzang/incidentmap/internal/models"
	"github.com/jengzang/incidentmap/internal/spatial"
	"github.com/jengzang/incidentmap/internal/viewport"
)

// Colorer supplies the current fill color of a record
type Colorer interface {
	HexFor(r *models.Record) string
}

// Options configures a Renderer
type Options struct {
	JitterMeters float64       // 0 disables jitter
	FadeIn       time.Duration // tooltip fade-in
	FadeOut      time.Duration // tooltip fade-out
}

// tooltipOffset places the tooltip right of and above the pointer
var tooltipOffset = r2.Point{X: 5, Y: -28}

// Renderer owns the Rendered Marker Set and the hover state
type Renderer struct {
	proj   spatial.Projector
	view   *viewport.View
	colors Colorer
	opts   Options

	set     *MarkerSet
	hovered string
}

// NewRenderer returns a renderer with no markers
func NewRenderer(proj spatial.Projector, view *viewport.View, colors Colorer, opts Options) *Renderer {
	return &Renderer{
		proj:   proj,
		view:   view,
		colors: colors,
		opts:   opts,
		set:    NewMarkerSet(),
	}
}

// Markers returns the rendered markers in render order
func (r *Renderer) Markers() []models.Marker { return r.set.Markers() }

// Len returns the number of rendered markers
func (r *Renderer) Len() int { return r.set.Len() }

// Hovered returns the hovered key, or "" when nothing is hovered
func (r *Renderer) Hovered() string { return r.hovered }

// Reconcile brings the marker set in line with visible and returns the
// instructions that do the same to a display. Persisting markers keep their
// position and hover state; only color and radius are refreshed.
func (r *Renderer) Reconcile(visible []models.Record) models.RenderDiff {
	kd := Diff(r.set, visible)

	index := make(map[string]*models.Record, len(visible))
	for i := range visible {
		if _, ok := index[visible[i].Case]; !ok {
			index[visible[i].Case] = &visible[i]
		}
	}

	diff := models.RenderDiff{
		Create: make([]models.Marker, 0, len(kd.Create)),
		Update: make([]models.Marker, 0, len(kd.Update)),
		Remove: kd.Remove,
	}
	if diff.Remove == nil {
		diff.Remove = []string{}
	}

	created := make(map[string]*models.Marker, len(kd.Create))
	for _, key := range kd.Create {
		m := r.create(index[key])
		created[key] = m
		diff.Create = append(diff.Create, *m)
	}
	for _, key := range kd.Update {
		m := r.set.ref(key)
		r.restyle(m, index[key])
		diff.Update = append(diff.Update, *m)
	}

	for _, key := range kd.Remove {
		if key == r.hovered {
			r.hovered = ""
		}
	}

	order := make([]string, 0, len(index))
	for i := range visible {
		key := visible[i].Case
		if index[key] == &visible[i] {
			order = append(order, key)
		}
	}
	r.set.replace(order, created, kd.Remove)
	return diff
}

// Snapshot returns the whole marker set as creates, for a display that has
// nothing drawn yet
func (r *Renderer) Snapshot() models.RenderDiff {
	return models.RenderDiff{Create: r.set.Markers(), Update: []models.Marker{}, Remove: []string{}}
}

// Clear removes every marker
func (r *Renderer) Clear() models.RenderDiff {
	keys := r.set.Keys()
	r.set.replace(nil, nil, keys)
	r.hovered = ""
	return models.RenderDiff{Create: []models.Marker{}, Update: []models.Marker{}, Remove: keys}
}

func (r *Renderer) create(rec *models.Record) *models.Marker {
	m := &models.Marker{Key: rec.Case}
	if rec.HasPosition() {
		lat, lon := spatial.Jitter(rec.Case, rec.Latitude, rec.Longitude, r.opts.JitterMeters)
		if p, ok := r.proj.Project(lat, lon); ok {
			m.X, m.Y, m.Projected = p.X, p.Y, true
		}
	}
	r.restyle(m, rec)
	return m
}

func (r *Renderer) restyle(m *models.Marker, rec *models.Record) {
	m.Color = r.colors.HexFor(rec)
	if m.Hovered {
		m.Radius = r.view.HoverRadius()
	} else {
		m.Radius = r.view.Radius()
	}
}
