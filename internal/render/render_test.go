package render

import (
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/incidentmap/internal/models"
	"github.com/jengzang/incidentmap/internal/spatial"
	"github.com/jengzang/incidentmap/internal/viewport"
)

// fixedColors returns whatever color is currently set
type fixedColors struct{ hex string }

func (c *fixedColors) HexFor(*models.Record) string { return c.hex }

func rec(key string, lat, lon float64) models.Record {
	return models.Record{Case: key, Latitude: lat, Longitude: lon}
}

func records(keys ...string) []models.Record {
	out := make([]models.Record, len(keys))
	for i, k := range keys {
		out[i] = rec(k, 38.7+float64(i), -96.6)
	}
	return out
}

func markerKeys(ms []models.Marker) []string {
	keys := make([]string, len(ms))
	for i, m := range ms {
		keys[i] = m.Key
	}
	return keys
}

func newRenderer(colors Colorer) (*Renderer, *viewport.View) {
	view := viewport.New(viewport.Options{MinScale: 1, MaxScale: 8, Radius: 4, HoverMultiplier: 2})
	proj := spatial.NewAlbersUSA(spatial.DefaultScale, spatial.DefaultTranslate)
	r := NewRenderer(proj, view, colors, Options{FadeIn: 200 * time.Millisecond, FadeOut: 500 * time.Millisecond})
	return r, view
}

func TestReconcileThreeWay(t *testing.T) {
	r, _ := newRenderer(&fixedColors{hex: "#4682b4"})

	first := r.Reconcile(records("A", "B", "C"))
	assert.Equal(t, []string{"A", "B", "C"}, markerKeys(first.Create))
	assert.Empty(t, first.Update)
	assert.Empty(t, first.Remove)

	second := r.Reconcile(records("B", "C", "D"))
	assert.Equal(t, []string{"D"}, markerKeys(second.Create))
	assert.Equal(t, []string{"B", "C"}, markerKeys(second.Update))
	assert.Equal(t, []string{"A"}, second.Remove)
	assert.Equal(t, []string{"B", "C", "D"}, markerKeys(r.Markers()))
}

func TestReconcileEmptySubsetRemovesAll(t *testing.T) {
	r, _ := newRenderer(&fixedColors{hex: "#4682b4"})
	r.Reconcile(records("A", "B"))

	diff := r.Reconcile(nil)
	assert.Empty(t, diff.Create)
	assert.Empty(t, diff.Update)
	assert.Equal(t, []string{"A", "B"}, diff.Remove)
	assert.Zero(t, r.Len())
}

func TestColorChangeUpdatesWithoutRecreating(t *testing.T) {
	colors := &fixedColors{hex: "#4682b4"}
	r, _ := newRenderer(colors)
	first := r.Reconcile(records("A", "B"))

	colors.hex = "#bd0026"
	diff := r.Reconcile(records("A", "B"))
	assert.Empty(t, diff.Create)
	assert.Empty(t, diff.Remove)
	require.Len(t, diff.Update, 2)
	for i, m := range diff.Update {
		assert.Equal(t, "#bd0026", m.Color)
		assert.Equal(t, first.Create[i].X, m.X, "position is fixed per record")
		assert.Equal(t, first.Create[i].Y, m.Y)
	}
}

func TestZoomRefreshesRadius(t *testing.T) {
	r, view := newRenderer(&fixedColors{hex: "#4682b4"})
	first := r.Reconcile(records("A"))
	assert.Equal(t, 4.0, first.Create[0].Radius)

	view.Apply(models.Transform{K: 4})
	diff := r.Reconcile(records("A"))
	assert.Empty(t, diff.Create)
	require.Len(t, diff.Update, 1)
	assert.Equal(t, 1.0, diff.Update[0].Radius)
}

func TestRecordWithoutPositionIsNotProjected(t *testing.T) {
	r, _ := newRenderer(&fixedColors{hex: "#4682b4"})
	diff := r.Reconcile([]models.Record{rec("A", models.Missing(), models.Missing())})
	require.Len(t, diff.Create, 1)
	assert.False(t, diff.Create[0].Projected)
}

func TestHoverInAndOut(t *testing.T) {
	r, _ := newRenderer(&fixedColors{hex: "#4682b4"})
	visible := records("A", "B")
	r.Reconcile(visible)

	diff, tip, ok := r.HoverIn(&visible[0], r2.Point{X: 100, Y: 100})
	require.True(t, ok)
	require.Len(t, diff.Update, 1)
	assert.Equal(t, 8.0, diff.Update[0].Radius)
	assert.True(t, diff.Update[0].Hovered)
	require.NotNil(t, tip)
	assert.Equal(t, 1.0, tip.Opacity)
	assert.Equal(t, int64(200), tip.FadeMillis)
	assert.Equal(t, 105.0, tip.X)
	assert.Equal(t, 72.0, tip.Y)

	// moving to another marker reverts the first
	diff, _, ok = r.HoverIn(&visible[1], r2.Point{})
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, markerKeys(diff.Update))
	assert.Equal(t, 4.0, diff.Update[0].Radius)
	assert.Equal(t, "B", r.Hovered())

	diff, tip = r.HoverOut()
	require.Len(t, diff.Update, 1)
	assert.Equal(t, 4.0, diff.Update[0].Radius)
	assert.Equal(t, 0.0, tip.Opacity)
	assert.Equal(t, int64(500), tip.FadeMillis)
	assert.Empty(t, r.Hovered())
}

func TestHoverSurvivesFilterUpdate(t *testing.T) {
	r, _ := newRenderer(&fixedColors{hex: "#4682b4"})
	visible := records("A", "B")
	r.Reconcile(visible)
	_, _, ok := r.HoverIn(&visible[1], r2.Point{})
	require.True(t, ok)

	diff := r.Reconcile(records("A", "B")[1:])
	assert.Equal(t, []string{"A"}, diff.Remove)
	require.Len(t, diff.Update, 1)
	assert.True(t, diff.Update[0].Hovered)
	assert.Equal(t, 8.0, diff.Update[0].Radius)
}

func TestHoverUnknownKey(t *testing.T) {
	r, _ := newRenderer(&fixedColors{hex: "#4682b4"})
	missing := rec("Z", 40, -100)
	_, _, ok := r.HoverIn(&missing, r2.Point{})
	assert.False(t, ok)

	diff, tip := r.HoverOut()
	assert.True(t, diff.Empty())
	assert.Nil(t, tip)
}

func TestHitTest(t *testing.T) {
	view := viewport.New(viewport.Options{MinScale: 1, MaxScale: 8, Radius: 4, HoverMultiplier: 2, Width: 750, Height: 450})
	proj := spatial.NewAlbersUSA(spatial.DefaultScale, spatial.DefaultTranslate)
	r := NewRenderer(proj, view, &fixedColors{hex: "#4682b4"}, Options{})
	visible := records("A", "B")
	r.Reconcile(visible)

	// A sits on the projection center (480, 250)
	key, ok := r.HitTest(r2.Point{X: 483, Y: 250})
	require.True(t, ok)
	assert.Equal(t, "A", key)

	_, ok = r.HitTest(r2.Point{X: 100, Y: 100})
	assert.False(t, ok)
	_, ok = r.HitTest(r2.Point{X: 900, Y: 250})
	assert.False(t, ok, "off canvas")

	// at K=2 the marker is 2 map units wide, still 4 pixels on screen
	view.Apply(models.Transform{X: -480, Y: -250, K: 2})
	r.Reconcile(visible)
	key, ok = r.HitTest(r2.Point{X: 483, Y: 250})
	require.True(t, ok)
	assert.Equal(t, "A", key)
	_, ok = r.HitTest(r2.Point{X: 486, Y: 250})
	assert.False(t, ok)
}

func TestSnapshotAndClear(t *testing.T) {
	r, _ := newRenderer(&fixedColors{hex: "#4682b4"})
	r.Reconcile(records("A", "B"))

	snap := r.Snapshot()
	assert.Equal(t, []string{"A", "B"}, markerKeys(snap.Create))

	cleared := r.Clear()
	assert.Equal(t, []string{"A", "B"}, cleared.Remove)
	assert.Zero(t, r.Len())
}
