package render

import (
	"github.com/golang/geo/r2"

	"github.com/jengzang/incidentmap/internal/models"
)

// HoverIn enlarges the marker for rec and returns the tooltip shown near
// pointer. A previously hovered marker is reverted first. ok is false when
// rec has no rendered marker.
func (r *Renderer) HoverIn(rec *models.Record, pointer r2.Point) (diff models.RenderDiff, tip *models.Tooltip, ok bool) {
	m := r.set.ref(rec.Case)
	if m == nil {
		return models.RenderDiff{}, nil, false
	}

	if r.hovered != "" && r.hovered != rec.Case {
		if prev := r.set.ref(r.hovered); prev != nil {
			prev.Hovered = false
			prev.Radius = r.view.Radius()
			diff.Update = append(diff.Update, *prev)
		}
	}

	m.Hovered = true
	m.Radius = r.view.HoverRadius()
	r.hovered = rec.Case
	diff.Update = append(diff.Update, *m)

	at := pointer.Add(tooltipOffset)
	tip = &models.Tooltip{
		Key:        rec.Case,
		Lines:      rec.TooltipLines(),
		X:          at.X,
		Y:          at.Y,
		Opacity:    1,
		FadeMillis: r.opts.FadeIn.Milliseconds(),
	}
	return diff, tip, true
}

// HoverOut reverts the hovered marker and fades the tooltip out. With nothing
// hovered it returns an empty diff and no tooltip.
func (r *Renderer) HoverOut() (models.RenderDiff, *models.Tooltip) {
	if r.hovered == "" {
		return models.RenderDiff{}, nil
	}
	key := r.hovered
	r.hovered = ""

	var diff models.RenderDiff
	if m := r.set.ref(key); m != nil {
		m.Hovered = false
		m.Radius = r.view.Radius()
		diff.Update = append(diff.Update, *m)
	}
	return diff, &models.Tooltip{
		Key:        key,
		Opacity:    0,
		FadeMillis: r.opts.FadeOut.Milliseconds(),
	}
}

// HitTest returns the key of the topmost marker under a screen pointer.
// Pointers off the canvas hit nothing.
func (r *Renderer) HitTest(pointer r2.Point) (string, bool) {
	if !r.view.InCanvas(pointer) {
		return "", false
	}
	p := r.view.FromScreen(pointer)
	markers := r.set.Markers()
	for i := len(markers) - 1; i >= 0; i-- {
		m := markers[i]
		if !m.Projected {
			continue
		}
		if p.Sub(r2.Point{X: m.X, Y: m.Y}).Norm() <= m.Radius {
			return m.Key, true
		}
	}
	return "", false
}
