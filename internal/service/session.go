package service

import (
	"context"

	"github.com/golang/geo/r2"

	"github.com/jengzang/incidentmap/internal/models"
	"github.com/jengzang/incidentmap/internal/viewport"
)

// Session serializes concurrent callers onto one Explorer through a Loop and
// publishes every resulting frame on a Hub
type Session struct {
	explorer *Explorer
	loop     *Loop
	hub      *Hub
}

// NewSession wires an explorer to a loop and hub. The loop must be running.
func NewSession(explorer *Explorer, loop *Loop, hub *Hub) *Session {
	return &Session{explorer: explorer, loop: loop, hub: hub}
}

// Hub returns the frame hub
func (s *Session) Hub() *Hub { return s.hub }

// publish runs fn on the loop and publishes its frame from the loop, so
// subscribers receive frames in generation order
func (s *Session) publish(ctx context.Context, fn func() (models.Frame, error)) (models.Frame, error) {
	return Call(ctx, s.loop, func() (models.Frame, error) {
		f, err := fn()
		if err == nil {
			s.hub.Publish(f)
		}
		return f, err
	})
}

// UpdateQuantitativeFilter runs Explorer.UpdateQuantitativeFilter on the loop
func (s *Session) UpdateQuantitativeFilter(ctx context.Context, attr string, low, high float64) (models.Frame, error) {
	return s.publish(ctx, func() (models.Frame, error) {
		return s.explorer.UpdateQuantitativeFilter(attr, low, high)
	})
}

// UpdateNominalFilter runs Explorer.UpdateNominalFilter on the loop
func (s *Session) UpdateNominalFilter(ctx context.Context, attr string, selected []string) (models.Frame, error) {
	return s.publish(ctx, func() (models.Frame, error) {
		return s.explorer.UpdateNominalFilter(attr, selected)
	})
}

// SelectColorAttribute runs Explorer.SelectColorAttribute on the loop
func (s *Session) SelectColorAttribute(ctx context.Context, attr string) (models.Frame, error) {
	return s.publish(ctx, func() (models.Frame, error) {
		return s.explorer.SelectColorAttribute(attr)
	})
}

// ResetFilters runs Explorer.ResetFilters on the loop
func (s *Session) ResetFilters(ctx context.Context) (models.Frame, error) {
	return s.publish(ctx, func() (models.Frame, error) {
		return s.explorer.ResetFilters(), nil
	})
}

// ApplyTransform runs Explorer.ApplyTransform on the loop
func (s *Session) ApplyTransform(ctx context.Context, t models.Transform) (models.Frame, error) {
	return s.publish(ctx, func() (models.Frame, error) {
		return s.explorer.ApplyTransform(t), nil
	})
}

// Gesture begins or ends a pan/zoom gesture
func (s *Session) Gesture(ctx context.Context, begin bool) (viewport.State, error) {
	return Call(ctx, s.loop, func() (viewport.State, error) {
		if begin {
			return s.explorer.BeginGesture(), nil
		}
		return s.explorer.EndGesture(), nil
	})
}

// HoverIn runs Explorer.HoverIn on the loop
func (s *Session) HoverIn(ctx context.Context, key string, pointer r2.Point) (models.Frame, error) {
	return s.publish(ctx, func() (models.Frame, error) {
		return s.explorer.HoverIn(key, pointer)
	})
}

// HoverAt runs Explorer.HoverAt on the loop
func (s *Session) HoverAt(ctx context.Context, pointer r2.Point) (models.Frame, error) {
	return s.publish(ctx, func() (models.Frame, error) {
		return s.explorer.HoverAt(pointer), nil
	})
}

// HoverOut runs Explorer.HoverOut on the loop
func (s *Session) HoverOut(ctx context.Context) (models.Frame, error) {
	return s.publish(ctx, func() (models.Frame, error) {
		return s.explorer.HoverOut(), nil
	})
}

// Snapshot returns the full marker set for a newly connected display. It is
// not published.
func (s *Session) Snapshot(ctx context.Context) (models.Frame, error) {
	return Call(ctx, s.loop, func() (models.Frame, error) {
		return s.explorer.Snapshot(), nil
	})
}

// State returns the widget state
func (s *Session) State(ctx context.Context) (State, error) {
	return Call(ctx, s.loop, func() (State, error) {
		return s.explorer.State(), nil
	})
}

// Visible returns a copy of the visible subset
func (s *Session) Visible(ctx context.Context) ([]models.Record, error) {
	return Call(ctx, s.loop, func() ([]models.Record, error) {
		v := s.explorer.Visible()
		out := make([]models.Record, len(v))
		copy(out, v)
		return out, nil
	})
}

// Record looks up one record by key. The store is immutable, so this does
// not go through the loop.
func (s *Session) Record(key string) (models.Record, bool) {
	return s.explorer.Store().Lookup(key)
}

// Ranges returns the full-dataset range of every quantitative attribute
func (s *Session) Ranges() map[string]models.Range {
	return s.explorer.Store().Ranges()
}
