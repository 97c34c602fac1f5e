package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"

	"github.com/jengzang/incidentmap/internal/colormap"
	"github.com/jengzang/incidentmap/internal/filter"
	"github.com/jengzang/incidentmap/internal/metrics"
	"github.com/jengzang/incidentmap/internal/models"
	"github.com/jengzang/incidentmap/internal/render"
	"github.com/jengzang/incidentmap/internal/repository"
	"github.com/jengzang/incidentmap/internal/spatial"
	"github.com/jengzang/incidentmap/internal/stats"
	"github.com/jengzang/incidentmap/internal/viewport"
)

// ErrUnknownRecord is returned when hovering a key that is not in the store
var ErrUnknownRecord = errors.New("unknown record")

// Triggers name the event that produced a frame
const (
	TriggerLoad         = "load"
	TriggerQuantitative = "quantitative_filter"
	TriggerNominal      = "nominal_filter"
	TriggerColor        = "color"
	TriggerReset        = "reset"
	TriggerTransform    = "transform"
	TriggerHover        = "hover"
	TriggerSnapshot     = "snapshot"
)

// ExplorerOptions configures the components owned by an Explorer
type ExplorerOptions struct {
	Colors    colormap.Options
	View      viewport.Options
	Render    render.Options
	Projector spatial.Projector
	Logger    *slog.Logger
}

// Explorer is the application state: the record store, the filter query and
// its default snapshot, the color mapping, the view transform and the marker
// set. It is not safe for concurrent use; concurrent adapters go through a
// Loop.
type Explorer struct {
	store    *repository.RecordStore
	query    *filter.Query
	defaults *filter.Query
	colors   *colormap.Mapper
	view     *viewport.View
	renderer *render.Renderer
	log      *slog.Logger

	visible    []models.Record
	summary    models.Summary
	generation uint64
}

// NewExplorer builds the explorer and performs the initial evaluation. The
// returned frame creates every marker of the unfiltered dataset.
func NewExplorer(store *repository.RecordStore, opts ExplorerOptions) (*Explorer, models.Frame, error) {
	colors, err := colormap.New(store, opts.Colors)
	if err != nil {
		return nil, models.Frame{}, fmt.Errorf("failed to create color mapper: %w", err)
	}
	if opts.Projector == nil {
		opts.Projector = spatial.NewAlbersUSA(spatial.DefaultScale, spatial.DefaultTranslate)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	view := viewport.New(opts.View)
	defaults := filter.NewQuery(store)
	e := &Explorer{
		store:    store,
		query:    defaults.Clone(),
		defaults: defaults,
		colors:   colors,
		view:     view,
		renderer: render.NewRenderer(opts.Projector, view, colors, opts.Render),
		log:      log.With("component", "Explorer"),
	}

	frame := e.evaluate(TriggerLoad)
	e.log.Info("explorer ready", "records", store.Len(), "markers", e.renderer.Len())
	return e, frame, nil
}

// UpdateQuantitativeFilter sets the range of attr from a slider position.
// The position is clamped into the attribute range; a handle at the maximum
// becomes open-ended.
func (e *Explorer) UpdateQuantitativeFilter(attr string, low, high float64) (models.Frame, error) {
	a, ok := models.LookupAttribute(attr)
	if !ok {
		metrics.RecordRejected("unknown_attribute")
		return models.Frame{}, fmt.Errorf("%w: %q", filter.ErrUnknownAttribute, attr)
	}
	if a.Kind != models.Quantitative {
		metrics.RecordRejected("kind_mismatch")
		return models.Frame{}, fmt.Errorf("%w: %s is %s", filter.ErrKindMismatch, attr, a.Kind)
	}

	r, _ := e.store.Range(attr)
	pred := filter.FromSlider(attr, low, high, r)
	if err := e.query.Set(pred); err != nil {
		return models.Frame{}, err
	}
	e.log.Debug("quantitative filter updated", "predicate", pred.String())
	return e.evaluate(TriggerQuantitative), nil
}

// UpdateNominalFilter replaces the selection of attr. The selection passes
// through filter.Transition, so "All" stays exclusive and an empty selection
// falls back to "All".
func (e *Explorer) UpdateNominalFilter(attr string, selected []string) (models.Frame, error) {
	if err := e.checkNominal(attr); err != nil {
		return models.Frame{}, err
	}
	pred := filter.Transition(e.query.Nominal(attr), selected)
	if err := e.query.Set(pred); err != nil {
		return models.Frame{}, err
	}
	e.log.Debug("nominal filter updated", "predicate", pred.String())
	return e.evaluate(TriggerNominal), nil
}

// ToggleNominalOption flips one option of attr, as a click in a multi-select
// list does
func (e *Explorer) ToggleNominalOption(attr, value string) (models.Frame, error) {
	if err := e.checkNominal(attr); err != nil {
		return models.Frame{}, err
	}
	pred := filter.Toggle(e.query.Nominal(attr), value)
	if err := e.query.Set(pred); err != nil {
		return models.Frame{}, err
	}
	return e.evaluate(TriggerNominal), nil
}

func (e *Explorer) checkNominal(attr string) error {
	a, ok := models.LookupAttribute(attr)
	if !ok {
		metrics.RecordRejected("unknown_attribute")
		return fmt.Errorf("%w: %q", filter.ErrUnknownAttribute, attr)
	}
	if a.Kind != models.Nominal {
		metrics.RecordRejected("kind_mismatch")
		return fmt.Errorf("%w: %s is %s", filter.ErrKindMismatch, attr, a.Kind)
	}
	return nil
}

// SelectColorAttribute switches the active color mapping. An empty name
// selects the constant default color.
func (e *Explorer) SelectColorAttribute(attr string) (models.Frame, error) {
	if err := e.colors.Select(attr); err != nil {
		metrics.RecordRejected("unknown_attribute")
		return models.Frame{}, err
	}
	return e.evaluate(TriggerColor), nil
}

// ResetFilters restores the default query snapshot
func (e *Explorer) ResetFilters() models.Frame {
	e.query = e.defaults.Clone()
	e.log.Debug("filters reset")
	return e.evaluate(TriggerReset)
}

// ApplyTransform stores a pan/zoom transform, clamped into range, and
// refreshes every marker radius
func (e *Explorer) ApplyTransform(t models.Transform) models.Frame {
	e.view.Apply(t)
	return e.rerender(TriggerTransform)
}

// BeginGesture marks the start of a pan/zoom gesture
func (e *Explorer) BeginGesture() viewport.State {
	e.view.Begin()
	return e.view.State()
}

// EndGesture marks the end of a pan/zoom gesture
func (e *Explorer) EndGesture() viewport.State {
	e.view.End()
	return e.view.State()
}

// HoverIn enlarges the marker of key and shows its tooltip near pointer.
// Hovering a record that is filtered out yields an empty frame.
func (e *Explorer) HoverIn(key string, pointer r2.Point) (models.Frame, error) {
	rec, ok := e.store.Lookup(key)
	if !ok {
		return models.Frame{}, fmt.Errorf("%w: %q", ErrUnknownRecord, key)
	}
	diff, tip, ok := e.renderer.HoverIn(&rec, pointer)
	if !ok {
		return e.frame(TriggerHover, models.RenderDiff{}, nil), nil
	}
	return e.frame(TriggerHover, diff, tip), nil
}

// HoverOut reverts the hovered marker and fades the tooltip out
func (e *Explorer) HoverOut() models.Frame {
	diff, tip := e.renderer.HoverOut()
	return e.frame(TriggerHover, diff, tip)
}

// HoverAt resolves a bare screen pointer to the topmost marker under it and
// hovers that marker. A pointer over empty map ends any hover.
func (e *Explorer) HoverAt(pointer r2.Point) models.Frame {
	key, ok := e.renderer.HitTest(pointer)
	if !ok {
		return e.HoverOut()
	}
	rec, _ := e.store.Lookup(key)
	diff, tip, _ := e.renderer.HoverIn(&rec, pointer)
	return e.frame(TriggerHover, diff, tip)
}

// Snapshot returns the current marker set as creates, for a display that
// connects after the initial load. It keeps the current generation, so the
// next frame follows it without a gap.
func (e *Explorer) Snapshot() models.Frame {
	return e.compose(TriggerSnapshot, e.renderer.Snapshot(), nil)
}

// Visible returns the current visible subset. Callers must not modify it.
func (e *Explorer) Visible() []models.Record { return e.visible }

// Summary returns the statistics of the current visible subset
func (e *Explorer) Summary() models.Summary { return e.summary }

// Generation returns the generation of the latest frame
func (e *Explorer) Generation() uint64 { return e.generation }

// Store returns the record store
func (e *Explorer) Store() *repository.RecordStore { return e.store }

// evaluate runs the full pipeline: filter, aggregate, reconcile
func (e *Explorer) evaluate(trigger string) models.Frame {
	start := time.Now()

	e.visible = filter.Evaluate(e.query, e.store)
	e.summary = stats.Summarize(e.visible, e.store.Records(), models.SummedAttributes)
	frame := e.frame(trigger, e.renderer.Reconcile(e.visible), nil)

	metrics.RecordEvaluation(trigger, time.Since(start), len(e.visible))
	e.log.Debug("evaluated",
		"trigger", trigger,
		"visible", len(e.visible),
		"create", len(frame.Diff.Create),
		"update", len(frame.Diff.Update),
		"remove", len(frame.Diff.Remove),
		"generation", frame.Generation,
	)
	return frame
}

// rerender reconciles the unchanged visible subset, refreshing color and radius
func (e *Explorer) rerender(trigger string) models.Frame {
	start := time.Now()
	frame := e.frame(trigger, e.renderer.Reconcile(e.visible), nil)
	metrics.RecordEvaluation(trigger, time.Since(start), len(e.visible))
	return frame
}

// frame starts a new generation
func (e *Explorer) frame(trigger string, diff models.RenderDiff, tip *models.Tooltip) models.Frame {
	e.generation++
	metrics.RecordReconcile(len(diff.Create), len(diff.Update), len(diff.Remove))
	return e.compose(trigger, diff, tip)
}

func (e *Explorer) compose(trigger string, diff models.RenderDiff, tip *models.Tooltip) models.Frame {
	return models.Frame{
		ID:         uuid.NewString(),
		Generation: e.generation,
		Trigger:    trigger,
		Visible:    len(e.visible),
		Summary:    e.summary,
		Diff:       diff,
		Transform:  e.view.Transform(),
		ColorBy:    e.colors.Selected(),
		Legend:     e.colors.Legend(),
		Tooltip:    tip,
	}
}
