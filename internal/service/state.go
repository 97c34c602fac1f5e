package service

import (
	"github.com/jengzang/incidentmap/internal/filter"
	"github.com/jengzang/incidentmap/internal/models"
)

// FilterState is what a control widget needs to draw itself
type FilterState struct {
	Attribute string               `json:"attribute"`
	Label     string               `json:"label"`
	Kind      models.AttributeKind `json:"kind"`

	// quantitative
	Range    *models.Range `json:"range,omitempty"`
	Low      float64       `json:"low,omitempty"`
	High     float64       `json:"high,omitempty"` // slider max when OpenHigh
	OpenHigh bool          `json:"open_high,omitempty"`
	Default  bool          `json:"default,omitempty"`

	// nominal
	Options  []string `json:"options,omitempty"` // "All" first
	Selected []string `json:"selected,omitempty"`
}

// State is the widget-facing view of the explorer
type State struct {
	Generation uint64               `json:"generation"`
	Filters    []FilterState        `json:"filters"`
	ColorBy    string               `json:"color_by"`
	Transform  models.Transform     `json:"transform"`
	Gesture    string               `json:"gesture"`
	Summary    models.Summary       `json:"summary"`
	Legend     []models.LegendEntry `json:"legend,omitempty"`
}

// State describes every filter, the color selection and the view. After a
// reset it matches the defaults, so widgets can redraw from it.
func (e *Explorer) State() State {
	st := State{
		Generation: e.generation,
		ColorBy:    e.colors.Selected(),
		Transform:  e.view.Transform(),
		Gesture:    e.view.State().String(),
		Summary:    e.summary,
		Legend:     e.colors.Legend(),
	}
	for _, attr := range models.Filterable {
		fs := FilterState{Attribute: attr.Name, Label: attr.Label, Kind: attr.Kind}
		switch attr.Kind {
		case models.Quantitative:
			r, _ := e.store.Range(attr.Name)
			fs.Range = &r
			if p, ok := e.query.Get(attr.Name); ok {
				rp, _ := p.(filter.RangePredicate)
				fs.Low, fs.High, fs.OpenHigh, fs.Default = rp.Low, rp.High, rp.OpenHigh, rp.Full
				if rp.OpenHigh {
					fs.High = r.Max
				}
			}
		case models.Nominal:
			fs.Options = append([]string{models.AllOption}, e.store.Options(attr.Name)...)
			fs.Selected = e.query.Nominal(attr.Name).Values()
		}
		st.Filters = append(st.Filters, fs)
	}
	return st
}
