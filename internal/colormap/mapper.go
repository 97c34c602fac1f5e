// Package colormap maps a selected attribute of a record to a marker color.
package colormap

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/aclements/go-moremath/scale"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/jengzang/incidentmap/internal/models"
)

// ErrUnknownAttribute is returned when selecting an attribute that cannot be
// mapped to a color
var ErrUnknownAttribute = errors.New("unknown color attribute")

// NoAttribute selects the constant default color
const NoAttribute = ""

// Catalog supplies full-dataset ranges and declared option orders
type Catalog interface {
	Range(attr string) (models.Range, bool)
	Options(attr string) []string
}

// Options configures the mapper colors as hex strings
type Options struct {
	Default string   // used when no attribute is selected
	Missing string   // used for missing or undeclared values
	Low     string   // continuous domain minimum
	High    string   // continuous domain maximum
	Palette []string // categorical palette, Category10 when empty
}

// Mapper holds the single active color mapping
type Mapper struct {
	catalog  Catalog
	selected string

	def, missing color.RGBA
	low, high    colorful.Color
	palette      []color.RGBA

	// per-attribute assignments, built once; assignment never changes
	categorical map[string]map[string]color.RGBA
}

// New creates a mapper with no attribute selected
func New(catalog Catalog, opts Options) (*Mapper, error) {
	m := &Mapper{
		catalog:     catalog,
		categorical: make(map[string]map[string]color.RGBA),
	}

	var err error
	if m.def, err = ParseHex(opts.Default); err != nil {
		return nil, fmt.Errorf("default color: %w", err)
	}
	if m.missing, err = ParseHex(opts.Missing); err != nil {
		return nil, fmt.Errorf("missing color: %w", err)
	}
	if m.low, err = colorful.Hex(opts.Low); err != nil {
		return nil, fmt.Errorf("low color: %w", err)
	}
	if m.high, err = colorful.Hex(opts.High); err != nil {
		return nil, fmt.Errorf("high color: %w", err)
	}

	hexes := opts.Palette
	if len(hexes) == 0 {
		hexes = Category10
	}
	if m.palette, err = parsePalette(hexes); err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}

	return m, nil
}

// Select makes attr the active mapping. NoAttribute (or "none") restores the
// constant color. Colors are only recomputed when markers are next rendered.
func (m *Mapper) Select(attr string) error {
	if attr == NoAttribute || attr == "none" {
		m.selected = NoAttribute
		return nil
	}
	if _, ok := models.LookupAttribute(attr); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAttribute, attr)
	}
	m.selected = attr
	return nil
}

// Selected returns the active attribute, NoAttribute for the constant color
func (m *Mapper) Selected() string {
	return m.selected
}

// ColorFor returns the color of r under the active mapping
func (m *Mapper) ColorFor(r *models.Record) color.RGBA {
	if m.selected == NoAttribute {
		return m.def
	}
	attr, _ := models.LookupAttribute(m.selected)
	switch attr.Kind {
	case models.Nominal:
		c, ok := m.assignment(attr.Name)[r.Category(attr.Name)]
		if !ok {
			return m.missing
		}
		return c
	default:
		v, ok := r.Number(attr.Name)
		if !ok {
			return m.missing
		}
		return m.continuous(attr.Name, v)
	}
}

// HexFor is ColorFor formatted as "#rrggbb"
func (m *Mapper) HexFor(r *models.Record) string {
	return Hex(m.ColorFor(r))
}

// assignment maps each declared option, in order, to a palette entry
func (m *Mapper) assignment(attr string) map[string]color.RGBA {
	if a, ok := m.categorical[attr]; ok {
		return a
	}
	a := make(map[string]color.RGBA)
	for _, opt := range m.catalog.Options(attr) {
		if opt == models.AllOption {
			continue
		}
		a[opt] = m.palette[len(a)%len(m.palette)]
	}
	m.categorical[attr] = a
	return a
}

// continuous interpolates between the low and high colors across the
// attribute's full-dataset range, never the filtered one
func (m *Mapper) continuous(attr string, v float64) color.RGBA {
	r, ok := m.catalog.Range(attr)
	if !ok || !r.Valid {
		return m.missing
	}
	t := 0.5
	if r.Max > r.Min {
		t = scale.Linear{Min: r.Min, Max: r.Max, Clamp: true}.Map(v)
	}
	t = math.Max(0, math.Min(1, t))
	c := m.low.BlendRgb(m.high, t).Clamped()
	red, green, blue := c.RGB255()
	return color.RGBA{R: red, G: green, B: blue, A: 0xff}
}

// Legend describes the active mapping: one entry per category, or the two
// ends of the continuous domain
func (m *Mapper) Legend() []models.LegendEntry {
	if m.selected == NoAttribute {
		return nil
	}
	attr, _ := models.LookupAttribute(m.selected)
	if attr.Kind == models.Nominal {
		var out []models.LegendEntry
		a := m.assignment(attr.Name)
		for _, opt := range m.catalog.Options(attr.Name) {
			if c, ok := a[opt]; ok {
				out = append(out, models.LegendEntry{Label: opt, Color: Hex(c)})
			}
		}
		return out
	}

	r, ok := m.catalog.Range(attr.Name)
	if !ok || !r.Valid {
		return nil
	}
	return []models.LegendEntry{
		{Label: strconv.FormatFloat(r.Min, 'f', -1, 64), Color: m.low.Clamped().Hex()},
		{Label: strconv.FormatFloat(r.Max, 'f', -1, 64), Color: m.high.Clamped().Hex()},
	}
}
