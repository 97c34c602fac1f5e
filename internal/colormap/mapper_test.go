package colormap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/incidentmap/internal/models"
)

type fakeCatalog struct {
	ranges  map[string]models.Range
	options map[string][]string
}

func (c fakeCatalog) Range(attr string) (models.Range, bool) {
	r, ok := c.ranges[attr]
	return r, ok
}

func (c fakeCatalog) Options(attr string) []string {
	return c.options[attr]
}

func newMapper(t *testing.T) *Mapper {
	t.Helper()
	catalog := fakeCatalog{
		ranges: map[string]models.Range{
			models.AttrFatalities: {Min: 0, Max: 10, Valid: true},
		},
		options: map[string][]string{
			models.AttrType: {"Mass", "Spree"},
		},
	}
	m, err := New(catalog, Options{
		Default: "#4682b4",
		Missing: "#bdbdbd",
		Low:     "#ffffff",
		High:    "#000000",
	})
	require.NoError(t, err)
	return m
}

func TestDefaultColorWithoutSelection(t *testing.T) {
	m := newMapper(t)
	r := models.Record{Type: "Mass"}

	assert.Equal(t, "#4682b4", m.HexFor(&r))
	assert.Nil(t, m.Legend())
}

func TestCategoricalFollowsDeclaredOrder(t *testing.T) {
	m := newMapper(t)
	require.NoError(t, m.Select(models.AttrType))

	mass := models.Record{Type: "Mass"}
	spree := models.Record{Type: "Spree"}
	other := models.Record{Type: "Unheard of"}

	assert.Equal(t, Category10[0], m.HexFor(&mass))
	assert.Equal(t, Category10[1], m.HexFor(&spree))
	assert.Equal(t, "#bdbdbd", m.HexFor(&other))
}

func TestCategoricalIsDeterministic(t *testing.T) {
	m := newMapper(t)
	require.NoError(t, m.Select(models.AttrType))
	spree := models.Record{Type: "Spree"}

	first := m.ColorFor(&spree)
	require.NoError(t, m.Select(models.AttrFatalities))
	require.NoError(t, m.Select(models.AttrType))
	second := m.ColorFor(&spree)

	assert.Equal(t, first, second)
}

func TestContinuousUsesFullRange(t *testing.T) {
	m := newMapper(t)
	require.NoError(t, m.Select(models.AttrFatalities))

	low := models.Record{Fatalities: 0}
	high := models.Record{Fatalities: 10}
	beyond := models.Record{Fatalities: 25}
	mid := models.Record{Fatalities: 5}
	missing := models.Record{Fatalities: models.Missing()}

	assert.Equal(t, "#ffffff", m.HexFor(&low))
	assert.Equal(t, "#000000", m.HexFor(&high))
	assert.Equal(t, "#000000", m.HexFor(&beyond))
	assert.Equal(t, "#bdbdbd", m.HexFor(&missing))

	c := m.ColorFor(&mid)
	assert.InDelta(t, 128, int(c.R), 1)
	assert.Equal(t, c.R, c.G)
}

func TestSelectUnknownAttribute(t *testing.T) {
	m := newMapper(t)

	assert.ErrorIs(t, m.Select("summary"), ErrUnknownAttribute)
	require.NoError(t, m.Select("none"))
	assert.Equal(t, NoAttribute, m.Selected())
}

func TestLegend(t *testing.T) {
	m := newMapper(t)

	require.NoError(t, m.Select(models.AttrType))
	assert.Equal(t, []models.LegendEntry{
		{Label: "Mass", Color: Category10[0]},
		{Label: "Spree", Color: Category10[1]},
	}, m.Legend())

	require.NoError(t, m.Select(models.AttrFatalities))
	assert.Equal(t, []models.LegendEntry{
		{Label: "0", Color: "#ffffff"},
		{Label: "10", Color: "#000000"},
	}, m.Legend())
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#f80")
	require.NoError(t, err)
	assert.Equal(t, "#ff8800", Hex(c))

	_, err = ParseHex("orange")
	assert.Error(t, err)
}
