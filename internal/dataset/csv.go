package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jengzang/incidentmap/internal/models"
)

// LoadReport counts values that failed coercion, per attribute. Such values
// are kept as missing: excluded from sums and rejected by range filters.
type LoadReport struct {
	Rows     int            `json:"rows"`
	Missing  map[string]int `json:"missing"`
	Warnings []string       `json:"warnings,omitempty"`
}

func (r *LoadReport) miss(attr string) {
	if r.Missing == nil {
		r.Missing = make(map[string]int)
	}
	r.Missing[attr]++
}

// categoryAliases map header spellings of the location category column
var categoryAliases = map[string]bool{
	"location.1":        true,
	"location_1":        true,
	"location_2":        true,
	"location_type":     true,
	"location_category": true,
	"venue":             true,
}

// ParseCSV reads incident rows. Numeric fields are coerced with
// strconv.ParseFloat; anything unparsable becomes missing (NaN).
func ParseCSV(r io.Reader) ([]models.Record, LoadReport, error) {
	var report LoadReport

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, report, ErrEmptyDataset
		}
		return nil, report, fmt.Errorf("failed to read csv header: %w", err)
	}
	columns := mapColumns(header)
	if _, ok := columns[models.AttrCase]; !ok {
		return nil, report, fmt.Errorf("csv header has no %q column", models.AttrCase)
	}

	var records []models.Record
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, report, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}

		field := func(attr string) string {
			i, ok := columns[attr]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		number := func(attr string) float64 {
			v, ok := parseNumber(field(attr))
			if !ok {
				report.miss(attr)
				return models.Missing()
			}
			return v
		}

		rec := models.Record{
			Case:              field(models.AttrCase),
			Location:          field(models.AttrLocation),
			Summary:           field(models.AttrSummary),
			Fatalities:        number(models.AttrFatalities),
			Injured:           number(models.AttrInjured),
			TotalVictims:      number(models.AttrTotalVictims),
			AgeOfShooter:      number(models.AttrAgeOfShooter),
			Latitude:          number(models.AttrLatitude),
			Longitude:         number(models.AttrLongitude),
			LocationCategory:  field(models.AttrLocationCategory),
			Type:              field(models.AttrType),
			Race:              field(models.AttrRace),
			Gender:            field(models.AttrGender),
			PriorMentalHealth: field(models.AttrPriorMentalHealth),
			WeaponsLegal:      field(models.AttrWeaponsLegal),
			WeaponType:        field(models.AttrWeaponType),
		}

		if d, ok := models.ParseDate(field(models.AttrDate)); ok {
			rec.Date = d
		} else {
			report.miss(models.AttrDate)
		}
		if y, err := strconv.Atoi(field(models.AttrYear)); err == nil {
			rec.Year = y
		}

		if rec.Case == "" {
			report.Warnings = append(report.Warnings, fmt.Sprintf("line %d: empty case, row skipped", line))
			continue
		}
		records = append(records, rec)
	}

	report.Rows = len(records)
	if len(records) == 0 {
		return nil, report, ErrEmptyDataset
	}
	return records, report, nil
}

// mapColumns resolves header names to column indexes. The incident dataset
// repeats "location": the first is the place name, the second the category.
func mapColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		switch {
		case name == models.AttrLocation:
			if _, seen := columns[models.AttrLocation]; seen {
				columns[models.AttrLocationCategory] = i
				continue
			}
		case categoryAliases[name]:
			columns[models.AttrLocationCategory] = i
			continue
		}
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	}
	return columns
}

func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	h = strings.ToLower(h)
	return strings.ReplaceAll(h, " ", "_")
}

func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
