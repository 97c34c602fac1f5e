package stats

import (
	"github.com/jengzang/incidentmap/internal/models"
)

// Summarize computes the count and per-attribute sums of subset and their
// share of the same totals over full.
func Summarize(subset, full []models.Record, attrs []string) models.Summary {
	s := models.Summary{
		Count:      len(subset),
		TotalCount: len(full),
		Attributes: make([]models.AttributeSummary, 0, len(attrs)),
	}
	s.CountPercent, s.CountDefined = Percent(float64(len(subset)), float64(len(full)))

	for _, attr := range attrs {
		values, missing := column(subset, attr)
		totals, _ := column(full, attr)

		a := models.AttributeSummary{
			Attribute: attr,
			Sum:       Sum(values),
			TotalSum:  Sum(totals),
			Missing:   missing,
			Mean:      Mean(values),
		}
		a.Percent, a.Defined = Percent(a.Sum, a.TotalSum)
		s.Attributes = append(s.Attributes, a)
	}

	ages, _ := column(subset, models.AttrAgeOfShooter)
	s.MedianAge = Median(ages)

	return s
}

// column extracts the present values of attr and counts the missing ones
func column(records []models.Record, attr string) ([]float64, int) {
	values := make([]float64, 0, len(records))
	missing := 0
	for i := range records {
		v, ok := records[i].Number(attr)
		if !ok {
			missing++
			continue
		}
		values = append(values, v)
	}
	return values, missing
}
