package filter

import (
	"github.com/jengzang/incidentmap/internal/models"
)

// Source supplies records in load order
type Source interface {
	Records() []models.Record
}

// Evaluate returns the records passing every predicate of q, in load order.
// Records are never reordered. An attribute without a predicate rejects
// everything rather than failing.
func Evaluate(q *Query, src Source) []models.Record {
	preds := q.Predicates()
	for _, p := range preds {
		if p == nil {
			return []models.Record{}
		}
	}

	records := src.Records()
	subset := make([]models.Record, 0, len(records))
	for i := range records {
		if matchAll(preds, &records[i]) {
			subset = append(subset, records[i])
		}
	}
	return subset
}

func matchAll(preds []Predicate, r *models.Record) bool {
	for _, p := range preds {
		if !p.Match(r) {
			return false
		}
	}
	return true
}
