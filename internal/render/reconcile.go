package render

import (
	"github.com/jengzang/incidentmap/internal/models"
)

// KeyDiff is the three-way split of keys between two renders
type KeyDiff struct {
	Create []string
	Update []string
	Remove []string
}

// Diff splits keys into those entering, persisting and leaving. Create and
// Update follow the visible order; Remove follows the previous render order.
func Diff(prev *MarkerSet, visible []models.Record) KeyDiff {
	var d KeyDiff
	seen := make(map[string]struct{}, len(visible))
	for i := range visible {
		key := visible[i].Case
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if prev.Has(key) {
			d.Update = append(d.Update, key)
		} else {
			d.Create = append(d.Create, key)
		}
	}
	for _, key := range prev.order {
		if _, ok := seen[key]; !ok {
			d.Remove = append(d.Remove, key)
		}
	}
	return d
}
