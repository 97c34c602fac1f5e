package filter

import (
	"github.com/jengzang/incidentmap/internal/models"
)

// FromSlider converts a range-slider position into a predicate. Values are
// clamped into the attribute range and swapped when crossed, so an
// out-of-range target never reaches the engine. A handle at the slider
// maximum becomes the open-ended sentinel: records at or beyond the nominal
// maximum still pass.
func FromSlider(attr string, low, high float64, r models.Range) RangePredicate {
	if low > high {
		low, high = high, low
	}
	if !r.Valid {
		return NewRange(attr, low, high)
	}

	low = clamp(low, r.Min, r.Max)
	high = clamp(high, r.Min, r.Max)
	if high >= r.Max {
		return AtLeast(attr, low)
	}
	return NewRange(attr, low, high)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
