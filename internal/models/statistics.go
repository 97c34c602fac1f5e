package models

// AttributeSummary is the aggregate of one summed attribute over the visible
// subset compared with the full dataset
type AttributeSummary struct {
	Attribute string  `json:"attribute"`
	Sum       float64 `json:"sum"`
	TotalSum  float64 `json:"total_sum"`
	Percent   float64 `json:"percent"` // Sum / TotalSum * 100, 0 when undefined
	Defined   bool    `json:"defined"` // false when TotalSum is zero
	Missing   int     `json:"missing"` // visible records whose value failed coercion
	Mean      float64 `json:"mean"`    // over present values of the visible subset
}

// Summary holds the statistics shown next to the map
type Summary struct {
	Count        int                `json:"count"`
	TotalCount   int                `json:"total_count"`
	CountPercent float64            `json:"count_percent"`
	CountDefined bool               `json:"count_defined"`
	Attributes   []AttributeSummary `json:"attributes"`
	MedianAge    float64            `json:"median_age"` // 0 when no ages are present
}

// Attribute returns the summary of one attribute
func (s Summary) Attribute(name string) (AttributeSummary, bool) {
	for _, a := range s.Attributes {
		if a.Attribute == name {
			return a, true
		}
	}
	return AttributeSummary{}, false
}
