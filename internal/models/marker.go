package models

// Marker is the current visual state of one rendered record
type Marker struct {
	Key       string  `json:"key"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Projected bool    `json:"projected"` // false when the record has no drawable position
	Radius    float64 `json:"r"`
	Color     string  `json:"color"`
	Hovered   bool    `json:"hovered,omitempty"`
}

// RenderDiff lists the marker instructions produced by reconciliation
type RenderDiff struct {
	Create []Marker `json:"create"`
	Update []Marker `json:"update"`
	Remove []string `json:"remove"`
}

// Empty reports whether the diff carries no instruction
func (d RenderDiff) Empty() bool {
	return len(d.Create) == 0 && len(d.Update) == 0 && len(d.Remove) == 0
}

// Tooltip is the hover overlay. Fades are transient and carry no data state.
type Tooltip struct {
	Key        string   `json:"key"`
	Lines      []string `json:"lines,omitempty"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Opacity    float64  `json:"opacity"`
	FadeMillis int64    `json:"fade_ms"`
}

// Transform is a pan/zoom state: translation plus uniform scale K
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity is the untransformed view
var Identity = Transform{K: 1}

// LegendEntry pairs a label with its color
type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Frame is everything an adapter needs to redraw after one event
type Frame struct {
	ID         string        `json:"id"`
	Generation uint64        `json:"generation"`
	Trigger    string        `json:"trigger"`
	Visible    int           `json:"visible"`
	Summary    Summary       `json:"summary"`
	Diff       RenderDiff    `json:"diff"`
	Transform  Transform     `json:"transform"`
	ColorBy    string        `json:"color_by"`
	Legend     []LegendEntry `json:"legend,omitempty"`
	Tooltip    *Tooltip      `json:"tooltip,omitempty"`
}
