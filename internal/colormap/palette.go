package colormap

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Category10 is the fixed categorical palette; categories beyond its length
// wrap around.
var Category10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// ParseHex parses "#rrggbb" or "#rgb"
func ParseHex(s string) (color.RGBA, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// Hex formats c as "#rrggbb"
func Hex(c color.Color) string {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

func parsePalette(hexes []string) ([]color.RGBA, error) {
	out := make([]color.RGBA, 0, len(hexes))
	for _, h := range hexes {
		c, err := ParseHex(h)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
