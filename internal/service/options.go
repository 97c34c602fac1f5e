package service

import (
	"log/slog"
	"time"

	"github.com/golang/geo/r2"

	"github.com/jengzang/incidentmap/internal/colormap"
	"github.com/jengzang/incidentmap/internal/config"
	"github.com/jengzang/incidentmap/internal/render"
	"github.com/jengzang/incidentmap/internal/spatial"
	"github.com/jengzang/incidentmap/internal/viewport"
)

// OptionsFromConfig builds explorer options from the display and dataset
// configuration
func OptionsFromConfig(cfg *config.Config, log *slog.Logger) ExplorerOptions {
	d := cfg.Display
	return ExplorerOptions{
		Colors: colormap.Options{
			Default: d.DefaultColor,
			Missing: d.MissingColor,
			Low:     d.LowColor,
			High:    d.HighColor,
			Palette: d.Palette,
		},
		View: viewport.Options{
			MinScale:        d.MinZoom,
			MaxScale:        d.MaxZoom,
			Radius:          d.Radius,
			HoverMultiplier: d.HoverMultiplier,
			Width:           float64(d.Width),
			Height:          float64(d.Height),
		},
		Render: render.Options{
			JitterMeters: cfg.Dataset.JitterMeters,
			FadeIn:       time.Duration(d.FadeInMillis) * time.Millisecond,
			FadeOut:      time.Duration(d.FadeOutMillis) * time.Millisecond,
		},
		Projector: spatial.NewAlbersUSA(d.Scale, r2.Point{X: d.TranslateX, Y: d.TranslateY}),
		Logger:    log,
	}
}
