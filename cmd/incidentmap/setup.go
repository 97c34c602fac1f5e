package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jengzang/incidentmap/internal/config"
	"github.com/jengzang/incidentmap/internal/dataset"
	"github.com/jengzang/incidentmap/internal/models"
	"github.com/jengzang/incidentmap/internal/repository"
	"github.com/jengzang/incidentmap/internal/service"
)

// newLogger builds the slog logger selected by cfg and installs it as default
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	log := slog.New(h)
	slog.SetDefault(log)
	return log
}

// app is everything built from the config before an adapter starts
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	data     *dataset.Dataset
	store    *repository.RecordStore
	explorer *service.Explorer
	initial  models.Frame
}

// setup loads the config and dataset and builds the explorer. Any load
// failure is returned before an adapter starts, so no partial UI is shown.
func setup(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg.Log, logOut)

	data, err := dataset.Load(ctx, dataset.SourceFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	for _, w := range data.Report.Warnings {
		log.Warn(w, "component", "dataset")
	}

	store, err := repository.NewRecordStore(data.Records, cfg.Filters)
	if err != nil {
		return nil, fmt.Errorf("failed to build record store: %w", err)
	}

	explorer, initial, err := service.NewExplorer(store, service.OptionsFromConfig(cfg, log))
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      log,
		data:     data,
		store:    store,
		explorer: explorer,
		initial:  initial,
	}, nil
}

// stderr is where logs go when stdout belongs to the command output
var stderr io.Writer = os.Stderr
