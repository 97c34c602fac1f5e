package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/jengzang/incidentmap/internal/config"
	"github.com/jengzang/incidentmap/internal/database"
	"github.com/jengzang/incidentmap/internal/models"
	"github.com/jengzang/incidentmap/internal/repository"
)

// ErrEmptyDataset is returned when the dataset holds no records
var ErrEmptyDataset = errors.New("dataset has no records")

// Source says where the dataset and boundary data come from. Exactly one of
// CSVPath and SQLitePath is used, CSVPath first.
type Source struct {
	CSVPath           string
	SQLitePath        string
	BoundaryPath      string
	SimplifyTolerance float64
}

// SourceFromConfig picks the dataset source out of the configuration
func SourceFromConfig(cfg *config.Config) Source {
	return Source{
		CSVPath:           cfg.Dataset.CSVPath,
		SQLitePath:        cfg.Dataset.SQLitePath,
		BoundaryPath:      cfg.Dataset.BoundaryPath,
		SimplifyTolerance: cfg.Display.SimplifyTolerance,
	}
}

// Dataset is the result of the startup load
type Dataset struct {
	Records  []models.Record
	Report   LoadReport
	Boundary *Boundary // nil when no boundary path was configured
}

// Load reads the records and the boundary concurrently. Any failure is fatal:
// no partial dataset is returned.
func Load(ctx context.Context, src Source) (*Dataset, error) {
	ds := &Dataset{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		records, report, err := loadRecords(ctx, src)
		if err != nil {
			return err
		}
		ds.Records = records
		ds.Report = report
		return nil
	})

	if src.BoundaryPath != "" {
		g.Go(func() error {
			data, err := os.ReadFile(src.BoundaryPath)
			if err != nil {
				return fmt.Errorf("failed to read boundary data: %w", err)
			}
			b, err := ParseBoundary(data, src.SimplifyTolerance)
			if err != nil {
				return err
			}
			ds.Boundary = b
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if ds.Boundary != nil {
		outside := 0
		for i := range ds.Records {
			r := &ds.Records[i]
			if r.HasPosition() && !ds.Boundary.Contains(r.Latitude, r.Longitude) {
				outside++
			}
		}
		if outside > 0 {
			slog.Warn("records outside boundary polygons", "component", "dataset", "count", outside)
		}
	}

	slog.Info("dataset loaded", "component", "dataset",
		"records", len(ds.Records), "missing", ds.Report.Missing, "boundary", ds.Boundary != nil)
	return ds, nil
}

func loadRecords(ctx context.Context, src Source) ([]models.Record, LoadReport, error) {
	switch {
	case src.CSVPath != "":
		data, err := os.ReadFile(src.CSVPath)
		if err != nil {
			return nil, LoadReport{}, fmt.Errorf("failed to read dataset: %w", err)
		}
		records, report, err := ParseCSV(bytes.NewReader(data))
		if err != nil {
			return nil, report, fmt.Errorf("failed to parse dataset %s: %w", src.CSVPath, err)
		}
		return records, report, nil

	case src.SQLitePath != "":
		db, err := database.Open(ctx, database.Config{Path: src.SQLitePath})
		if err != nil {
			return nil, LoadReport{}, err
		}
		defer db.Close()

		// a fresh database gets the schema and then loads as empty
		if err := database.Migrate(ctx, db); err != nil {
			return nil, LoadReport{}, err
		}
		records, err := repository.NewIncidentRepository(db).List(ctx)
		if err != nil {
			return nil, LoadReport{}, err
		}
		if len(records) == 0 {
			return nil, LoadReport{}, ErrEmptyDataset
		}
		return records, LoadReport{Rows: len(records)}, nil

	default:
		return nil, LoadReport{}, fmt.Errorf("no dataset source configured")
	}
}
