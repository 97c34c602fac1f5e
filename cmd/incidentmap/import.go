package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jengzang/incidentmap/internal/database"
	"github.com/jengzang/incidentmap/internal/dataset"
	"github.com/jengzang/incidentmap/internal/repository"
)

var importDB string

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <csv>",
		Short: "Load a CSV dataset into a sqlite database",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
	cmd.Flags().StringVar(&importDB, "db", "./data/incidents.db", "Target sqlite database")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	records, report, err := dataset.ParseCSV(f)
	if err != nil {
		return err
	}
	// reject duplicate keys before touching the database
	if _, err := repository.NewRecordStore(records, nil); err != nil {
		return err
	}

	db, err := database.Open(ctx, database.Config{Path: importDB})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	if err := repository.NewIncidentRepository(db).ReplaceAll(ctx, records); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Import complete.")
	fmt.Fprintf(out, "  Records:  %d\n", len(records))
	fmt.Fprintf(out, "  Database: %s\n", importDB)
	for attr, n := range report.Missing {
		fmt.Fprintf(out, "  Missing %s: %d\n", attr, n)
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(out, "  Warning: %s\n", w)
	}
	return nil
}
