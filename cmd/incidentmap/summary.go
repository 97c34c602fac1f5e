package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jengzang/incidentmap/internal/models"
)

var (
	summaryRanges   []string
	summaryNominals []string
	summaryColor    string
	summaryJSON     bool
	summaryList     bool
)

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Apply filters once and print the summary statistics",
		Example: `  incidentmap summary --range date=2000:2010 --select type=Mass
  incidentmap summary --range fatalities=10: --select race=White,Black --json`,
		Args: cobra.NoArgs,
		RunE: runSummary,
	}
	cmd.Flags().StringArrayVar(&summaryRanges, "range", nil, "Quantitative filter attr=low:high; an empty high means open ended")
	cmd.Flags().StringArrayVar(&summaryNominals, "select", nil, "Nominal filter attr=value[,value...]")
	cmd.Flags().StringVar(&summaryColor, "color", "", "Color attribute, shown in the legend")
	cmd.Flags().BoolVar(&summaryJSON, "json", false, "Print the state as JSON")
	cmd.Flags().BoolVar(&summaryList, "list", false, "List the visible records")
	return cmd
}

func runSummary(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context(), stderr)
	if err != nil {
		return err
	}
	e := a.explorer

	for _, arg := range summaryRanges {
		attr, low, high, err := parseRangeFlag(arg, a.store)
		if err != nil {
			return err
		}
		if _, err := e.UpdateQuantitativeFilter(attr, low, high); err != nil {
			return err
		}
	}
	for _, arg := range summaryNominals {
		attr, values, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("invalid --select %q: want attr=value[,value...]", arg)
		}
		if _, err := e.UpdateNominalFilter(attr, strings.Split(values, ",")); err != nil {
			return err
		}
	}
	if summaryColor != "" {
		if _, err := e.SelectColorAttribute(summaryColor); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if summaryJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			State   any             `json:"state"`
			Records []models.Record `json:"records,omitempty"`
		}{State: e.State(), Records: listed(e.Visible())})
	}

	s := e.Summary()
	fmt.Fprintf(out, "Incidents: %d of %d (%.1f%%)\n", s.Count, s.TotalCount, s.CountPercent)
	for _, attr := range s.Attributes {
		pct := "n/a"
		if attr.Defined {
			pct = fmt.Sprintf("%.1f%%", attr.Percent)
		}
		fmt.Fprintf(out, "  %-14s %10.0f  %6s of %.0f", attr.Attribute, attr.Sum, pct, attr.TotalSum)
		if attr.Missing > 0 {
			fmt.Fprintf(out, "  (%d missing)", attr.Missing)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "  Median age:    %.1f\n", s.MedianAge)

	for _, l := range e.State().Legend {
		fmt.Fprintf(out, "  %s %s\n", l.Color, l.Label)
	}
	for _, r := range listed(e.Visible()) {
		fmt.Fprintf(out, "%s  %s  %s\n", r.Date, r.Case, r.Location)
	}
	return nil
}

func listed(records []models.Record) []models.Record {
	if !summaryList {
		return nil
	}
	return records
}

type rangeCatalog interface {
	Range(attr string) (models.Range, bool)
}

// parseRangeFlag parses attr=low:high. A missing bound takes the attribute's
// full-dataset extreme, so attr=low: is open ended.
func parseRangeFlag(arg string, catalog rangeCatalog) (string, float64, float64, error) {
	attr, bounds, ok := strings.Cut(arg, "=")
	if !ok {
		return "", 0, 0, fmt.Errorf("invalid --range %q: want attr=low:high", arg)
	}
	lowStr, highStr, ok := strings.Cut(bounds, ":")
	if !ok {
		return "", 0, 0, fmt.Errorf("invalid --range %q: want attr=low:high", arg)
	}

	r, _ := catalog.Range(attr)
	low, high := r.Min, r.Max
	var err error
	if lowStr != "" {
		if low, err = strconv.ParseFloat(lowStr, 64); err != nil {
			return "", 0, 0, fmt.Errorf("invalid low bound in %q: %w", arg, err)
		}
	}
	if highStr != "" {
		if high, err = strconv.ParseFloat(highStr, 64); err != nil {
			return "", 0, 0, fmt.Errorf("invalid high bound in %q: %w", arg, err)
		}
	}
	return attr, low, high, nil
}
