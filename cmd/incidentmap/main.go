package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "incidentmap",
		Short:        "Interactive filter and map explorer for incident records",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	root.AddCommand(serveCmd())
	root.AddCommand(tuiCmd())
	root.AddCommand(summaryCmd())
	root.AddCommand(importCmd())
	root.AddCommand(tokenCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
