package main

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jengzang/incidentmap/internal/tui"
)

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Explore the dataset in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runTUI,
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	// logs would corrupt the terminal UI
	a, err := setup(cmd.Context(), io.Discard)
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.New(a.explorer, a.initial), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err = p.Run()
	return err
}
