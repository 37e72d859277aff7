package main

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newStepCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "step FILE",
		Short: "Step through the graph after each pipeline stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGraph(args[0])
			if err != nil {
				return err
			}
			p, log, err := opts.setup(cmd, true)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			res, err := p.Run(cmd.Context(), g)
			if err != nil {
				return err
			}
			if len(res.Snapshots) == 0 {
				return errors.New("pipeline recorded no snapshots")
			}
			prog := tea.NewProgram(newStepModel(args[0], res.Snapshots),
				tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = prog.Run()
			return err
		},
	}
}
