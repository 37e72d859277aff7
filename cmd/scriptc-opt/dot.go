package main

import (
	"github.com/spf13/cobra"

	"github.com/wippyai/scriptc/ir"
)

func newDotCommand(opts *options) *cobra.Command {
	var (
		optimize bool
		name     string
	)
	cmd := &cobra.Command{
		Use:   "dot FILE",
		Short: "Print a graph in Graphviz DOT format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGraph(args[0])
			if err != nil {
				return err
			}
			if optimize {
				p, log, err := opts.setup(cmd, false)
				if err != nil {
					return err
				}
				defer func() { _ = log.Sync() }()
				if _, err := p.Run(cmd.Context(), g); err != nil {
					return err
				}
			}
			return ir.WriteDot(cmd.OutOrStdout(), g, name)
		},
	}
	cmd.Flags().BoolVar(&optimize, "optimize", false, "Optimize the graph before printing")
	cmd.Flags().StringVar(&name, "name", "unit", "Graph name")
	return cmd
}
