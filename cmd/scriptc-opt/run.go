package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wippyai/scriptc/ir"
	"github.com/wippyai/scriptc/pipeline"
)

type runOptions struct {
	output    string
	snapshots bool
}

func newRunCommand(opts *options) *cobra.Command {
	var ro runOptions
	cmd := &cobra.Command{
		Use:   "run FILE [FILE...]",
		Short: "Optimize graphs and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(cmd, opts, ro, args)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&ro.output, "output", "o", "", "Write the optimized graph to a file (single input only)")
	flags.BoolVar(&ro.snapshots, "snapshots", false, "Print the graph after every stage that changed it")
	return cmd
}

func runOptimize(cmd *cobra.Command, opts *options, ro runOptions, files []string) error {
	if ro.output != "" && len(files) != 1 {
		return fmt.Errorf("--output needs exactly one input, got %d", len(files))
	}
	p, log, err := opts.setup(cmd, ro.snapshots)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	units := make([]pipeline.Unit, len(files))
	for i, file := range files {
		g, err := readGraph(file)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		units[i] = pipeline.Unit{Name: file, Graph: g}
	}

	results, err := p.RunAll(cmd.Context(), units)
	if err != nil {
		return err
	}

	if ro.output != "" {
		return ir.WriteFile(results[0].Graph, ro.output)
	}

	out := cmd.OutOrStdout()
	color, err := opts.colorize(out)
	if err != nil {
		return err
	}
	for i, res := range results {
		if len(results) > 1 {
			fmt.Fprintf(out, "# %s\n", units[i].Name)
		}
		if ro.snapshots {
			for _, s := range res.Snapshots {
				fmt.Fprintf(out, "# after %s\n", s.Stage)
				writeIR(out, s.Text, color)
			}
			continue
		}
		writeIR(out, ir.Format(res.Graph), color)
	}
	return nil
}

func writeIR(w io.Writer, text string, color bool) {
	if color {
		text = highlight(text)
	}
	fmt.Fprint(w, text)
}
