package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/scriptc/interp"
	"github.com/wippyai/scriptc/ir"
)

type execOptions struct {
	env      []string
	maxSteps int
	optimize bool
	trace    bool
}

func newExecCommand(opts *options) *cobra.Command {
	var eo execOptions
	cmd := &cobra.Command{
		Use:   "exec FILE",
		Short: "Interpret a graph and print what it prints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, opts, eo, args[0])
		},
	}
	flags := cmd.Flags()
	flags.StringArrayVarP(&eo.env, "env", "e", nil, "Initial value of a name (NAME=VALUE)")
	flags.IntVar(&eo.maxSteps, "max-steps", interp.DefaultMaxSteps, "Maximum number of blocks to execute")
	flags.BoolVar(&eo.optimize, "optimize", false, "Optimize the graph before interpreting it")
	flags.BoolVar(&eo.trace, "trace", false, "Print the executed block path")
	return cmd
}

func runExec(cmd *cobra.Command, opts *options, eo execOptions, file string) error {
	env, err := parseEnv(eo.env)
	if err != nil {
		return err
	}
	g, err := readGraph(file)
	if err != nil {
		return err
	}
	if eo.optimize {
		p, log, err := opts.setup(cmd, false)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		if _, err := p.Run(cmd.Context(), g); err != nil {
			return err
		}
	}

	res, err := interp.Run(cmd.Context(), g, interp.Options{Env: env, MaxSteps: eo.maxSteps})
	out := cmd.OutOrStdout()
	if res != nil {
		for _, line := range res.Output {
			fmt.Fprintln(out, line)
		}
		if eo.trace {
			path := make([]string, len(res.Path))
			for i, id := range res.Path {
				path[i] = id.String()
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "path: %s\n", strings.Join(path, " -> "))
		}
	}
	return err
}

func parseEnv(pairs []string) (map[string]ir.Operand, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]ir.Operand, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --env %q, expected NAME=VALUE", pair)
		}
		env[name] = parseValue(value)
	}
	return env, nil
}

// parseValue reads a constant the way the text form writes it. Anything that
// is not nil, a boolean, a number or a quoted string is taken as a string.
func parseValue(s string) ir.Constant {
	switch s {
	case "nil":
		return ir.Nil
	case "true":
		return ir.True
	case "false":
		return ir.False
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return ir.NumberConst(n)
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		return ir.StringConst(unquoted)
	}
	return ir.StringConst(s)
}
