package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/scriptc/ir"
	"github.com/wippyai/scriptc/opt"
	"github.com/wippyai/scriptc/pipeline"
	"github.com/wippyai/scriptc/ssa"
)

// options holds the flags shared by every command.
type options struct {
	configFile string
	passes     []string
	ssaPasses  []string
	logLevel   string
	color      string
	verbose    bool
	noVerify   bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "scriptc-opt",
		Short:         "Optimize scriptc control-flow graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Usage()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Pipeline configuration file (TOML)")
	flags.StringSliceVar(&opts.passes, "passes", nil, "Passes run after SSA destruction")
	flags.StringSliceVar(&opts.ssaPasses, "ssa-passes", nil, "Passes run while in SSA form")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.color, "color", "auto", "Colorize output (auto, always, never)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable development logging")
	flags.BoolVar(&opts.noVerify, "no-verify", false, "Skip graph verification between stages")

	cmd.AddCommand(
		newRunCommand(opts),
		newDotCommand(opts),
		newExecCommand(opts),
		newStepCommand(opts),
		newPassesCommand(),
	)
	return cmd
}

// config loads the configuration file, if any, and applies the flags that
// were set on the command line.
func (o *options) config(flags *pflag.FlagSet) (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	if o.configFile != "" {
		var err error
		if cfg, err = pipeline.LoadConfig(o.configFile); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("passes") {
		cfg.Passes = o.passes
	}
	if flags.Changed("ssa-passes") {
		cfg.SSAPasses = o.ssaPasses
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if o.noVerify {
		cfg.Verify = false
	}
	return cfg, cfg.Validate(nil)
}

// setup builds the pipeline for a command and installs the package loggers.
func (o *options) setup(cmd *cobra.Command, snapshots bool) (*pipeline.Pipeline, *zap.Logger, error) {
	cfg, err := o.config(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	cfg.Snapshots = cfg.Snapshots || snapshots

	log, err := o.logger(cfg)
	if err != nil {
		return nil, nil, err
	}
	ssa.SetLogger(log.Named("ssa"))
	opt.SetLogger(log.Named("opt"))
	pipeline.SetLogger(log.Named("pipeline"))

	p, err := pipeline.New(cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	return p, log, nil
}

func (o *options) logger(cfg pipeline.Config) (*zap.Logger, error) {
	if o.verbose {
		return zap.NewDevelopment()
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc.Build()
}

// colorize reports whether output written to w should be highlighted.
func (o *options) colorize(w io.Writer) (bool, error) {
	switch strings.ToLower(o.color) {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	default:
		return false, fmt.Errorf("invalid --color value %q", o.color)
	}
}

func readGraph(path string) (*ir.Graph, error) {
	if path == "-" {
		return ir.Parse(os.Stdin)
	}
	return ir.ParseFile(path)
}
