package pipeline

import (
	"os"
	"runtime"

	"github.com/pelletier/go-toml"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/scriptc/errors"
	"github.com/wippyai/scriptc/opt"
)

// Config selects the passes a pipeline runs and how it reports on them.
type Config struct {
	// Passes run in order after SSA destruction, repeated until none
	// changes the graph or MaxRounds is reached.
	Passes []string `toml:"passes"`
	// SSAPasses run the same way while the graph is in SSA form.
	SSAPasses []string `toml:"ssa_passes"`
	// LogLevel is a zap level name.
	LogLevel string `toml:"log_level"`
	// Concurrency bounds the number of units RunAll optimizes at once.
	Concurrency int `toml:"concurrency"`
	// MaxRounds bounds the repetitions of each pass list.
	MaxRounds int `toml:"max_rounds"`
	// Verify checks the graph after every stage.
	Verify bool `toml:"verify"`
	// Snapshots records the printed graph after every stage.
	Snapshots bool `toml:"snapshots"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Passes:      []string{"fold", "deadcode", "deadblock"},
		SSAPasses:   []string{"fold", "deadcode"},
		LogLevel:    "info",
		Concurrency: runtime.GOMAXPROCS(0),
		MaxRounds:   8,
		Verify:      true,
	}
}

// ParseConfig reads a TOML configuration. Keys absent from data keep their
// DefaultConfig values.
func ParseConfig(data []byte) (Config, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return Config{}, errors.ConfigFailed("parse toml", err)
	}
	var file Config
	if err := tree.Unmarshal(&file); err != nil {
		return Config{}, errors.ConfigFailed("decode toml", err)
	}

	cfg := DefaultConfig()
	if tree.Has("passes") {
		cfg.Passes = file.Passes
	}
	if tree.Has("ssa_passes") {
		cfg.SSAPasses = file.SSAPasses
	}
	if tree.Has("log_level") {
		cfg.LogLevel = file.LogLevel
	}
	if tree.Has("concurrency") {
		cfg.Concurrency = file.Concurrency
	}
	if tree.Has("max_rounds") {
		cfg.MaxRounds = file.MaxRounds
	}
	if tree.Has("verify") {
		cfg.Verify = file.Verify
	}
	if tree.Has("snapshots") {
		cfg.Snapshots = file.Snapshots
	}
	if err := cfg.Validate(nil); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.ConfigFailed("read "+path, err)
	}
	return ParseConfig(data)
}

// Validate checks that every named pass exists in r (the default registry
// when r is nil) and that the numeric settings are usable.
func (c Config) Validate(r *opt.Registry) error {
	if r == nil {
		r = opt.DefaultRegistry()
	}
	if missing := r.Missing(append(append([]string(nil), c.SSAPasses...), c.Passes...)); len(missing) > 0 {
		return errors.New(errors.PhaseConfig, errors.KindNotFound).
			Name(missing[0]).
			Detail("unknown pass (known: %v)", r.Names()).
			Build()
	}
	if c.Concurrency < 1 {
		return errors.InvalidInput(errors.PhaseConfig, "concurrency must be at least 1")
	}
	if c.MaxRounds < 1 {
		return errors.InvalidInput(errors.PhaseConfig, "max_rounds must be at least 1")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the parsed LogLevel; an empty LogLevel means info.
func (c Config) Level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.InfoLevel, nil
	}
	l, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return l, errors.ConfigFailed("log_level", err)
	}
	return l, nil
}
