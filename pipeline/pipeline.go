package pipeline

import (
	"context"
	stderrors "errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/scriptc/errors"
	"github.com/wippyai/scriptc/ir"
	"github.com/wippyai/scriptc/opt"
	"github.com/wippyai/scriptc/ssa"
)

// Stage names recorded in snapshots besides the pass names.
const (
	StageInput     = "input"
	StageConstruct = "construct"
	StageDestruct  = "destruct"
)

// Snapshot is the printed graph after one stage.
type Snapshot struct {
	Stage string
	Text  string
	// SSA is true while the graph is in SSA form.
	SSA bool
}

// Result describes one optimized graph.
type Result struct {
	Graph     *ir.Graph
	Snapshots []Snapshot
	// Runs counts, per pass name, the runs that changed the graph.
	Runs map[string]int
	// SSARounds and Rounds count the rounds over each pass list.
	SSARounds int
	Rounds    int
}

// Unit is one named graph handed to RunAll.
type Unit struct {
	Graph *ir.Graph
	Name  string
}

// Pipeline runs a configured sequence of passes. It holds no per-run state
// and may be used from several goroutines.
type Pipeline struct {
	registry *opt.Registry
	ssa      []opt.Pass
	post     []opt.Pass
	cfg      Config
}

// New validates cfg against r and returns a pipeline. A nil r means
// opt.DefaultRegistry.
func New(cfg Config, r *opt.Registry) (*Pipeline, error) {
	if r == nil {
		r = opt.DefaultRegistry()
	}
	if err := cfg.Validate(r); err != nil {
		return nil, err
	}
	p := &Pipeline{registry: r, cfg: cfg}
	for _, name := range cfg.SSAPasses {
		p.ssa = append(p.ssa, r.Get(name))
	}
	for _, name := range cfg.Passes {
		p.post = append(p.post, r.Get(name))
	}
	return p, nil
}

// Config returns the pipeline's configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

type run struct {
	p   *Pipeline
	g   *ir.Graph
	res *Result
	log *zap.Logger
}

// Run optimizes g in place. g must be unversioned.
func (p *Pipeline) Run(ctx context.Context, g *ir.Graph) (*Result, error) {
	return p.run(ctx, g, Logger())
}

func (p *Pipeline) run(ctx context.Context, g *ir.Graph, log *zap.Logger) (*Result, error) {
	r := &run{
		p:   p,
		g:   g,
		res: &Result{Graph: g, Runs: make(map[string]int)},
		log: log,
	}
	start := time.Now()
	before := g.NumInstrs()

	if err := r.stage(StageInput, false); err != nil {
		return r.res, err
	}

	if err := ssa.Construct(ctx, g); err != nil {
		return r.res, err
	}
	if err := r.stage(StageConstruct, true); err != nil {
		return r.res, err
	}

	rounds, err := r.passes(ctx, p.ssa, true)
	r.res.SSARounds = rounds
	if err != nil {
		return r.res, err
	}

	ssa.Destruct(g)
	if err := r.stage(StageDestruct, false); err != nil {
		return r.res, err
	}

	rounds, err = r.passes(ctx, p.post, false)
	r.res.Rounds = rounds
	if err != nil {
		return r.res, err
	}

	log.Info("pipeline finished",
		zap.Int("blocks", g.NumLive()),
		zap.Int("instrs_before", before),
		zap.Int("instrs_after", g.NumInstrs()),
		zap.Int("ssa_rounds", r.res.SSARounds),
		zap.Int("rounds", r.res.Rounds),
		zap.Duration("elapsed", time.Since(start)))
	return r.res, nil
}

// passes runs list until a full round changes nothing and returns the number
// of rounds.
func (r *run) passes(ctx context.Context, list []opt.Pass, inSSA bool) (int, error) {
	if len(list) == 0 {
		return 0, nil
	}
	rounds := 0
	for rounds < r.p.cfg.MaxRounds {
		rounds++
		changed := false
		for _, pass := range list {
			if err := ctx.Err(); err != nil {
				return rounds, errors.Canceled(errors.PhasePipeline, err)
			}
			c, err := pass.Run(ctx, r.g)
			if err != nil {
				return rounds, err
			}
			r.log.Debug("pass finished",
				zap.String("pass", pass.Name()),
				zap.Bool("ssa", inSSA),
				zap.Int("round", rounds),
				zap.Bool("changed", c))
			if !c {
				continue
			}
			changed = true
			r.res.Runs[pass.Name()]++
			if err := r.stage(pass.Name(), inSSA); err != nil {
				return rounds, err
			}
		}
		if !changed {
			break
		}
	}
	return rounds, nil
}

// stage verifies the graph and records a snapshot as configured.
func (r *run) stage(name string, inSSA bool) error {
	if r.p.cfg.Verify {
		verify := ir.Verify
		if inSSA {
			verify = ir.VerifySSA
		}
		if err := verify(r.g); err != nil {
			return errors.New(errors.PhasePipeline, errors.KindMalformed).
				Name(name).
				Cause(err).
				Detail("graph malformed after stage").
				Build()
		}
	}
	if r.p.cfg.Snapshots {
		r.res.Snapshots = append(r.res.Snapshots, Snapshot{
			Stage: name,
			Text:  ir.Format(r.g),
			SSA:   inSSA,
		})
	}
	return nil
}

// RunAll optimizes every unit, at most Config.Concurrency at a time. Results
// are returned in unit order. The first failure cancels the remaining units
// and is returned with the unit's name.
func (p *Pipeline) RunAll(ctx context.Context, units []Unit) ([]*Result, error) {
	results := make([]*Result, len(units))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.cfg.Concurrency)

	for i, u := range units {
		eg.Go(func() error {
			res, err := p.run(ctx, u.Graph, Logger().With(zap.String("unit", u.Name)))
			results[i] = res
			if err != nil {
				return unitFailed(u.Name, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func unitFailed(name string, err error) error {
	kind := errors.KindInvalidInput
	var e *errors.Error
	if stderrors.As(err, &e) {
		kind = e.Kind
	}
	return errors.New(errors.PhasePipeline, kind).
		Name(name).
		Cause(err).
		Detail("unit failed").
		Build()
}
