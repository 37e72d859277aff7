package pipeline

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/wippyai/scriptc/errors"
	"github.com/wippyai/scriptc/ir"
	"github.com/wippyai/scriptc/opt"
)

const constantDiamond = `
entry BB0
BB0:
  x = 2
  c = lt x, 3
  if c: br BB1; else: br BB2
BB1:
  y = 1
  br BB3
BB2:
  y = 2
  br BB3
BB3:
  call @print(y)
`

func newPipeline(t *testing.T, edit func(*Config)) *Pipeline {
	t.Helper()
	cfg := DefaultConfig()
	if edit != nil {
		edit(&cfg)
	}
	p, err := New(cfg, nil)
	assert.NilError(t, err)
	return p
}

func TestRun(t *testing.T) {
	p := newPipeline(t, func(c *Config) { c.Snapshots = true })

	res, err := p.Run(context.Background(), ir.MustParse(constantDiamond))
	assert.NilError(t, err)
	assert.Equal(t, ir.Format(res.Graph), "entry BB0\nBB0:\n  call @print(1)\n")

	var stages []string
	for _, s := range res.Snapshots {
		stages = append(stages, s.Stage)
	}
	assert.DeepEqual(t, stages, []string{
		StageInput, StageConstruct, "fold", "deadcode", StageDestruct, "fold", "deadblock", "fold",
	})
	assert.DeepEqual(t, res.Runs, map[string]int{"fold": 3, "deadcode": 1, "deadblock": 1})
	assert.Equal(t, res.SSARounds, 2)
	assert.Equal(t, res.Rounds, 3)

	assert.Assert(t, res.Snapshots[1].SSA)
	assert.Assert(t, strings.Contains(res.Snapshots[1].Text, "y.3 = phi [BB1: y.1], [BB2: y.2]"))
	assert.Assert(t, !res.Snapshots[4].SSA)
}

func TestRun_NoPasses(t *testing.T) {
	p := newPipeline(t, func(c *Config) {
		c.Passes = nil
		c.SSAPasses = nil
	})

	res, err := p.Run(context.Background(), ir.MustParse(constantDiamond))
	assert.NilError(t, err)
	assert.Equal(t, res.Rounds, 0)
	assert.Equal(t, res.SSARounds, 0)
	assert.Equal(t, ir.Format(res.Graph), strings.TrimLeft(`
entry BB0
BB0:
  x.1 = 2
  c.1 = lt x.1, 3
  if c.1: br BB1; else: br BB2
BB1:
  y.1 = 1
  y.3 = y.1
  br BB3
BB2:
  y.2 = 2
  y.3 = y.2
  br BB3
BB3:
  call @print(y.3)
`, "\n"))
}

func TestRun_VerifyCatchesBrokenPass(t *testing.T) {
	r := opt.DefaultRegistry()
	r.Register(opt.Func{PassName: "break-edges", Fn: func(_ context.Context, g *ir.Graph) (bool, error) {
		g.Edges = nil
		return true, nil
	}})
	cfg := DefaultConfig()
	cfg.Passes = []string{"break-edges"}
	p, err := New(cfg, r)
	assert.NilError(t, err)

	_, err = p.Run(context.Background(), ir.MustParse(constantDiamond))
	assert.ErrorContains(t, err, "name break-edges")
	assert.Assert(t, stderrors.Is(err, errors.New(errors.PhasePipeline, errors.KindMalformed).Build()))
}

func TestRun_RejectsSSAInput(t *testing.T) {
	p := newPipeline(t, nil)
	_, err := p.Run(context.Background(), ir.MustParse("entry BB0\nBB0:\n  y.1 = 1\n"))
	assert.Assert(t, stderrors.Is(err, errors.New(errors.PhaseConstruct, errors.KindInvalidInput).Build()))
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newPipeline(t, nil)
	_, err := p.Run(ctx, ir.MustParse(constantDiamond))
	assert.Assert(t, stderrors.Is(err, context.Canceled))
}

func TestNew_UnknownPass(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Passes = []string{"fold", "licm"}
	_, err := New(cfg, nil)
	assert.ErrorContains(t, err, "name licm")
}

func TestRunAll(t *testing.T) {
	p := newPipeline(t, func(c *Config) { c.Concurrency = 2 })

	units := make([]Unit, 5)
	for i := range units {
		src := strings.Replace(constantDiamond, "x = 2", "x = "+string(rune('0'+i*2)), 1)
		units[i] = Unit{Name: "unit" + string(rune('0'+i)), Graph: ir.MustParse(src)}
	}

	results, err := p.RunAll(context.Background(), units)
	assert.NilError(t, err)
	assert.Equal(t, len(results), len(units))
	for i, res := range results {
		// x < 3 only for x = 0 and x = 2
		want := "2"
		if i < 2 {
			want = "1"
		}
		assert.Equal(t, ir.Format(res.Graph), "entry BB0\nBB0:\n  call @print("+want+")\n", "unit %d", i)
	}
}

func TestRunAll_Failure(t *testing.T) {
	p := newPipeline(t, nil)
	units := []Unit{
		{Name: "good", Graph: ir.MustParse(constantDiamond)},
		{Name: "bad", Graph: ir.MustParse("entry BB0\nBB0:\n  y.1 = 1\n")},
	}

	_, err := p.RunAll(context.Background(), units)
	assert.ErrorContains(t, err, "name bad")
	assert.Assert(t, stderrors.Is(err, errors.New(errors.PhasePipeline, errors.KindInvalidInput).Build()))
}
