package opt

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/wippyai/scriptc/internal/irtest"
	"github.com/wippyai/scriptc/ir"
	"github.com/wippyai/scriptc/ssa"
)

func mustRun(t *rapid.T, p Pass, g *ir.Graph) bool {
	changed, err := p.Run(context.Background(), g)
	if err != nil {
		t.Fatalf("%s: %v", p.Name(), err)
	}
	if err := ir.Verify(g); err != nil {
		t.Fatalf("%s left a malformed graph: %v\n%s", p.Name(), err, ir.Format(g))
	}
	return changed
}

func TestPassesPreserveBehavior(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := irtest.Graph(8).Draw(t, "graph")
		want := irtest.Output(t, g)

		if err := ssa.Construct(context.Background(), g); err != nil {
			t.Fatalf("construct: %v", err)
		}
		mustRun(t, Fold{}, g)
		mustRun(t, DeadCode{}, g)
		if got := irtest.Output(t, g); got != want {
			t.Fatalf("ssa passes changed output to %q, want %q\n%s", got, want, ir.Format(g))
		}

		ssa.Destruct(g)
		for _, p := range []Pass{Fold{}, DeadCode{}, DeadBlock{}} {
			mustRun(t, p, g)
			if got := irtest.Output(t, g); got != want {
				t.Fatalf("%s changed output to %q, want %q\n%s", p.Name(), got, want, ir.Format(g))
			}
		}

		for i, b := range g.Blocks {
			if b == nil || int(b.ID) != i {
				t.Fatalf("ordinals not dense at %d\n%s", i, ir.Format(g))
			}
		}
		if mustRun(t, DeadBlock{}, g) {
			t.Fatalf("second deadblock run changed the graph\n%s", ir.Format(g))
		}
	})
}

func TestPassesOnUnversionedGraphs(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := irtest.Graph(8).Draw(t, "graph")
		want := irtest.Output(t, g)

		for _, p := range []Pass{Fold{}, DeadCode{}, DeadBlock{}} {
			mustRun(t, p, g)
			if got := irtest.Output(t, g); got != want {
				t.Fatalf("%s changed output to %q, want %q\n%s", p.Name(), got, want, ir.Format(g))
			}
		}
	})
}

func TestDeadCodeIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := irtest.Graph(8).Draw(t, "graph")
		if rapid.Bool().Draw(t, "ssa") {
			if err := ssa.Construct(context.Background(), g); err != nil {
				t.Fatalf("construct: %v", err)
			}
		}
		mustRun(t, DeadCode{}, g)
		before := ir.Format(g)
		if mustRun(t, DeadCode{}, g) {
			t.Fatalf("second deadcode run reported a change\n%s", before)
		}
		if diff := cmp.Diff(before, ir.Format(g)); diff != "" {
			t.Fatalf("second deadcode run changed the graph (-want +got):\n%s", diff)
		}
	})
}
