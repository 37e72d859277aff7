package opt

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/scriptc/errors"
	"github.com/wippyai/scriptc/ir"
)

// DeadCode removes branches that cannot be taken and assignments whose value
// is never read.
//
// A conditional branch on a constant (or on a builtin, which is always true)
// becomes an unconditional branch to the taken target. The edge to the
// untaken target is removed along with that target's phi entries for the
// branching block. A conditional branch whose arms agree becomes
// unconditional as well.
type DeadCode struct{}

// Name implements Pass.
func (DeadCode) Name() string { return "deadcode" }

// Run implements Pass.
func (DeadCode) Run(ctx context.Context, g *ir.Graph) (bool, error) {
	var branches, removed int
	for {
		if err := ctx.Err(); err != nil {
			return branches+removed > 0, errors.Canceled(errors.PhaseDeadCode, err)
		}
		br := foldBranches(g)
		rm := removeUnused(g)
		if br+rm == 0 {
			break
		}
		branches += br
		removed += rm
	}

	changed := branches+removed > 0
	if changed {
		Logger().Debug("deadcode",
			zap.Int("branches", branches),
			zap.Int("removed", removed))
	}
	return changed, nil
}

func foldBranches(g *ir.Graph) int {
	n := 0
	for _, b := range g.Live() {
		cb, ok := b.Terminator().(*ir.ConditionalBranch)
		if !ok {
			continue
		}

		then, els := cb.Then.Block(), cb.Else.Block()
		taken, untaken := then, els
		switch c := cb.Cond.(type) {
		case ir.Constant:
			if !c.Truthy() {
				taken, untaken = els, then
			}
		case ir.Builtin:
		default:
			if then != els {
				continue
			}
		}

		b.Replace(len(b.Instrs)-1, &ir.Branch{Target: ir.BoundTarget(taken)})
		if untaken != taken {
			g.RemoveEdge(b.ID, untaken)
			if ub := g.Block(untaken); ub != nil {
				for _, p := range ub.Phis() {
					p.Phi.Remove(b.ID)
				}
			}
		}
		n++
	}
	return n
}
