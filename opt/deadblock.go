package opt

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/scriptc/errors"
	"github.com/wippyai/scriptc/ir"
	"github.com/wippyai/scriptc/ssa"
)

// DeadBlock simplifies the block structure of a graph. Until nothing
// changes it:
//   - removes blocks not reachable from the entry block
//   - removes redirect blocks, retargeting their predecessors
//   - simplifies phis left with a single source
//   - fuses a block into its unique successor when it is that successor's
//     only predecessor
//
// and finally compacts block ordinals to 0..N-1.
type DeadBlock struct{}

// Name implements Pass.
func (DeadBlock) Name() string { return "deadblock" }

// Stats counts the changes made by one DeadBlock run.
type Stats struct {
	Unreachable int
	Redirects   int
	Phis        int
	Fused       int
	Compacted   bool
}

func (s Stats) changed() bool {
	return s.Unreachable+s.Redirects+s.Phis+s.Fused > 0 || s.Compacted
}

// Run implements Pass.
func (d DeadBlock) Run(ctx context.Context, g *ir.Graph) (bool, error) {
	st, err := d.Simplify(ctx, g)
	return st.changed(), err
}

// Simplify runs the pass and reports what it changed.
func (DeadBlock) Simplify(ctx context.Context, g *ir.Graph) (Stats, error) {
	var st Stats
	for {
		for {
			if err := ctx.Err(); err != nil {
				return st, errors.Canceled(errors.PhaseDeadBlock, err)
			}
			u := RemoveUnreachable(g)
			r := RemoveRedirects(g)
			st.Unreachable += u
			st.Redirects += r
			if u+r == 0 {
				break
			}
		}
		p := ssa.SimplifyPhis(g)
		f := FuseBlocks(g)
		st.Phis += p
		st.Fused += f
		if p+f == 0 {
			break
		}
	}
	st.Compacted = Compact(g)

	if st.changed() {
		Logger().Debug("deadblock",
			zap.Int("unreachable", st.Unreachable),
			zap.Int("redirects", st.Redirects),
			zap.Int("phis", st.Phis),
			zap.Int("fused", st.Fused),
			zap.Bool("compacted", st.Compacted),
			zap.Int("blocks", g.NumLive()))
	}
	return st, nil
}

// RemoveUnreachable removes every block that cannot be reached from the
// entry block and returns how many were removed.
func RemoveUnreachable(g *ir.Graph) int {
	reachable := g.Reachable()
	var dead []ir.BlockID
	for _, b := range g.Live() {
		if !reachable.Has(int(b.ID)) {
			dead = append(dead, b.ID)
		}
	}
	if len(dead) == 0 {
		return 0
	}

	// reachable blocks never branch into dead ones, so once the dead blocks
	// lose their out-edges nothing targets them
	for _, id := range dead {
		for _, succ := range g.Successors(id) {
			g.RemoveEdge(id, succ)
			if sb := g.Block(succ); sb != nil {
				for _, p := range sb.Phis() {
					p.Phi.Remove(id)
				}
			}
		}
	}
	for _, id := range dead {
		g.RemoveBlock(id)
	}
	return len(dead)
}

// RemoveRedirects removes blocks that hold nothing but an unconditional
// branch, sending their predecessors straight to the branch target. The
// entry block and self-loops are kept, as are redirects whose removal would
// give a phi two entries for the same predecessor.
func RemoveRedirects(g *ir.Graph) int {
	n := 0
	for _, r := range g.Live() {
		if r.ID == g.Entry || !r.IsRedirect() {
			continue
		}
		to := r.Instrs[0].(*ir.Branch).Target.Block()
		if to == r.ID {
			continue
		}
		preds := g.Predecessors(r.ID)
		if len(preds) == 0 {
			continue
		}

		tb := g.Block(to)
		if tb.PhiCount() > 0 && conflicts(g, preds, to) {
			continue
		}
		for _, p := range tb.Phis() {
			v, _ := p.Phi.Lookup(r.ID)
			p.Phi.Remove(r.ID)
			for _, pred := range preds {
				p.Phi.Values = append(p.Phi.Values, ir.PhiValue{Block: pred, Value: v})
			}
		}
		for _, pred := range preds {
			retarget(g.Block(pred), r.ID, to)
			g.RemoveEdge(pred, r.ID)
			g.AddEdge(pred, to)
		}
		g.RemoveBlock(r.ID)
		n++
	}
	return n
}

func conflicts(g *ir.Graph, preds []ir.BlockID, to ir.BlockID) bool {
	for _, pred := range preds {
		if g.HasEdge(pred, to) {
			return true
		}
	}
	return false
}

func retarget(b *ir.BasicBlock, from, to ir.BlockID) {
	t := b.Terminator()
	if t == nil {
		errors.Contract(errors.PhaseDeadBlock, int(b.ID), "predecessor of %s has no terminator", from)
	}
	for _, target := range t.Targets() {
		if target.Block() == from {
			target.Retarget(to)
		}
	}
}

// FuseBlocks merges each block into its unique successor when the block is
// that successor's only predecessor, and returns the number of merges.
func FuseBlocks(g *ir.Graph) int {
	n := 0
	for _, b := range g.Live() {
		for fuse(g, b) {
			n++
		}
	}
	return n
}

func fuse(g *ir.Graph, b *ir.BasicBlock) bool {
	if g.Block(b.ID) != b || b.Terminator() == nil {
		return false
	}
	succs := g.Successors(b.ID)
	if len(succs) != 1 {
		return false
	}
	s := succs[0]
	if s == b.ID || s == g.Entry {
		return false
	}
	if preds := g.Predecessors(s); len(preds) != 1 {
		return false
	}
	sb := g.Block(s)

	// phis become sequential copies, which is only sound while no phi
	// reads another phi of the same block
	phis := sb.Phis()
	targets := make(map[ir.NameValue]bool, len(phis))
	for _, p := range phis {
		targets[p.Target] = true
	}
	for _, p := range phis {
		for _, v := range p.Phi.Values {
			if targets[v.Value] && v.Value != p.Target {
				return false
			}
		}
	}

	b.Instrs = b.Instrs[:len(b.Instrs)-1]
	for _, instr := range sb.Instrs {
		if p, ok := instr.(*ir.PhiAssignment); ok {
			v, found := p.Phi.Lookup(b.ID)
			if !found {
				errors.Contract(errors.PhaseDeadBlock, int(s), "phi %s has no entry for %s", p.Target, b.ID)
			}
			instr = &ir.Assignment{Target: p.Target, Value: v}
		}
		b.Instrs = append(b.Instrs, instr)
	}
	sb.Instrs = nil

	g.RemoveEdge(b.ID, s)
	for _, t := range g.Successors(s) {
		g.RemoveEdge(s, t)
		g.AddEdge(b.ID, t)
		if tb := g.Block(t); tb != nil {
			for _, p := range tb.Phis() {
				for i := range p.Phi.Values {
					if p.Phi.Values[i].Block == s {
						p.Phi.Values[i].Block = b.ID
					}
				}
			}
		}
	}
	g.RemoveBlock(s)
	return true
}

// Compact renumbers the live blocks to 0..N-1 in their current order and
// rewrites every edge, branch target, phi entry and the entry block. It
// reports whether any ordinal changed.
func Compact(g *ir.Graph) bool {
	if g.NumLive() == len(g.Blocks) {
		return false
	}

	remap := make(map[ir.BlockID]ir.BlockID, len(g.Blocks))
	blocks := make([]*ir.BasicBlock, 0, g.NumLive())
	for _, b := range g.Blocks {
		if b == nil {
			continue
		}
		remap[b.ID] = ir.BlockID(len(blocks))
		blocks = append(blocks, b)
	}

	for _, b := range blocks {
		b.ID = remap[b.ID]
		for _, instr := range b.Instrs {
			switch in := instr.(type) {
			case *ir.PhiAssignment:
				for i, v := range in.Phi.Values {
					in.Phi.Values[i].Block = remap[v.Block]
				}
			case ir.Terminator:
				for _, t := range in.Targets() {
					t.Retarget(remap[t.Block()])
				}
			}
		}
	}
	for i, e := range g.Edges {
		g.Edges[i] = ir.Edge{From: remap[e.From], To: remap[e.To]}
	}
	g.Entry = remap[g.Entry]
	g.Blocks = blocks
	return true
}
