package opt

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/scriptc/errors"
	"github.com/wippyai/scriptc/ir"
)

// Fold evaluates operations on constant operands and propagates constants
// and copies.
//
// Only versioned names with exactly one definition are propagated, and the
// replacement must be a constant, a builtin, a live-in name or another
// single-definition name. Phi targets are never propagated nor used as
// replacements: once phis are destructed they are written at the end of
// every predecessor.
type Fold struct{}

// Name implements Pass.
func (Fold) Name() string { return "fold" }

// Run implements Pass.
func (Fold) Run(ctx context.Context, g *ir.Graph) (bool, error) {
	var folded, propagated, removed int
	for {
		if err := ctx.Err(); err != nil {
			return folded+propagated+removed > 0, errors.Canceled(errors.PhaseFold, err)
		}
		f := foldConstants(g)
		p := propagate(g)
		r := removeUnused(g)
		if f+p+r == 0 {
			break
		}
		folded += f
		propagated += p
		removed += r
	}

	changed := folded+propagated+removed > 0
	if changed {
		Logger().Debug("fold",
			zap.Int("folded", folded),
			zap.Int("propagated", propagated),
			zap.Int("removed", removed))
	}
	return changed, nil
}

// foldConstants replaces operations whose operands are all constants by an
// assignment of the result.
func foldConstants(g *ir.Graph) int {
	n := 0
	for _, b := range g.Live() {
		for i, instr := range b.Instrs {
			var (
				target ir.NameValue
				value  ir.Constant
				ok     bool
			)
			switch in := instr.(type) {
			case *ir.UnaryAssignment:
				if c, isConst := in.Operand.(ir.Constant); isConst {
					target = in.Target
					value, ok = ir.EvalUnary(in.Op, c)
				}
			case *ir.BinaryAssignment:
				l, lok := in.Left.(ir.Constant)
				r, rok := in.Right.(ir.Constant)
				if lok && rok {
					target = in.Target
					value, ok = ir.EvalBinary(in.Op, l, r)
				}
			}
			if ok {
				b.Replace(i, &ir.Assignment{Target: target, Value: value})
				n++
			}
		}
	}
	return n
}

type definition struct {
	instr ir.Instruction
	count int
}

func definitions(g *ir.Graph) map[ir.NameValue]*definition {
	defs := make(map[ir.NameValue]*definition)
	for _, b := range g.Live() {
		for _, instr := range b.Instrs {
			n, ok := ir.AssigneeOf(instr)
			if !ok {
				continue
			}
			d := defs[n]
			if d == nil {
				d = &definition{}
				defs[n] = d
			}
			d.instr = instr
			d.count++
		}
	}
	return defs
}

// propagate rewrites reads of copied names to the copied value and returns
// the number of operands rewritten.
func propagate(g *ir.Graph) int {
	defs := definitions(g)
	stable := func(op ir.Operand) bool {
		switch v := op.(type) {
		case ir.Constant, ir.Builtin:
			return true
		case ir.NameValue:
			if v.IsLiveIn() {
				return defs[v] == nil
			}
			if !v.IsVersioned() {
				return false
			}
			d := defs[v]
			return d != nil && d.count == 1 && d.instr.Kind() != ir.KindPhiAssignment
		}
		return false
	}

	n := 0
	for _, b := range g.Live() {
		for _, instr := range b.Instrs {
			a, ok := instr.(*ir.Assignment)
			if !ok || a.Target == a.Value || !stable(a.Target) || !stable(a.Value) {
				continue
			}
			replaced, _ := g.ReplaceUses(a.Target, a.Value)
			n += replaced
		}
	}
	return n
}
