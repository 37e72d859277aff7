package ssa

import (
	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/wippyai/scriptc/ir"
)

// SimplifyPhis replaces every phi with exactly one distinct source other
// than itself by a plain assignment, repeating until no phi changes. The
// replacement copies are placed directly after the block's remaining phis.
// Phis that still hold unversioned entries are left alone. It returns the
// number of phis replaced.
func SimplifyPhis(g *ir.Graph) int {
	total := 0
	for {
		changed := 0
		for _, b := range g.Live() {
			changed += simplifyBlock(b)
		}
		if changed == 0 {
			break
		}
		total += changed
	}
	if total > 0 {
		Logger().Debug("trivial phis simplified", zap.Int("count", total))
	}
	return total
}

func simplifyBlock(b *ir.BasicBlock) int {
	phis := b.Phis()
	if len(phis) == 0 {
		return 0
	}

	var keep []ir.Instruction
	var copies []ir.Instruction
	for _, p := range phis {
		if src, ok := TrivialSource(p); ok {
			copies = append(copies, &ir.Assignment{Target: p.Target, Value: src})
			continue
		}
		keep = append(keep, p)
	}
	if len(copies) == 0 {
		return 0
	}

	rest := b.Instrs[len(phis):]
	instrs := make([]ir.Instruction, 0, len(b.Instrs))
	instrs = append(instrs, keep...)
	instrs = append(instrs, copies...)
	instrs = append(instrs, rest...)
	b.Instrs = instrs
	return len(copies)
}

// TrivialSource returns the single distinct incoming value of p, ignoring
// entries that refer to p's own target.
func TrivialSource(p *ir.PhiAssignment) (ir.NameValue, bool) {
	sources := mapset.NewThreadUnsafeSet[ir.NameValue]()
	for _, v := range p.Phi.Values {
		if !v.Value.IsVersioned() {
			return ir.NameValue{}, false
		}
		if v.Value == p.Target {
			continue
		}
		sources.Add(v.Value)
	}
	if sources.Cardinality() != 1 {
		return ir.NameValue{}, false
	}
	src, _ := sources.Pop()
	return src, true
}
