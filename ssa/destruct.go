package ssa

import (
	"go.uber.org/zap"

	"github.com/wippyai/scriptc/errors"
	"github.com/wippyai/scriptc/ir"
)

// Destruct removes every phi from g. For each phi entry a copy
// "target = value" is inserted just before the terminator of the entry's
// predecessor; copies for one predecessor keep the source order of the phis.
// It returns the number of copies inserted.
func Destruct(g *ir.Graph) int {
	copies := 0
	removed := 0
	for _, b := range g.Live() {
		phis := b.Phis()
		if len(phis) == 0 {
			continue
		}
		for _, p := range phis {
			for _, v := range p.Phi.Values {
				pb := g.Block(v.Block)
				if pb == nil {
					errors.Contract(errors.PhaseDestruct, int(b.ID), "phi %s refers to missing block %s", p.Target, v.Block)
				}
				if pb.Terminator() == nil {
					errors.Contract(errors.PhaseDestruct, int(v.Block), "predecessor of %s has no terminator", b.ID)
				}
				pb.InsertBeforeTerminator(&ir.Assignment{Target: p.Target, Value: v.Value})
				copies++
			}
		}
		removed += b.Filter(func(instr ir.Instruction) bool {
			return instr.Kind() != ir.KindPhiAssignment
		})
	}

	Logger().Debug("ssa destructed",
		zap.Int("phis_removed", removed),
		zap.Int("copies", copies))
	return copies
}
