package ir

import (
	"github.com/wippyai/scriptc/errors"
)

// Verify checks that the graph is well formed:
//   - every live block's ID equals its index and the entry block is live
//   - edges join live blocks and are not duplicated
//   - each block's outgoing edges are exactly its terminator's targets
//   - phis form a contiguous prefix and nothing follows a terminator
//   - every phi has exactly one entry per predecessor edge
//
// The first violation found is returned.
func Verify(g *Graph) error {
	if g.Block(g.Entry) == nil {
		return errors.Malformed(errors.PhaseVerify, int(g.Entry), "entry block is missing")
	}
	for i, b := range g.Blocks {
		if b != nil && int(b.ID) != i {
			return errors.Malformed(errors.PhaseVerify, i, "block at index %d has ordinal %d", i, b.ID)
		}
	}

	seen := make(map[Edge]bool, len(g.Edges))
	for _, e := range g.Edges {
		if g.Block(e.From) == nil || g.Block(e.To) == nil {
			return errors.Malformed(errors.PhaseVerify, int(e.From), "dangling edge %s -> %s", e.From, e.To)
		}
		if seen[e] {
			return errors.Malformed(errors.PhaseVerify, int(e.From), "duplicate edge %s -> %s", e.From, e.To)
		}
		seen[e] = true
	}

	for _, b := range g.Live() {
		if err := verifyBlock(g, b, seen); err != nil {
			return err
		}
	}
	return nil
}

func verifyBlock(g *Graph, b *BasicBlock, edges map[Edge]bool) error {
	id := int(b.ID)
	phis := true
	for i, instr := range b.Instrs {
		if instr.Kind() == KindPhiAssignment {
			if !phis {
				return errors.Malformed(errors.PhaseVerify, id, "phi %q after non-phi instruction", instr.String())
			}
		} else {
			phis = false
		}
		if IsTerminator(instr) && i != len(b.Instrs)-1 {
			return errors.Malformed(errors.PhaseVerify, id, "terminator %q is not last", instr.String())
		}
	}

	want := make(map[BlockID]bool)
	if t := b.Terminator(); t != nil {
		for _, target := range t.Targets() {
			if !target.Bound() {
				return errors.Malformed(errors.PhaseVerify, id, "unbound branch target")
			}
			to := target.Block()
			if g.Block(to) == nil {
				return errors.Malformed(errors.PhaseVerify, id, "branch to missing block %s", to)
			}
			if !edges[Edge{From: b.ID, To: to}] {
				return errors.Malformed(errors.PhaseVerify, id, "branch to %s has no edge", to)
			}
			want[to] = true
		}
	}
	for _, succ := range g.Successors(b.ID) {
		if !want[succ] {
			return errors.Malformed(errors.PhaseVerify, id, "edge to %s has no branch", succ)
		}
	}

	preds := g.Predecessors(b.ID)
	for _, p := range b.Phis() {
		if len(p.Phi.Values) != len(preds) {
			return errors.PhiArity(errors.PhaseVerify, id, p.Target.String(), len(p.Phi.Values), len(preds))
		}
		for _, pred := range preds {
			count := 0
			for _, v := range p.Phi.Values {
				if v.Block == pred {
					count++
				}
			}
			if count != 1 {
				return errors.New(errors.PhaseVerify, errors.KindPhiArity).
					Block(id).
					Name(p.Target.String()).
					Detail("%d entries for predecessor %s", count, pred).
					Build()
			}
		}
	}
	return nil
}

// VerifySSA checks Verify's conditions plus the SSA invariants: every name
// is versioned and every versioned name has at most one definition.
func VerifySSA(g *Graph) error {
	if err := Verify(g); err != nil {
		return err
	}
	defs := make(map[NameValue]int)
	for _, b := range g.Live() {
		for _, instr := range b.Instrs {
			if n, ok := AssigneeOf(instr); ok {
				if !n.IsVersioned() || n.IsLiveIn() {
					return errors.New(errors.PhaseVerify, errors.KindMalformed).
						Block(int(b.ID)).
						Name(n.String()).
						Detail("definition is not renamed").
						Build()
				}
				defs[n]++
			}
			for _, op := range instr.Operands() {
				if n, ok := op.(NameValue); ok && !n.IsVersioned() {
					return errors.New(errors.PhaseVerify, errors.KindMalformed).
						Block(int(b.ID)).
						Name(n.String()).
						Detail("unversioned read").
						Build()
				}
			}
		}
	}
	for n, count := range defs {
		if count > 1 {
			return errors.DuplicateDefinition(errors.PhaseVerify, n.String(), count)
		}
	}
	return nil
}
