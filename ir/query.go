package ir

import (
	"github.com/wippyai/scriptc/errors"
)

// InstrRef locates an instruction. Index is only valid until the block is
// next mutated.
type InstrRef struct {
	Instr Instruction
	Block BlockID
	Index int
}

// Predecessors returns the sources of edges into id, in edge-list order.
func (g *Graph) Predecessors(id BlockID) []BlockID {
	var preds []BlockID
	for _, e := range g.Edges {
		if e.To == id {
			preds = append(preds, e.From)
		}
	}
	return preds
}

// Successors returns the targets of edges out of id, in edge-list order.
func (g *Graph) Successors(id BlockID) []BlockID {
	var succs []BlockID
	for _, e := range g.Edges {
		if e.From == id {
			succs = append(succs, e.To)
		}
	}
	return succs
}

// Definitions returns every instruction that assigns name.
func (g *Graph) Definitions(name NameValue) []InstrRef {
	var defs []InstrRef
	for _, b := range g.Blocks {
		if b == nil {
			continue
		}
		for i, instr := range b.Instrs {
			if n, ok := AssigneeOf(instr); ok && n == name {
				defs = append(defs, InstrRef{Instr: instr, Block: b.ID, Index: i})
			}
		}
	}
	return defs
}

// FindDefinition returns the unique instruction assigning name. Zero or
// several definitions is a contract violation: SSA names are globally
// unique.
func (g *Graph) FindDefinition(name NameValue) InstrRef {
	defs := g.Definitions(name)
	switch len(defs) {
	case 1:
		return defs[0]
	case 0:
		panic(errors.MissingDefinition(errors.PhaseGraph, name.String(), errors.NoBlock))
	default:
		panic(errors.DuplicateDefinition(errors.PhaseGraph, name.String(), len(defs)))
	}
}

// FindUses returns every instruction reading name. An assignment's own
// target is not a use unless the name also appears among its operands.
func (g *Graph) FindUses(name NameValue) []InstrRef {
	var uses []InstrRef
	for _, b := range g.Blocks {
		if b == nil {
			continue
		}
		for i, instr := range b.Instrs {
			if Reads(instr, name) {
				uses = append(uses, InstrRef{Instr: instr, Block: b.ID, Index: i})
			}
		}
	}
	return uses
}

// UseCounts returns the number of reads of every name in one scan.
func (g *Graph) UseCounts() map[NameValue]int {
	counts := make(map[NameValue]int)
	for _, b := range g.Blocks {
		if b == nil {
			continue
		}
		for _, instr := range b.Instrs {
			for _, op := range instr.Operands() {
				if n, ok := op.(NameValue); ok {
					counts[n]++
				}
			}
		}
	}
	return counts
}

// ReplaceUses substitutes with for every read of name. Phi entries cannot
// hold a non-name operand; kept counts the entries left untouched for that
// reason.
func (g *Graph) ReplaceUses(name NameValue, with Operand) (replaced, kept int) {
	_, withName := with.(NameValue)
	for _, b := range g.Blocks {
		if b == nil {
			continue
		}
		for _, instr := range b.Instrs {
			if p, ok := instr.(*PhiAssignment); ok && !withName {
				for _, v := range p.Phi.Values {
					if v.Value == name {
						kept++
					}
				}
				continue
			}
			instr.ReplaceOperands(func(op Operand) Operand {
				if n, ok := op.(NameValue); ok && n == name {
					replaced++
					return with
				}
				return op
			})
		}
	}
	return replaced, kept
}
