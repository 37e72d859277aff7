package ir

import (
	"github.com/wippyai/scriptc/errors"
)

// BasicBlock is a straight-line instruction sequence. Phis occupy a
// contiguous prefix; a Terminator, when present, is the last instruction.
type BasicBlock struct {
	Instrs []Instruction
	ID     BlockID
}

// PhiCount returns the length of the phi prefix.
func (b *BasicBlock) PhiCount() int {
	n := 0
	for _, instr := range b.Instrs {
		if instr.Kind() != KindPhiAssignment {
			break
		}
		n++
	}
	return n
}

// Phis returns the phi prefix.
func (b *BasicBlock) Phis() []*PhiAssignment {
	n := b.PhiCount()
	phis := make([]*PhiAssignment, n)
	for i := 0; i < n; i++ {
		phis[i] = b.Instrs[i].(*PhiAssignment)
	}
	return phis
}

// PhiFor returns the phi whose target has the given base name.
func (b *BasicBlock) PhiFor(name string) *PhiAssignment {
	for _, p := range b.Phis() {
		if p.Target.Name == name {
			return p
		}
	}
	return nil
}

// Terminator returns the block's terminator, or nil for an exit block.
func (b *BasicBlock) Terminator() Terminator {
	if len(b.Instrs) == 0 {
		return nil
	}
	t, _ := b.Instrs[len(b.Instrs)-1].(Terminator)
	return t
}

// InsertPhi appends p to the phi prefix.
func (b *BasicBlock) InsertPhi(p *PhiAssignment) {
	b.insertAt(b.PhiCount(), p)
}

// Append adds instr at the end of the block. Appending a phi after a non-phi
// or anything after a terminator is a contract violation.
func (b *BasicBlock) Append(instr Instruction) {
	if b.Terminator() != nil {
		errors.Contract(errors.PhaseGraph, int(b.ID), "append %q after terminator", instr.String())
	}
	if instr.Kind() == KindPhiAssignment && b.PhiCount() != len(b.Instrs) {
		errors.Contract(errors.PhaseGraph, int(b.ID), "phi %q after non-phi instruction", instr.String())
	}
	b.Instrs = append(b.Instrs, instr)
}

// InsertBeforeTerminator places instr just before the terminator, or at the
// end of an exit block.
func (b *BasicBlock) InsertBeforeTerminator(instr Instruction) {
	pos := len(b.Instrs)
	if b.Terminator() != nil {
		pos--
	}
	b.insertAt(pos, instr)
}

// Replace swaps the instruction at i.
func (b *BasicBlock) Replace(i int, instr Instruction) {
	b.Instrs[i] = instr
}

// RemoveAt deletes the instruction at i.
func (b *BasicBlock) RemoveAt(i int) {
	b.Instrs = append(b.Instrs[:i], b.Instrs[i+1:]...)
}

// Filter keeps the instructions for which keep returns true and returns the
// number removed.
func (b *BasicBlock) Filter(keep func(Instruction) bool) int {
	kept := b.Instrs[:0]
	for _, instr := range b.Instrs {
		if keep(instr) {
			kept = append(kept, instr)
		}
	}
	removed := len(b.Instrs) - len(kept)
	for i := len(kept); i < len(b.Instrs); i++ {
		b.Instrs[i] = nil
	}
	b.Instrs = kept
	return removed
}

// Assigns reports whether any instruction of the block assigns the base name.
func (b *BasicBlock) Assigns(name string) bool {
	for _, instr := range b.Instrs {
		if n, ok := AssigneeOf(instr); ok && n.Name == name {
			return true
		}
	}
	return false
}

// LastAssignment returns the last name assigned with the given base name,
// scanning backward from the end of the block.
func (b *BasicBlock) LastAssignment(name string) (NameValue, bool) {
	for i := len(b.Instrs) - 1; i >= 0; i-- {
		if n, ok := AssigneeOf(b.Instrs[i]); ok && n.Name == name {
			return n, true
		}
	}
	return NameValue{}, false
}

// IsRedirect reports whether the block holds nothing but an unconditional
// branch.
func (b *BasicBlock) IsRedirect() bool {
	if len(b.Instrs) != 1 {
		return false
	}
	_, ok := b.Instrs[0].(*Branch)
	return ok
}

func (b *BasicBlock) insertAt(pos int, instr Instruction) {
	b.Instrs = append(b.Instrs, nil)
	copy(b.Instrs[pos+1:], b.Instrs[pos:])
	b.Instrs[pos] = instr
}

func (b *BasicBlock) clone() *BasicBlock {
	c := &BasicBlock{ID: b.ID, Instrs: make([]Instruction, len(b.Instrs))}
	for i, instr := range b.Instrs {
		c.Instrs[i] = instr.Clone()
	}
	return c
}

// AssigneeOf returns the name instr defines, if any.
func AssigneeOf(instr Instruction) (NameValue, bool) {
	if a, ok := instr.(Assigner); ok {
		return a.Assignee()
	}
	return NameValue{}, false
}
