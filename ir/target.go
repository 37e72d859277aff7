package ir

import (
	"strconv"
	"sync/atomic"

	"github.com/wippyai/scriptc/errors"
)

// BlockID is the ordinal of a basic block: its index in Graph.Blocks.
type BlockID int

// NoBlock is the BlockID of nothing.
const NoBlock BlockID = -1

func (id BlockID) String() string { return "BB" + strconv.Itoa(int(id)) }

// BranchTarget is a single-assignment cell naming the block a branch jumps
// to. A target is either created bound or bound exactly once later with
// SetBlock, which lets the frontend emit forward branches before the target
// block exists.
type BranchTarget struct {
	// ordinal+1; zero means unbound
	slot atomic.Int64
}

// NewTarget returns an unbound target.
func NewTarget() *BranchTarget {
	return &BranchTarget{}
}

// BoundTarget returns a target already bound to id.
func BoundTarget(id BlockID) *BranchTarget {
	t := &BranchTarget{}
	t.slot.Store(int64(id) + 1)
	return t
}

// Bound reports whether the target has been bound.
func (t *BranchTarget) Bound() bool {
	return t.slot.Load() != 0
}

// Block returns the bound ordinal. Reading an unbound target is a contract
// violation and panics.
func (t *BranchTarget) Block() BlockID {
	v := t.slot.Load()
	if v == 0 {
		panic(errors.UnboundTarget(errors.PhaseGraph))
	}
	return BlockID(v - 1)
}

// SetBlock binds the target. Binding twice returns an error and leaves the
// first binding in place.
func (t *BranchTarget) SetBlock(id BlockID) error {
	if id < 0 {
		return errors.InvalidInput(errors.PhaseGraph, "branch target bound to negative ordinal")
	}
	if !t.slot.CompareAndSwap(0, int64(id)+1) {
		return errors.TargetRebound(errors.PhaseGraph, int(t.slot.Load()-1), int(id))
	}
	return nil
}

// Retarget rebinds an already bound target. Passes use it when they redirect
// or renumber blocks.
func (t *BranchTarget) Retarget(id BlockID) {
	if !t.Bound() {
		panic(errors.UnboundTarget(errors.PhaseGraph))
	}
	t.slot.Store(int64(id) + 1)
}

// Clone returns an independent target with the same binding.
func (t *BranchTarget) Clone() *BranchTarget {
	c := &BranchTarget{}
	c.slot.Store(t.slot.Load())
	return c
}

func (t *BranchTarget) String() string {
	v := t.slot.Load()
	if v == 0 {
		return "?"
	}
	return BlockID(v - 1).String()
}
