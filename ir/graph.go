package ir

import (
	"github.com/wippyai/scriptc/errors"
)

// Edge is a directed control transfer between two blocks.
type Edge struct {
	From BlockID
	To   BlockID
}

// Graph is a control-flow graph. Blocks is indexed by ordinal; a removed
// block leaves a nil slot until the ordinals are compacted. Edges is the
// only record of control transfers used by predecessor and successor
// queries.
type Graph struct {
	Blocks []*BasicBlock
	Edges  []Edge
	Entry  BlockID
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// AddBlock appends a new empty block with the next ordinal.
func (g *Graph) AddBlock() *BasicBlock {
	b := &BasicBlock{ID: BlockID(len(g.Blocks))}
	g.Blocks = append(g.Blocks, b)
	return b
}

// Block returns the block with the given ordinal, or nil if it was removed
// or never existed.
func (g *Graph) Block(id BlockID) *BasicBlock {
	if id < 0 || int(id) >= len(g.Blocks) {
		return nil
	}
	return g.Blocks[id]
}

// Live returns the blocks that have not been removed, in ordinal order.
func (g *Graph) Live() []*BasicBlock {
	live := make([]*BasicBlock, 0, len(g.Blocks))
	for _, b := range g.Blocks {
		if b != nil {
			live = append(live, b)
		}
	}
	return live
}

// NumLive returns the number of blocks that have not been removed.
func (g *Graph) NumLive() int {
	n := 0
	for _, b := range g.Blocks {
		if b != nil {
			n++
		}
	}
	return n
}

// HasEdge reports whether the edge from -> to exists.
func (g *Graph) HasEdge(from, to BlockID) bool {
	for _, e := range g.Edges {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}

// AddEdge records the edge from -> to. It is idempotent and reports whether
// the edge was new.
func (g *Graph) AddEdge(from, to BlockID) bool {
	if g.HasEdge(from, to) {
		return false
	}
	g.Edges = append(g.Edges, Edge{From: from, To: to})
	return true
}

// RemoveEdge deletes the edge from -> to and reports whether it existed.
func (g *Graph) RemoveEdge(from, to BlockID) bool {
	for i, e := range g.Edges {
		if e.From == from && e.To == to {
			g.Edges = append(g.Edges[:i], g.Edges[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveBlock deletes a block, its outgoing edges and the phi entries its
// successors hold for it. Removing a block that another block still
// branches to is a contract violation.
func (g *Graph) RemoveBlock(id BlockID) {
	b := g.Block(id)
	if b == nil {
		errors.Contract(errors.PhaseGraph, int(id), "remove of missing block")
	}
	if id == g.Entry {
		errors.Contract(errors.PhaseGraph, int(id), "remove of entry block")
	}
	for _, e := range g.Edges {
		if e.To == id && e.From != id {
			panic(errors.LiveTarget(errors.PhaseGraph, int(id), int(e.From)))
		}
	}

	kept := g.Edges[:0]
	for _, e := range g.Edges {
		if e.From == id {
			if succ := g.Block(e.To); succ != nil && e.To != id {
				for _, p := range succ.Phis() {
					p.Phi.Remove(id)
				}
			}
			continue
		}
		kept = append(kept, e)
	}
	g.Edges = kept
	g.Blocks[id] = nil
}

// Jump terminates from with an unconditional branch to to and records the
// edge.
func (g *Graph) Jump(from, to BlockID) *Branch {
	br := &Branch{Target: BoundTarget(to)}
	g.Block(from).Append(br)
	g.AddEdge(from, to)
	return br
}

// CondJump terminates from with a conditional branch and records both edges.
func (g *Graph) CondJump(from BlockID, cond Operand, then, els BlockID) *ConditionalBranch {
	br := &ConditionalBranch{Cond: cond, Then: BoundTarget(then), Else: BoundTarget(els)}
	g.Block(from).Append(br)
	g.AddEdge(from, then)
	g.AddEdge(from, els)
	return br
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		Blocks: make([]*BasicBlock, len(g.Blocks)),
		Edges:  append([]Edge(nil), g.Edges...),
		Entry:  g.Entry,
	}
	for i, b := range g.Blocks {
		if b != nil {
			c.Blocks[i] = b.clone()
		}
	}
	return c
}

// NumInstrs returns the total instruction count over live blocks.
func (g *Graph) NumInstrs() int {
	n := 0
	for _, b := range g.Blocks {
		if b != nil {
			n += len(b.Instrs)
		}
	}
	return n
}
