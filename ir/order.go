package ir

import "github.com/wippyai/scriptc/internal/bitset"

// Reachable returns the ordinals reachable from the entry block along edges.
func (g *Graph) Reachable() *bitset.Set {
	seen := bitset.New(len(g.Blocks))
	if g.Block(g.Entry) == nil {
		return seen
	}
	succs := g.successorMap()
	stack := []BlockID{g.Entry}
	seen.Set(int(g.Entry))
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, s := range succs[id] {
			if !seen.Has(int(s)) {
				seen.Set(int(s))
				stack = append(stack, s)
			}
		}
	}
	return seen
}

func (g *Graph) successorMap() map[BlockID][]BlockID {
	m := make(map[BlockID][]BlockID, len(g.Blocks))
	for _, e := range g.Edges {
		m[e.From] = append(m[e.From], e.To)
	}
	return m
}
