package ir

import (
	"fmt"
	"io"
	"strings"
)

// WriteDot renders the graph in Graphviz DOT format. Conditional edges are
// labeled T and F.
func WriteDot(w io.Writer, g *Graph, name string) error {
	if name == "" {
		name = "cfg"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", name)
	b.WriteString("  node [shape=box fontname=\"monospace\"];\n")

	for _, blk := range g.Blocks {
		if blk == nil {
			continue
		}
		var label strings.Builder
		label.WriteString(blk.ID.String())
		if blk.ID == g.Entry {
			label.WriteString(" (entry)")
		}
		label.WriteString(`\l`)
		for _, instr := range blk.Instrs {
			label.WriteString(dotEscape(instr.String()))
			label.WriteString(`\l`)
		}
		fmt.Fprintf(&b, "  %s [label=\"%s\"];\n", blk.ID, label.String())
	}

	for _, e := range g.Edges {
		attr := ""
		if from := g.Block(e.From); from != nil {
			if cb, ok := from.Terminator().(*ConditionalBranch); ok && cb.Then.Block() != cb.Else.Block() {
				if cb.Then.Block() == e.To {
					attr = " [label=\"T\"]"
				} else if cb.Else.Block() == e.To {
					attr = " [label=\"F\"]"
				}
			}
		}
		fmt.Fprintf(&b, "  %s -> %s%s;\n", e.From, e.To, attr)
	}

	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func dotEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return r.Replace(s)
}
