package ir

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Format returns the text form of the graph: an entry line, then every live
// block as a label followed by one indented line per instruction.
func Format(g *Graph) string {
	var b strings.Builder
	writeGraph(&b, g)
	return b.String()
}

// Write writes the text form of the graph to w.
func Write(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)
	writeGraph(bw, g)
	return bw.Flush()
}

// WriteFile writes the text form of the graph to disk.
func WriteFile(g *Graph, path string) error {
	if g == nil || path == "" {
		return nil
	}
	return os.WriteFile(path, []byte(Format(g)), 0644)
}

// FormatBlock returns the text form of a single block.
func FormatBlock(b *BasicBlock) string {
	var sb strings.Builder
	writeBlock(&sb, b)
	return sb.String()
}

type stringWriter interface {
	WriteString(s string) (int, error)
}

func writeGraph(w stringWriter, g *Graph) {
	if g == nil {
		return
	}
	w.WriteString("entry ")
	w.WriteString(g.Entry.String())
	w.WriteString("\n")
	for _, b := range g.Blocks {
		if b != nil {
			writeBlock(w, b)
		}
	}
}

func writeBlock(w stringWriter, b *BasicBlock) {
	w.WriteString(b.ID.String())
	w.WriteString(":\n")
	for _, instr := range b.Instrs {
		w.WriteString("  ")
		w.WriteString(instr.String())
		w.WriteString("\n")
	}
}
