package ir

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/scriptc/errors"
)

func TestVerify(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		edit   func(g *Graph)
		kind   errors.Kind
		detail string
	}{
		{name: "diamond", text: diamond},
		{name: "ssa diamond", text: ssaDiamond},
		{
			name: "missing entry", text: diamond,
			edit: func(g *Graph) { g.Entry = 9 },
			kind: errors.KindMalformed, detail: "entry block is missing",
		},
		{
			name: "misnumbered block", text: diamond,
			edit: func(g *Graph) { g.Blocks[2].ID = 5 },
			kind: errors.KindMalformed, detail: "index 2 has ordinal 5",
		},
		{
			name: "dangling edge", text: diamond,
			edit: func(g *Graph) { g.Edges = append(g.Edges, Edge{3, 8}) },
			kind: errors.KindMalformed, detail: "dangling edge BB3 -> BB8",
		},
		{
			name: "duplicate edge", text: diamond,
			edit: func(g *Graph) { g.Edges = append(g.Edges, Edge{0, 1}) },
			kind: errors.KindMalformed, detail: "duplicate edge BB0 -> BB1",
		},
		{
			name: "branch without edge", text: diamond,
			edit: func(g *Graph) { g.RemoveEdge(1, 3) },
			kind: errors.KindMalformed, detail: "branch to BB3 has no edge",
		},
		{
			name: "edge without branch", text: diamond,
			edit: func(g *Graph) { g.AddEdge(3, 0) },
			kind: errors.KindMalformed, detail: "edge to BB0 has no branch",
		},
		{
			name: "unbound target", text: diamond,
			edit: func(g *Graph) { g.Block(1).Instrs[1] = &Branch{Target: NewTarget()} },
			kind: errors.KindMalformed, detail: "unbound branch target",
		},
		{
			name: "phi after instruction", text: diamond,
			edit: func(g *Graph) {
				b := g.Block(3)
				b.Instrs = append(b.Instrs, NewPhi(Versioned("y", 3)))
			},
			kind: errors.KindMalformed, detail: "after non-phi",
		},
		{
			name: "terminator not last", text: diamond,
			edit: func(g *Graph) {
				b := g.Block(1)
				b.Instrs = append(b.Instrs, &Assignment{Target: Var("z"), Value: Nil})
			},
			kind: errors.KindMalformed, detail: "is not last",
		},
		{
			name: "phi missing entry", text: ssaDiamond,
			edit: func(g *Graph) { g.Block(3).Phis()[0].Phi.Remove(2) },
			kind: errors.KindPhiArity,
		},
		{
			name: "phi entry for wrong block", text: ssaDiamond,
			edit: func(g *Graph) { g.Block(3).Phis()[0].Phi.Values[1].Block = 1 },
			kind: errors.KindPhiArity, detail: "2 entries for predecessor BB1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := MustParse(tt.text)
			if tt.edit != nil {
				tt.edit(g)
			}
			err := Verify(g)
			if tt.kind == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseVerify, Kind: tt.kind}) {
				t.Fatalf("got %v, want verify/%s", err, tt.kind)
			}
			if !strings.Contains(err.Error(), tt.detail) {
				t.Errorf("error %q does not mention %q", err, tt.detail)
			}
		})
	}
}

func TestVerifySSA(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		kind   errors.Kind
		detail string
	}{
		{name: "ssa", text: ssaDiamond},
		{name: "unversioned definition", text: "entry BB0\nBB0:\n  x = 1\n", kind: errors.KindMalformed, detail: "not renamed"},
		{name: "live-in definition", text: "entry BB0\nBB0:\n  x.0 = 1\n", kind: errors.KindMalformed, detail: "not renamed"},
		{name: "unversioned read", text: "entry BB0\nBB0:\n  call @print(x)\n", kind: errors.KindMalformed, detail: "unversioned read"},
		{name: "duplicate definition", text: "entry BB0\nBB0:\n  x.1 = 1\n  x.1 = 2\n", kind: errors.KindDuplicateDefinition},
		{name: "unrenamed graph", text: diamond, kind: errors.KindMalformed, detail: "unversioned read"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySSA(MustParse(tt.text))
			if tt.kind == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseVerify, Kind: tt.kind}) {
				t.Fatalf("got %v, want verify/%s", err, tt.kind)
			}
			if !strings.Contains(err.Error(), tt.detail) {
				t.Errorf("error %q does not mention %q", err, tt.detail)
			}
		})
	}
}
