package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/scriptc/errors"
)

// expectPanic runs fn and checks that it panics with an *errors.Error of the
// given kind.
func expectPanic(t *testing.T, kind errors.Kind, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		err, ok := r.(*errors.Error)
		if !ok {
			t.Fatalf("expected *errors.Error panic, got %v", r)
		}
		if err.Kind != kind {
			t.Errorf("panic kind = %s, want %s (%v)", err.Kind, kind, err)
		}
	}()
	fn()
}

func ids(blocks []*BasicBlock) []BlockID {
	out := make([]BlockID, len(blocks))
	for i, b := range blocks {
		out[i] = b.ID
	}
	return out
}

const sideEntry = `entry BB0
BB0:
  br BB2
BB1:
  br BB2
BB2:
  y.3 = phi [BB0: y.1], [BB1: y.2]
  call @print(y.3)
`

func TestRemoveBlock(t *testing.T) {
	g := MustParse(sideEntry)

	g.RemoveBlock(1)

	if g.Block(1) != nil {
		t.Error("BB1 still present")
	}
	if diff := cmp.Diff([]BlockID{0, 2}, ids(g.Live())); diff != "" {
		t.Errorf("live blocks (-want +got):\n%s", diff)
	}
	if got := g.NumLive(); got != 2 {
		t.Errorf("NumLive = %d, want 2", got)
	}
	if diff := cmp.Diff([]Edge{{0, 2}}, g.Edges); diff != "" {
		t.Errorf("edges (-want +got):\n%s", diff)
	}
	want := []PhiValue{{Block: 0, Value: Versioned("y", 1)}}
	if diff := cmp.Diff(want, g.Block(2).Phis()[0].Phi.Values); diff != "" {
		t.Errorf("phi entries (-want +got):\n%s", diff)
	}
	if err := Verify(g); err != nil {
		t.Errorf("verify: %v", err)
	}
}

func TestRemoveBlock_SelfLoop(t *testing.T) {
	g := MustParse("entry BB0\nBB0:\n  call @print(1)\nBB1:\n  br BB1\n")

	g.RemoveBlock(1)

	if len(g.Edges) != 0 {
		t.Errorf("edges left: %v", g.Edges)
	}
}

func TestRemoveBlock_Contract(t *testing.T) {
	tests := []struct {
		name string
		id   BlockID
		kind errors.Kind
	}{
		{"entry", 0, errors.KindContract},
		{"missing", 7, errors.KindContract},
		{"still targeted", 2, errors.KindLiveTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := MustParse(sideEntry)
			expectPanic(t, tt.kind, func() { g.RemoveBlock(tt.id) })
		})
	}
}

func TestEdges(t *testing.T) {
	g := NewGraph()
	g.AddBlock()
	g.AddBlock()

	if !g.AddEdge(0, 1) {
		t.Error("first AddEdge reported existing edge")
	}
	if g.AddEdge(0, 1) {
		t.Error("second AddEdge reported new edge")
	}
	if len(g.Edges) != 1 || !g.HasEdge(0, 1) || g.HasEdge(1, 0) {
		t.Errorf("unexpected edges %v", g.Edges)
	}
	if !g.RemoveEdge(0, 1) || g.RemoveEdge(0, 1) {
		t.Error("RemoveEdge reported wrong existence")
	}
}

func TestJumps(t *testing.T) {
	g := NewGraph()
	for range 3 {
		g.AddBlock()
	}
	g.CondJump(0, Var("c"), 1, 1)
	g.Jump(1, 2)

	if diff := cmp.Diff([]Edge{{0, 1}, {1, 2}}, g.Edges); diff != "" {
		t.Errorf("edges (-want +got):\n%s", diff)
	}
	if err := Verify(g); err != nil {
		t.Errorf("verify: %v", err)
	}
}

func TestClone(t *testing.T) {
	g := MustParse(sideEntry)
	c := g.Clone()

	c.Block(0).Terminator().Targets()[0].Retarget(1)
	c.Block(2).Phis()[0].Phi.Values[0].Value = Versioned("z", 9)
	c.Block(2).Instrs[1].(*FunctionAssignment).Args[0] = NumberConst(1)
	c.Edges[0] = Edge{0, 1}

	if got := Format(g); got != sideEntry {
		t.Errorf("original changed:\n%s", got)
	}
}

func TestReachable(t *testing.T) {
	g := MustParse(`entry BB0
BB0:
  br BB1
BB1:
  call @print(1)
BB2:
  br BB3
BB3:
  br BB2
`)
	if diff := cmp.Diff([]int{0, 1}, g.Reachable().ToSlice()); diff != "" {
		t.Errorf("reachable (-want +got):\n%s", diff)
	}

	g.RemoveEdge(0, 1)
	if diff := cmp.Diff([]int{0}, g.Reachable().ToSlice()); diff != "" {
		t.Errorf("reachable after cut (-want +got):\n%s", diff)
	}
}

func TestNumInstrs(t *testing.T) {
	g := MustParse(sideEntry)
	if got := g.NumInstrs(); got != 4 {
		t.Errorf("NumInstrs = %d, want 4", got)
	}
}
