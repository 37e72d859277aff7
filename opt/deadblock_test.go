package opt

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/scriptc/ir"
)

func TestDeadBlock(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "dead branch after deadcode",
			src: `
entry BB0
BB0:
  br BB1
BB1:
  call @print("yes")
  br BB3
BB2:
  call @print("no")
  br BB3
BB3:
  call @print("done")
`,
			want: `
entry BB0
BB0:
  call @print("yes")
  call @print("done")
`,
		},
		{
			name: "redirect removed",
			src: `
entry BB0
BB0:
  if c: br BB1; else: br BB2
BB1:
  br BB3
BB2:
  call @print(2)
  br BB3
BB3:
  call @print(3)
`,
			want: `
entry BB0
BB0:
  if c: br BB2; else: br BB1
BB1:
  call @print(2)
  br BB2
BB2:
  call @print(3)
`,
		},
		{
			name: "redirect phi entries move to predecessor",
			src: `
entry BB0
BB0:
  if c.0: br BB1; else: br BB2
BB1:
  a.1 = call @tostring(1)
  br BB3
BB2:
  br BB3
BB3:
  y.1 = phi [BB1: a.1], [BB2: b.0]
  call @print(y.1)
`,
			want: `
entry BB0
BB0:
  if c.0: br BB1; else: br BB2
BB1:
  a.1 = call @tostring(1)
  br BB2
BB2:
  y.1 = phi [BB1: a.1], [BB0: b.0]
  call @print(y.1)
`,
		},
		{
			name: "fusion turns phi into copy",
			src: `
entry BB0
BB0:
  a.1 = 1
  br BB1
BB1:
  a.2 = phi [BB0: a.1]
  call @print(a.2)
`,
			want: `
entry BB0
BB0:
  a.1 = 1
  a.2 = a.1
  call @print(a.2)
`,
		},
		{
			name: "unreachable cycle",
			src: `
entry BB0
BB0:
  call @print(0)
BB1:
  br BB2
BB2:
  br BB1
`,
			want: `
entry BB0
BB0:
  call @print(0)
`,
		},
		{
			name: "unreachable predecessor leaves phi",
			src: `
entry BB0
BB0:
  x.1 = call @tostring(1)
  br BB2
BB1:
  x.2 = call @tostring(2)
  br BB2
BB2:
  x.3 = phi [BB0: x.1], [BB1: x.2]
  call @print(x.3)
`,
			want: `
entry BB0
BB0:
  x.1 = call @tostring(1)
  x.3 = x.1
  call @print(x.3)
`,
		},
		{
			name: "chain fused",
			src: `
entry BB0
BB0:
  call @print(0)
  br BB1
BB1:
  call @print(1)
  br BB2
BB2:
  call @print(2)
`,
			want: `
entry BB0
BB0:
  call @print(0)
  call @print(1)
  call @print(2)
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !runPass(t, DeadBlock{}, tt.src, tt.want) {
				t.Error("Run reported no change")
			}
		})
	}
}

func TestDeadBlock_NoChange(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "entry redirect and self loop",
			src: `
entry BB0
BB0:
  br BB1
BB1:
  br BB1
`,
		},
		{
			name: "redirect would duplicate phi predecessor",
			src: `
entry BB0
BB0:
  if c.0: br BB1; else: br BB2
BB1:
  br BB2
BB2:
  y.1 = phi [BB0: a.0], [BB1: b.0]
  call @print(y.1)
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if runPass(t, DeadBlock{}, tt.src, tt.src) {
				t.Error("Run reported a change")
			}
		})
	}
}

func TestDeadBlock_Stats(t *testing.T) {
	g := ir.MustParse(`
entry BB0
BB0:
  if c: br BB1; else: br BB2
BB1:
  br BB3
BB2:
  br BB3
BB3:
  call @print(1)
BB4:
  call @print(4)
`)
	st, err := DeadBlock{}.Simplify(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	want := Stats{Unreachable: 1, Redirects: 2, Fused: 1, Compacted: true}
	if diff := cmp.Diff(want, st); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestCompact(t *testing.T) {
	g := ir.MustParse(`
entry BB0
BB0:
  if c: br BB2; else: br BB4
BB1:
  call @print(1)
BB2:
  br BB4
BB3:
  call @print(3)
BB4:
  call @print(4)
`)
	g.RemoveBlock(1)
	g.RemoveBlock(3)

	if !Compact(g) {
		t.Fatal("Compact reported no change")
	}
	if Compact(g) {
		t.Error("second Compact reported a change")
	}
	for i, b := range g.Blocks {
		if b == nil || int(b.ID) != i {
			t.Fatalf("block slot %d holds %v", i, b)
		}
	}
	wantEdges := []ir.Edge{{From: 0, To: 1}, {From: 0, To: 2}, {From: 1, To: 2}}
	if diff := cmp.Diff(wantEdges, g.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	want := text(`
entry BB0
BB0:
  if c: br BB1; else: br BB2
BB1:
  br BB2
BB2:
  call @print(4)
`)
	if got := ir.Format(g); got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
	if err := ir.Verify(g); err != nil {
		t.Error(err)
	}
}
