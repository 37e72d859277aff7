package opt

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/scriptc/ir"
)

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	want := []string{"deadblock", "deadcode", "fold", "simplify-phis"}
	if diff := cmp.Diff(want, r.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
	if !r.Has("fold") {
		t.Error("Has should return true for a registered pass")
	}
	if r.Get("inline") != nil {
		t.Error("Get should return nil for an unknown pass")
	}
	if diff := cmp.Diff([]string{"inline"}, r.Missing([]string{"fold", "inline"})); diff != "" {
		t.Errorf("Missing mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry()
	called := false
	r.Register(Func{PassName: "fold", Fn: func(context.Context, *ir.Graph) (bool, error) {
		called = true
		return true, nil
	}})

	changed, err := r.Get("fold").Run(context.Background(), ir.NewGraph())
	if err != nil || !changed || !called {
		t.Errorf("Run = (%v, %v), called = %v", changed, err, called)
	}
}

func TestSimplifyPhisPass(t *testing.T) {
	src := `
entry BB0
BB0:
  a.1 = 1
  br BB1
BB1:
  a.2 = phi [BB0: a.1]
  call @print(a.2)
`
	want := `
entry BB0
BB0:
  a.1 = 1
  br BB1
BB1:
  a.2 = a.1
  call @print(a.2)
`
	if !runPass(t, DefaultRegistry().Get("simplify-phis"), src, want) {
		t.Error("Run reported no change")
	}
}
