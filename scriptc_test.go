package scriptc

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/wippyai/scriptc/errors"
	"github.com/wippyai/scriptc/ir"
	"github.com/wippyai/scriptc/pipeline"
)

func TestOptimizeText(t *testing.T) {
	out, err := OptimizeText(context.Background(), `
entry BB0
BB0:
  x = 2
  y = mul x, 3
  call @print(y)
`, pipeline.DefaultConfig())
	assert.NilError(t, err)
	assert.Equal(t, out, "entry BB0\nBB0:\n  call @print(6)\n")
}

func ExampleOptimizeText() {
	out, err := OptimizeText(context.Background(), `
entry BB0
BB0:
  x = 2
  y = mul x, 3
  call @print(y)
`, pipeline.DefaultConfig())
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Print(out)
	// Output:
	// entry BB0
	// BB0:
	//   call @print(6)
}

func TestOptimizeText_ParseError(t *testing.T) {
	_, err := OptimizeText(context.Background(), "BB0:\n  x = = 1\n", pipeline.DefaultConfig())
	assert.Assert(t, stderrors.Is(err, &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindInvalidInput}))
}

func TestOptimize(t *testing.T) {
	g := ir.NewGraph()
	entry := g.AddBlock()
	g.Entry = entry.ID
	entry.Append(&ir.Assignment{Target: ir.Var("x"), Value: ir.NumberConst(1)})
	entry.Append(&ir.FunctionAssignment{Callee: ir.BuiltinPrint, Args: []ir.Operand{ir.Var("x")}})

	res, err := Optimize(context.Background(), g)
	assert.NilError(t, err)
	assert.Equal(t, ir.Format(res.Graph), "entry BB0\nBB0:\n  call @print(1)\n")
}
