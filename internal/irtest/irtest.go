// Package irtest draws random well-formed graphs for property tests.
//
// Generated graphs are acyclic with forward edges only, so every execution
// terminates. Number names only ever hold numbers and the predicate name
// only holds booleans, which keeps every generated program free of runtime
// errors.
package irtest

import (
	"context"
	"strings"

	"pgregory.net/rapid"

	"github.com/wippyai/scriptc/interp"
	"github.com/wippyai/scriptc/ir"
)

// Names are the number-valued names a generated graph assigns and reads.
// Two of them spell text-form keywords.
var Names = []string{"a", "b", "phi", "call"}

// Predicate is the boolean-valued name used in branch conditions.
const Predicate = "p"

var arith = []ir.BinaryOp{ir.OpAddition, ir.OpSubtraction, ir.OpMultiplication}

// Env returns the live-in values generated graphs run with.
func Env() map[string]ir.Operand {
	env := make(map[string]ir.Operand, len(Names))
	for i, n := range Names {
		env[n] = ir.NumberConst(float64(i + 1))
	}
	return env
}

// Graph returns a generator of unversioned graphs with up to maxBlocks
// blocks.
func Graph(maxBlocks int) *rapid.Generator[*ir.Graph] {
	return rapid.Custom(func(t *rapid.T) *ir.Graph {
		g := ir.NewGraph()
		n := rapid.IntRange(1, maxBlocks).Draw(t, "blocks")
		for range n {
			g.AddBlock()
		}
		for i := range n {
			b := g.Blocks[i]
			count := rapid.IntRange(0, 4).Draw(t, "instrs")
			for range count {
				b.Append(instr(t))
			}
			if i == n-1 {
				args := make([]ir.Operand, len(Names))
				for j, name := range Names {
					args[j] = ir.Var(name)
				}
				b.Append(&ir.FunctionAssignment{Callee: ir.BuiltinPrint, Args: args})
				continue
			}
			terminate(t, g, ir.BlockID(i), n)
		}
		return g
	})
}

func name(t *rapid.T) ir.NameValue {
	return ir.Var(rapid.SampledFrom(Names).Draw(t, "name"))
}

func operand(t *rapid.T) ir.Operand {
	if rapid.Bool().Draw(t, "constant") {
		return ir.NumberConst(float64(rapid.IntRange(-5, 5).Draw(t, "number")))
	}
	return name(t)
}

func instr(t *rapid.T) ir.Instruction {
	switch rapid.IntRange(0, 5).Draw(t, "kind") {
	case 0:
		return &ir.Assignment{Target: name(t), Value: operand(t)}
	case 1:
		return &ir.BinaryAssignment{
			Target: name(t),
			Op:     rapid.SampledFrom(arith).Draw(t, "op"),
			Left:   operand(t),
			Right:  operand(t),
		}
	case 2:
		return &ir.UnaryAssignment{Target: name(t), Op: ir.OpNegation, Operand: operand(t)}
	case 3:
		return &ir.FunctionAssignment{Callee: ir.BuiltinPrint, Args: []ir.Operand{operand(t)}}
	case 4:
		return &ir.FunctionAssignment{Target: name(t), Callee: ir.BuiltinMathAbs, Args: []ir.Operand{operand(t)}}
	default:
		return &ir.BinaryAssignment{Target: ir.Var(Predicate), Op: ir.OpLessThan, Left: operand(t), Right: operand(t)}
	}
}

func terminate(t *rapid.T, g *ir.Graph, from ir.BlockID, n int) {
	then := ir.BlockID(rapid.IntRange(int(from)+1, n-1).Draw(t, "then"))
	if rapid.Bool().Draw(t, "unconditional") {
		g.Jump(from, then)
		return
	}
	els := ir.BlockID(rapid.IntRange(int(from)+1, n-1).Draw(t, "else"))
	var cond ir.Operand = ir.Var(Predicate)
	switch rapid.IntRange(0, 2).Draw(t, "cond") {
	case 0:
		cond = ir.True
	case 1:
		cond = ir.False
	}
	g.CondJump(from, cond, then, els)
}

// Output runs g with Env and returns its printed lines joined by newlines.
func Output(t interface{ Fatalf(string, ...any) }, g *ir.Graph) string {
	res, err := interp.Run(context.Background(), g, interp.Options{Env: Env()})
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, ir.Format(g))
	}
	return strings.Join(res.Output, "\n")
}
