// Package scriptc is the SSA middle-end of a compiler for a dynamically-typed
// scripting language.
//
// A front end lowers each function to a control-flow graph of three-address
// instructions over named variables. scriptc rewrites that graph into SSA
// form, runs constant folding and dead code elimination, and translates it
// back into plain assignments ready for a register allocator.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	scriptc/             Root package with Optimize and OptimizeText entry points
//	├── ir/              Operands, instructions, blocks, graphs, text form and verifier
//	├── ssa/             SSA construction, destruction and phi simplification
//	├── opt/             Fold, dead code and dead block passes plus the pass registry
//	├── pipeline/        Configured pass sequencing, snapshots and multi-unit driver
//	├── interp/          Reference interpreter used as a semantic oracle
//	├── errors/          Structured error types for debugging
//	└── cmd/scriptc-opt/ Command line driver and interactive stage stepper
//
// # Quick Start
//
// Optimize a graph given in text form:
//
//	out, err := scriptc.OptimizeText(ctx, `
//	entry BB0
//	BB0:
//	  x = 2
//	  y = mul x, 3
//	  call @print(y)
//	`, pipeline.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(out)
//
// prints
//
//	entry BB0
//	BB0:
//	  call @print(6)
//
// Graphs can also be built directly:
//
//	g := ir.NewGraph()
//	entry := g.AddBlock()
//	g.Entry = entry.ID
//	entry.Append(&ir.FunctionAssignment{Callee: ir.BuiltinPrint, Args: []ir.Operand{ir.NumberConst(1)}})
//	res, err := scriptc.Optimize(ctx, g)
//
// # Thread Safety
//
// A graph is owned by one goroutine at a time. A pipeline.Pipeline holds no
// per-run state and may optimize different graphs concurrently; see
// pipeline.Pipeline.RunAll.
package scriptc
