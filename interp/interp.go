// Package interp executes a graph directly. It accepts graphs in any form
// (before SSA construction, in SSA form, after destruction) and is the
// semantic reference the optimizer is tested against.
package interp

import (
	"context"

	"github.com/wippyai/scriptc/errors"
	"github.com/wippyai/scriptc/ir"
)

// DefaultMaxSteps bounds the number of blocks executed by Run.
const DefaultMaxSteps = 100000

// Options configures a run.
type Options struct {
	// Env holds the values of names on entry to the unit. Names absent from
	// Env start as nil.
	Env map[string]ir.Operand
	// MaxSteps bounds the number of blocks executed; zero means
	// DefaultMaxSteps.
	MaxSteps int
}

// Result is the observable outcome of a run.
type Result struct {
	// Output holds one line per print call.
	Output []string
	// Path is the sequence of blocks executed.
	Path []ir.BlockID
	// Exit is the block that ended execution.
	Exit ir.BlockID
}

type machine struct {
	g    *ir.Graph
	env  map[string]ir.Operand
	vars map[ir.NameValue]ir.Operand
	out  []string
}

// Run executes g from its entry block until a block without terminator
// finishes. Runtime errors are returned as *errors.Error with PhaseExec;
// the partial Result is returned alongside.
func Run(ctx context.Context, g *ir.Graph, opts Options) (*Result, error) {
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	m := &machine{
		g:    g,
		env:  opts.Env,
		vars: make(map[ir.NameValue]ir.Operand),
	}
	res := &Result{}

	prev, cur := ir.NoBlock, g.Entry
	for step := 0; ; step++ {
		if step >= maxSteps {
			res.Output = m.out
			return res, errors.Runtime(int(cur), "step limit %d exceeded", maxSteps)
		}
		if step%1024 == 0 {
			if err := ctx.Err(); err != nil {
				res.Output = m.out
				return res, errors.Canceled(errors.PhaseExec, err)
			}
		}

		b := g.Block(cur)
		if b == nil {
			res.Output = m.out
			return res, errors.Runtime(int(cur), "control reached a removed block")
		}
		res.Path = append(res.Path, cur)

		next, err := m.execBlock(b, prev)
		if err != nil {
			res.Output = m.out
			return res, err
		}
		if next == ir.NoBlock {
			res.Output = m.out
			res.Exit = cur
			return res, nil
		}
		prev, cur = cur, next
	}
}

func (m *machine) execBlock(b *ir.BasicBlock, prev ir.BlockID) (ir.BlockID, error) {
	phis := b.Phis()
	if len(phis) > 0 {
		if prev == ir.NoBlock {
			return ir.NoBlock, errors.Runtime(int(b.ID), "phi in a block entered without predecessor")
		}
		// phis read their inputs before any of them assigns
		vals := make([]ir.Operand, len(phis))
		for i, p := range phis {
			src, ok := p.Phi.Lookup(prev)
			if !ok {
				return ir.NoBlock, errors.Runtime(int(b.ID), "phi %s has no entry for %s", p.Target, prev)
			}
			v, err := m.read(b.ID, src)
			if err != nil {
				return ir.NoBlock, err
			}
			vals[i] = v
		}
		for i, p := range phis {
			m.vars[p.Target] = vals[i]
		}
	}

	for _, instr := range b.Instrs[len(phis):] {
		switch in := instr.(type) {
		case *ir.DebugLocation:
		case *ir.Assignment:
			v, err := m.eval(b.ID, in.Value)
			if err != nil {
				return ir.NoBlock, err
			}
			m.vars[in.Target] = v
		case *ir.UnaryAssignment:
			v, err := m.unary(b.ID, in)
			if err != nil {
				return ir.NoBlock, err
			}
			m.vars[in.Target] = v
		case *ir.BinaryAssignment:
			v, err := m.binary(b.ID, in)
			if err != nil {
				return ir.NoBlock, err
			}
			m.vars[in.Target] = v
		case *ir.FunctionAssignment:
			v, err := m.call(b.ID, in)
			if err != nil {
				return ir.NoBlock, err
			}
			if !in.Target.IsZero() {
				m.vars[in.Target] = v
			}
		case *ir.Branch:
			return in.Target.Block(), nil
		case *ir.ConditionalBranch:
			c, err := m.eval(b.ID, in.Cond)
			if err != nil {
				return ir.NoBlock, err
			}
			if truthy(c) {
				return in.Then.Block(), nil
			}
			return in.Else.Block(), nil
		case *ir.PhiAssignment:
			return ir.NoBlock, errors.Runtime(int(b.ID), "phi %s after non-phi instruction", in.Target)
		}
	}
	return ir.NoBlock, nil
}

func (m *machine) eval(block ir.BlockID, op ir.Operand) (ir.Operand, error) {
	if n, ok := op.(ir.NameValue); ok {
		return m.read(block, n)
	}
	return op, nil
}

func (m *machine) read(block ir.BlockID, n ir.NameValue) (ir.Operand, error) {
	if v, ok := m.vars[n]; ok {
		return v, nil
	}
	if !n.IsVersioned() || n.IsLiveIn() {
		if v, ok := m.env[n.Name]; ok {
			return v, nil
		}
		return ir.Nil, nil
	}
	return nil, errors.Runtime(int(block), "read of %s before its definition", n)
}

func (m *machine) unary(block ir.BlockID, in *ir.UnaryAssignment) (ir.Operand, error) {
	v, err := m.eval(block, in.Operand)
	if err != nil {
		return nil, err
	}
	if c, ok := v.(ir.Constant); ok {
		if r, ok := ir.EvalUnary(in.Op, c); ok {
			return r, nil
		}
	} else if in.Op == ir.OpLogicalNot {
		return ir.False, nil
	}
	return nil, errors.Runtime(int(block), "attempt to perform %s on a %s value", in.Op, typeName(v))
}

func (m *machine) binary(block ir.BlockID, in *ir.BinaryAssignment) (ir.Operand, error) {
	l, err := m.eval(block, in.Left)
	if err != nil {
		return nil, err
	}
	r, err := m.eval(block, in.Right)
	if err != nil {
		return nil, err
	}
	lc, lok := l.(ir.Constant)
	rc, rok := r.(ir.Constant)
	if lok && rok {
		if v, ok := ir.EvalBinary(in.Op, lc, rc); ok {
			return v, nil
		}
	} else {
		switch in.Op {
		case ir.OpEqual:
			return ir.BoolConst(l == r), nil
		case ir.OpNotEqual:
			return ir.BoolConst(l != r), nil
		}
	}
	return nil, errors.Runtime(int(block), "attempt to perform %s on %s and %s values", in.Op, typeName(l), typeName(r))
}

func (m *machine) call(block ir.BlockID, in *ir.FunctionAssignment) (ir.Operand, error) {
	callee, err := m.eval(block, in.Callee)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(ir.Builtin)
	if !ok {
		return nil, errors.Runtime(int(block), "attempt to call a %s value", typeName(callee))
	}
	args := make([]ir.Operand, len(in.Args))
	for i, a := range in.Args {
		if args[i], err = m.eval(block, a); err != nil {
			return nil, err
		}
	}
	return m.callBuiltin(block, fn, args)
}

func truthy(v ir.Operand) bool {
	if c, ok := v.(ir.Constant); ok {
		return c.Truthy()
	}
	return true
}

func typeName(v ir.Operand) string {
	switch x := v.(type) {
	case ir.Constant:
		return x.Kind().String()
	case ir.Builtin:
		return "function"
	default:
		return "unknown"
	}
}
