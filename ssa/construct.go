package ssa

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/wippyai/scriptc/errors"
	"github.com/wippyai/scriptc/internal/bitset"
	"github.com/wippyai/scriptc/ir"
)

// Construct converts g to SSA form in place. Every name in g must be
// unversioned and the entry block must have no predecessors.
func Construct(ctx context.Context, g *ir.Graph) error {
	if err := checkUnversioned(g); err != nil {
		return err
	}
	if g.Block(g.Entry) == nil {
		return errors.InvalidInput(errors.PhaseConstruct, "graph has no entry block")
	}
	if preds := g.Predecessors(g.Entry); len(preds) > 0 {
		return errors.New(errors.PhaseConstruct, errors.KindInvalidInput).
			Block(int(g.Entry)).
			Detail("entry block has %d predecessors", len(preds)).
			Build()
	}
	if err := InsertPhis(ctx, g); err != nil {
		return err
	}
	defs := Rename(g)
	ResolvePhis(g)
	simplified := SimplifyPhis(g)

	Logger().Debug("ssa constructed",
		zap.Int("blocks", g.NumLive()),
		zap.Int("definitions", defs),
		zap.Int("phis", countPhis(g)),
		zap.Int("phis_simplified", simplified))
	return nil
}

// InsertPhis runs the phi placement fixpoint. On return every phi has one
// unversioned entry per predecessor edge of its block.
//
// Blocks without predecessors never receive phis; a name they read before
// assigning it is a live-in value.
func InsertPhis(ctx context.Context, g *ir.Graph) error {
	ins := &phiInserter{
		g:     g,
		preds: make(map[ir.BlockID][]ir.BlockID, len(g.Blocks)),
		dirty: bitset.New(len(g.Blocks)),
	}
	for _, b := range g.Live() {
		ins.preds[b.ID] = g.Predecessors(b.ID)
		ins.dirty.Set(int(b.ID))
	}

	rounds := 0
	for {
		if err := ctx.Err(); err != nil {
			return errors.Canceled(errors.PhaseConstruct, err)
		}
		rounds++

		for _, b := range g.Live() {
			if !ins.dirty.Has(int(b.ID)) {
				continue
			}
			ins.dirty.Clear(int(b.ID))
			ins.scan(b)
		}
		ins.fillEmpty()

		if ins.dirty.Empty() && !ins.hasEmpty() {
			break
		}
	}

	Logger().Debug("phi insertion reached fixpoint",
		zap.Int("rounds", rounds),
		zap.Int("inserted", ins.inserted))
	return nil
}

type phiInserter struct {
	g        *ir.Graph
	preds    map[ir.BlockID][]ir.BlockID
	dirty    *bitset.Set
	inserted int
}

// scan walks b in order and gives every name read before a local
// assignment a phi.
func (ins *phiInserter) scan(b *ir.BasicBlock) {
	assigned := mapset.NewThreadUnsafeSet[string]()
	hasPreds := len(ins.preds[b.ID]) > 0

	instrs := append([]ir.Instruction(nil), b.Instrs...)
	for _, instr := range instrs {
		if p, ok := instr.(*ir.PhiAssignment); ok {
			assigned.Add(p.Target.Name)
			continue
		}
		for _, op := range instr.Operands() {
			n, ok := op.(ir.NameValue)
			if !ok || n.IsVersioned() || assigned.Contains(n.Name) {
				continue
			}
			if hasPreds && b.PhiFor(n.Name) == nil {
				p := ir.NewPhi(ir.Var(n.Name))
				b.InsertPhi(p)
				ins.inserted++
				ins.fill(b, p)
			}
			assigned.Add(n.Name)
		}
		if n, ok := ir.AssigneeOf(instr); ok && !n.IsVersioned() {
			assigned.Add(n.Name)
		}
	}
}

// fill gives p one entry per predecessor and pushes the requirement into
// predecessors that do not assign the name themselves.
func (ins *phiInserter) fill(b *ir.BasicBlock, p *ir.PhiAssignment) {
	name := p.Target.Name
	for _, pred := range ins.preds[b.ID] {
		p.Phi.Values = append(p.Phi.Values, ir.PhiValue{Block: pred, Value: ir.Var(name)})

		pb := ins.g.Block(pred)
		if pb.Assigns(name) || len(ins.preds[pred]) == 0 {
			continue
		}
		pb.InsertPhi(ir.NewPhi(ir.Var(name)))
		ins.inserted++
		ins.dirty.Set(int(pred))
	}
}

func (ins *phiInserter) fillEmpty() {
	for _, b := range ins.g.Live() {
		if len(ins.preds[b.ID]) == 0 {
			continue
		}
		for _, p := range b.Phis() {
			if len(p.Phi.Values) == 0 {
				ins.fill(b, p)
			}
		}
	}
}

func (ins *phiInserter) hasEmpty() bool {
	for _, b := range ins.g.Live() {
		if len(ins.preds[b.ID]) == 0 {
			continue
		}
		for _, p := range b.Phis() {
			if len(p.Phi.Values) == 0 {
				return true
			}
		}
	}
	return false
}

// Rename gives every definition a fresh version and rewrites reads to the
// version current in their block. Phi entries are left for ResolvePhis.
// It returns the number of definitions renamed.
//
// Blocks are walked in storage order. The order does not affect the result:
// after InsertPhis every read in a block with predecessors is preceded by a
// local assignment or a phi, so the current version of a name never crosses
// a block boundary.
func Rename(g *ir.Graph) int {
	versions := make(map[string]int)
	fresh := func(name string) ir.NameValue {
		versions[name]++
		return ir.Versioned(name, versions[name])
	}

	defs := 0
	for _, b := range g.Live() {
		hasPreds := len(g.Predecessors(b.ID)) > 0
		current := make(map[string]ir.NameValue)

		for _, instr := range b.Instrs {
			if p, ok := instr.(*ir.PhiAssignment); ok {
				if !p.Target.IsVersioned() {
					p.Target = fresh(p.Target.Name)
					defs++
				}
				current[p.Target.Name] = p.Target
				continue
			}

			instr.ReplaceOperands(func(op ir.Operand) ir.Operand {
				n, ok := op.(ir.NameValue)
				if !ok || n.IsVersioned() {
					return op
				}
				if cur, ok := current[n.Name]; ok {
					return cur
				}
				if hasPreds {
					panic(errors.MissingDefinition(errors.PhaseConstruct, n.Name, int(b.ID)))
				}
				return ir.Versioned(n.Name, ir.LiveIn)
			})

			a, ok := instr.(ir.Assigner)
			if !ok {
				continue
			}
			if n, ok := a.Assignee(); ok && !n.IsVersioned() {
				v := fresh(n.Name)
				a.SetAssignee(v)
				current[n.Name] = v
				defs++
			}
		}
	}
	return defs
}

// ResolvePhis rewrites each unversioned phi entry to the version live at the
// end of its predecessor. A predecessor without predecessors of its own
// supplies the live-in version.
func ResolvePhis(g *ir.Graph) {
	for _, b := range g.Live() {
		phis := b.Phis()
		if len(phis) == 0 {
			continue
		}
		preds := g.Predecessors(b.ID)
		for _, p := range phis {
			if len(p.Phi.Values) != len(preds) {
				panic(errors.PhiArity(errors.PhaseConstruct, int(b.ID), p.Target.String(), len(p.Phi.Values), len(preds)))
			}
			for i, v := range p.Phi.Values {
				if v.Value.IsVersioned() {
					continue
				}
				p.Phi.Values[i].Value = liveOut(g, v.Block, v.Value.Name)
			}
		}
	}
}

func liveOut(g *ir.Graph, pred ir.BlockID, name string) ir.NameValue {
	pb := g.Block(pred)
	if pb == nil {
		panic(errors.MissingDefinition(errors.PhaseConstruct, name, int(pred)))
	}
	if n, ok := pb.LastAssignment(name); ok {
		return n
	}
	if len(g.Predecessors(pred)) == 0 {
		return ir.Versioned(name, ir.LiveIn)
	}
	panic(errors.MissingDefinition(errors.PhaseConstruct, name, int(pred)))
}

func checkUnversioned(g *ir.Graph) error {
	for _, b := range g.Live() {
		for _, instr := range b.Instrs {
			if n, ok := ir.AssigneeOf(instr); ok && n.IsVersioned() {
				return errors.New(errors.PhaseConstruct, errors.KindInvalidInput).
					Block(int(b.ID)).
					Name(n.String()).
					Detail("graph is already in SSA form").
					Build()
			}
			for _, op := range instr.Operands() {
				if n, ok := op.(ir.NameValue); ok && n.IsVersioned() {
					return errors.New(errors.PhaseConstruct, errors.KindInvalidInput).
						Block(int(b.ID)).
						Name(n.String()).
						Detail("graph is already in SSA form").
						Build()
				}
			}
		}
	}
	return nil
}

func countPhis(g *ir.Graph) int {
	n := 0
	for _, b := range g.Live() {
		n += b.PhiCount()
	}
	return n
}
