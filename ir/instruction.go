package ir

import (
	"strconv"
	"strings"
)

// InstrKind identifies the concrete type of an Instruction.
type InstrKind uint8

const (
	KindDebugLocation InstrKind = iota + 1
	KindAssignment
	KindUnaryAssignment
	KindBinaryAssignment
	KindFunctionAssignment
	KindPhiAssignment
	KindBranch
	KindConditionalBranch
)

func (k InstrKind) String() string {
	switch k {
	case KindDebugLocation:
		return "DebugLocation"
	case KindAssignment:
		return "Assignment"
	case KindUnaryAssignment:
		return "UnaryAssignment"
	case KindBinaryAssignment:
		return "BinaryAssignment"
	case KindFunctionAssignment:
		return "FunctionAssignment"
	case KindPhiAssignment:
		return "PhiAssignment"
	case KindBranch:
		return "Branch"
	case KindConditionalBranch:
		return "ConditionalBranch"
	default:
		return "Unknown"
	}
}

// Instruction is one statement of a basic block. Operands may be rewritten
// in place; an instruction never changes kind.
type Instruction interface {
	// Kind returns the concrete instruction kind.
	Kind() InstrKind
	// Operands returns the values the instruction reads, in order.
	Operands() []Operand
	// ReplaceOperands rewrites every operand read through f and reports
	// whether any operand changed. Phi entries only accept NameValues; a
	// non-name replacement leaves the entry unchanged.
	ReplaceOperands(f func(Operand) Operand) bool
	// Clone returns a deep copy.
	Clone() Instruction
	String() string
}

// Assigner is an instruction that may define a name.
type Assigner interface {
	Instruction
	// Assignee returns the defined name; ok is false for a call made only
	// for its effect.
	Assignee() (NameValue, bool)
	SetAssignee(NameValue)
}

// Terminator is an instruction that ends a block and transfers control.
type Terminator interface {
	Instruction
	Targets() []*BranchTarget
}

// DebugLocation records the source line of the instructions that follow.
type DebugLocation struct {
	Line int
}

func (*DebugLocation) Kind() InstrKind                            { return KindDebugLocation }
func (*DebugLocation) Operands() []Operand                        { return nil }
func (*DebugLocation) ReplaceOperands(func(Operand) Operand) bool { return false }
func (d *DebugLocation) Clone() Instruction                       { c := *d; return &c }
func (d *DebugLocation) String() string                           { return ".loc " + strconv.Itoa(d.Line) }

// Assignment copies a single operand: Target = Value.
type Assignment struct {
	Value  Operand
	Target NameValue
}

func (*Assignment) Kind() InstrKind               { return KindAssignment }
func (a *Assignment) Operands() []Operand         { return []Operand{a.Value} }
func (a *Assignment) Assignee() (NameValue, bool) { return a.Target, true }
func (a *Assignment) SetAssignee(n NameValue)     { a.Target = n }
func (a *Assignment) Clone() Instruction          { c := *a; return &c }
func (a *Assignment) String() string              { return a.Target.String() + " = " + a.Value.String() }

func (a *Assignment) ReplaceOperands(f func(Operand) Operand) bool {
	return replace(&a.Value, f)
}

// UnaryAssignment computes Target = Op Operand.
type UnaryAssignment struct {
	Operand Operand
	Target  NameValue
	Op      UnaryOp
}

func (*UnaryAssignment) Kind() InstrKind               { return KindUnaryAssignment }
func (u *UnaryAssignment) Operands() []Operand         { return []Operand{u.Operand} }
func (u *UnaryAssignment) Assignee() (NameValue, bool) { return u.Target, true }
func (u *UnaryAssignment) SetAssignee(n NameValue)     { u.Target = n }
func (u *UnaryAssignment) Clone() Instruction          { c := *u; return &c }

func (u *UnaryAssignment) ReplaceOperands(f func(Operand) Operand) bool {
	return replace(&u.Operand, f)
}

func (u *UnaryAssignment) String() string {
	return u.Target.String() + " = " + u.Op.String() + " " + u.Operand.String()
}

// BinaryAssignment computes Target = Left Op Right.
type BinaryAssignment struct {
	Left   Operand
	Right  Operand
	Target NameValue
	Op     BinaryOp
}

func (*BinaryAssignment) Kind() InstrKind               { return KindBinaryAssignment }
func (b *BinaryAssignment) Operands() []Operand         { return []Operand{b.Left, b.Right} }
func (b *BinaryAssignment) Assignee() (NameValue, bool) { return b.Target, true }
func (b *BinaryAssignment) SetAssignee(n NameValue)     { b.Target = n }
func (b *BinaryAssignment) Clone() Instruction          { c := *b; return &c }

func (b *BinaryAssignment) ReplaceOperands(f func(Operand) Operand) bool {
	l := replace(&b.Left, f)
	r := replace(&b.Right, f)
	return l || r
}

func (b *BinaryAssignment) String() string {
	return b.Target.String() + " = " + b.Op.String() + " " + b.Left.String() + ", " + b.Right.String()
}

// FunctionAssignment calls Callee with Args. Target is zero for a call made
// only for its effect.
type FunctionAssignment struct {
	Callee Operand
	Args   []Operand
	Target NameValue
}

func (*FunctionAssignment) Kind() InstrKind { return KindFunctionAssignment }

func (f *FunctionAssignment) Operands() []Operand {
	ops := make([]Operand, 0, len(f.Args)+1)
	ops = append(ops, f.Callee)
	return append(ops, f.Args...)
}

func (f *FunctionAssignment) Assignee() (NameValue, bool) { return f.Target, !f.Target.IsZero() }
func (f *FunctionAssignment) SetAssignee(n NameValue)     { f.Target = n }

func (f *FunctionAssignment) ReplaceOperands(fn func(Operand) Operand) bool {
	changed := replace(&f.Callee, fn)
	for i := range f.Args {
		if replace(&f.Args[i], fn) {
			changed = true
		}
	}
	return changed
}

func (f *FunctionAssignment) Clone() Instruction {
	c := *f
	c.Args = append([]Operand(nil), f.Args...)
	return &c
}

func (f *FunctionAssignment) String() string {
	var b strings.Builder
	if !f.Target.IsZero() {
		b.WriteString(f.Target.String())
		b.WriteString(" = ")
	}
	b.WriteString("call ")
	b.WriteString(f.Callee.String())
	b.WriteByte('(')
	for i, a := range f.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteByte(')')
	return b.String()
}

// PhiValue is one incoming value of a phi: the name live at the end of the
// predecessor Block.
type PhiValue struct {
	Value NameValue
	Block BlockID
}

// Phi selects a value depending on the predecessor control arrived from.
// It holds one entry per incoming edge of the owning block.
type Phi struct {
	Values []PhiValue
}

// Lookup returns the entry for predecessor pred.
func (p *Phi) Lookup(pred BlockID) (NameValue, bool) {
	for _, v := range p.Values {
		if v.Block == pred {
			return v.Value, true
		}
	}
	return NameValue{}, false
}

// Remove drops the entries for predecessor pred and reports how many were
// removed.
func (p *Phi) Remove(pred BlockID) int {
	kept := p.Values[:0]
	removed := 0
	for _, v := range p.Values {
		if v.Block == pred {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	p.Values = kept
	return removed
}

// PhiAssignment defines Target from a Phi. Phis form a contiguous prefix of
// their block.
type PhiAssignment struct {
	Phi    *Phi
	Target NameValue
}

// NewPhi returns a phi assignment with no incoming values.
func NewPhi(target NameValue) *PhiAssignment {
	return &PhiAssignment{Target: target, Phi: &Phi{}}
}

func (*PhiAssignment) Kind() InstrKind               { return KindPhiAssignment }
func (p *PhiAssignment) Assignee() (NameValue, bool) { return p.Target, true }
func (p *PhiAssignment) SetAssignee(n NameValue)     { p.Target = n }

func (p *PhiAssignment) Operands() []Operand {
	ops := make([]Operand, len(p.Phi.Values))
	for i, v := range p.Phi.Values {
		ops[i] = v.Value
	}
	return ops
}

func (p *PhiAssignment) ReplaceOperands(f func(Operand) Operand) bool {
	changed := false
	for i, v := range p.Phi.Values {
		n, ok := f(v.Value).(NameValue)
		if ok && n != v.Value {
			p.Phi.Values[i].Value = n
			changed = true
		}
	}
	return changed
}

func (p *PhiAssignment) Clone() Instruction {
	return &PhiAssignment{
		Target: p.Target,
		Phi:    &Phi{Values: append([]PhiValue(nil), p.Phi.Values...)},
	}
}

func (p *PhiAssignment) String() string {
	var b strings.Builder
	b.WriteString(p.Target.String())
	b.WriteString(" = phi")
	for i, v := range p.Phi.Values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(" [")
		b.WriteString(v.Block.String())
		b.WriteString(": ")
		b.WriteString(v.Value.String())
		b.WriteByte(']')
	}
	return b.String()
}

// Branch transfers control unconditionally.
type Branch struct {
	Target *BranchTarget
}

func (*Branch) Kind() InstrKind                            { return KindBranch }
func (*Branch) Operands() []Operand                        { return nil }
func (*Branch) ReplaceOperands(func(Operand) Operand) bool { return false }
func (b *Branch) Targets() []*BranchTarget                 { return []*BranchTarget{b.Target} }
func (b *Branch) Clone() Instruction                       { return &Branch{Target: b.Target.Clone()} }
func (b *Branch) String() string                           { return "br " + b.Target.String() }

// ConditionalBranch transfers control to Then when Cond is truthy and to
// Else otherwise.
type ConditionalBranch struct {
	Cond Operand
	Then *BranchTarget
	Else *BranchTarget
}

func (*ConditionalBranch) Kind() InstrKind            { return KindConditionalBranch }
func (c *ConditionalBranch) Operands() []Operand      { return []Operand{c.Cond} }
func (c *ConditionalBranch) Targets() []*BranchTarget { return []*BranchTarget{c.Then, c.Else} }

func (c *ConditionalBranch) ReplaceOperands(f func(Operand) Operand) bool {
	return replace(&c.Cond, f)
}

func (c *ConditionalBranch) Clone() Instruction {
	return &ConditionalBranch{Cond: c.Cond, Then: c.Then.Clone(), Else: c.Else.Clone()}
}

func (c *ConditionalBranch) String() string {
	return "if " + c.Cond.String() + ": br " + c.Then.String() + "; else: br " + c.Else.String()
}

func replace(slot *Operand, f func(Operand) Operand) bool {
	next := f(*slot)
	if next == nil || sameOperand(next, *slot) {
		return false
	}
	*slot = next
	return true
}

// IsTerminator reports whether instr ends a block.
func IsTerminator(instr Instruction) bool {
	_, ok := instr.(Terminator)
	return ok
}

// IsPure reports whether removing instr cannot change observable behavior
// beyond the value it defines. Calls are never pure.
func IsPure(instr Instruction) bool {
	switch instr.(type) {
	case *Assignment, *UnaryAssignment, *BinaryAssignment, *PhiAssignment:
		return true
	default:
		return false
	}
}

// Reads reports whether instr reads name.
func Reads(instr Instruction, name NameValue) bool {
	for _, op := range instr.Operands() {
		if n, ok := op.(NameValue); ok && n == name {
			return true
		}
	}
	return false
}
