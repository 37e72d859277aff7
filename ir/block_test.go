package ir

import (
	"math"
	"testing"

	"github.com/wippyai/scriptc/errors"
)

func TestBasicBlock_Append(t *testing.T) {
	b := &BasicBlock{ID: 4}
	b.Append(NewPhi(Versioned("a", 1)))
	b.Append(&Assignment{Target: Var("x"), Value: NumberConst(1)})

	expectPanic(t, errors.KindContract, func() { b.Append(NewPhi(Versioned("b", 1))) })

	b.Append(&Branch{Target: BoundTarget(0)})
	expectPanic(t, errors.KindContract, func() { b.Append(&Assignment{Target: Var("y"), Value: Nil}) })
}

func TestBasicBlock_Insert(t *testing.T) {
	b := &BasicBlock{}
	b.Append(NewPhi(Versioned("a", 1)))
	b.Append(&Assignment{Target: Var("x"), Value: NumberConst(1)})
	b.Append(&Branch{Target: BoundTarget(0)})

	b.InsertPhi(NewPhi(Versioned("b", 1)))
	b.InsertBeforeTerminator(&Assignment{Target: Var("y"), Value: Var("x")})

	want := "BB0:\n  a.1 = phi\n  b.1 = phi\n  x = 1\n  y = x\n  br BB0\n"
	if got := FormatBlock(b); got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
	if b.PhiCount() != 2 || b.PhiFor("b") == nil || b.PhiFor("x") != nil {
		t.Errorf("unexpected phi prefix in\n%s", FormatBlock(b))
	}

	exit := &BasicBlock{}
	exit.InsertBeforeTerminator(&Assignment{Target: Var("z"), Value: Nil})
	if exit.Terminator() != nil || len(exit.Instrs) != 1 {
		t.Errorf("unexpected exit block\n%s", FormatBlock(exit))
	}
}

func TestBasicBlock_Queries(t *testing.T) {
	g := MustParse(`entry BB0
BB0:
  x = 1
  y = add x, 1
  x = 2
  call @print(x)
BB1:
  br BB0
`)
	b := g.Block(0)

	if !b.Assigns("x") || b.Assigns("z") {
		t.Error("Assigns mismatch")
	}
	last, ok := b.LastAssignment("x")
	if !ok || last != Var("x") {
		t.Errorf("LastAssignment = %v, %v", last, ok)
	}
	if _, ok := b.LastAssignment("z"); ok {
		t.Error("LastAssignment found z")
	}
	if b.IsRedirect() || !g.Block(1).IsRedirect() {
		t.Error("IsRedirect mismatch")
	}

	removed := b.Filter(func(instr Instruction) bool { return !IsPure(instr) })
	if removed != 3 || len(b.Instrs) != 1 {
		t.Errorf("Filter removed %d, left %d", removed, len(b.Instrs))
	}
}

func TestPhi_Remove(t *testing.T) {
	p := &Phi{Values: []PhiValue{
		{Block: 1, Value: Versioned("y", 1)},
		{Block: 2, Value: Versioned("y", 2)},
		{Block: 1, Value: Versioned("y", 3)},
	}}
	if n := p.Remove(1); n != 2 {
		t.Errorf("Remove = %d, want 2", n)
	}
	if v, ok := p.Lookup(2); !ok || v != Versioned("y", 2) {
		t.Errorf("Lookup(2) = %v, %v", v, ok)
	}
	if _, ok := p.Lookup(1); ok {
		t.Error("entry for BB1 survived")
	}
}

func TestIsPure(t *testing.T) {
	tests := []struct {
		instr Instruction
		want  bool
	}{
		{&Assignment{Target: Var("x"), Value: Nil}, true},
		{&UnaryAssignment{Target: Var("x"), Op: OpNegation, Operand: Var("y")}, true},
		{&BinaryAssignment{Target: Var("x"), Op: OpDivision, Left: Var("y"), Right: NumberConst(0)}, true},
		{NewPhi(Versioned("x", 1)), true},
		{&FunctionAssignment{Target: Var("x"), Callee: BuiltinType}, false},
		{&DebugLocation{Line: 1}, false},
		{&Branch{Target: BoundTarget(0)}, false},
	}
	for _, tt := range tests {
		if got := IsPure(tt.instr); got != tt.want {
			t.Errorf("IsPure(%s) = %v, want %v", tt.instr, got, tt.want)
		}
	}
}

func TestReplaceOperands_Unchanged(t *testing.T) {
	nan := NumberConst(math.NaN())
	instrs := []Instruction{
		&Assignment{Target: Var("x"), Value: nan},
		&BinaryAssignment{Target: Var("y"), Op: OpAddition, Left: nan, Right: NumberConst(math.Copysign(0, -1))},
		&FunctionAssignment{Callee: BuiltinPrint, Args: []Operand{nan, Var("x")}},
	}
	for _, instr := range instrs {
		if instr.ReplaceOperands(func(op Operand) Operand { return op }) {
			t.Errorf("%s: identity rewrite reported a change", instr)
		}
	}

	zero := &Assignment{Target: Var("z"), Value: NumberConst(0)}
	if !zero.ReplaceOperands(func(Operand) Operand { return NumberConst(math.Copysign(0, -1)) }) {
		t.Error("rewrite of 0 to -0 reported no change")
	}
}
