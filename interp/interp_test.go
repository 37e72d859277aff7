package interp

import (
	"context"
	stderrors "errors"
	"math"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/wippyai/scriptc/errors"
	"github.com/wippyai/scriptc/ir"
)

func run(t *testing.T, src string, env map[string]ir.Operand) (*Result, error) {
	t.Helper()
	return Run(context.Background(), ir.MustParse(src), Options{Env: env})
}

func TestRun_Diamond(t *testing.T) {
	src := `
entry BB0
BB0:
  if x: br BB1; else: br BB2
BB1:
  y = 1
  br BB3
BB2:
  y = 2
  br BB3
BB3:
  call @print(y)
`
	tests := []struct {
		name string
		x    ir.Operand
		want []string
		path []ir.BlockID
	}{
		{"true branch", ir.True, []string{"1"}, []ir.BlockID{0, 1, 3}},
		{"false branch", ir.False, []string{"2"}, []ir.BlockID{0, 2, 3}},
		{"nil is falsy", ir.Nil, []string{"2"}, []ir.BlockID{0, 2, 3}},
		{"zero is truthy", ir.NumberConst(0), []string{"1"}, []ir.BlockID{0, 1, 3}},
		{"empty string is truthy", ir.StringConst(""), []string{"1"}, []ir.BlockID{0, 1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := run(t, src, map[string]ir.Operand{"x": tt.x})
			assert.NilError(t, err)
			assert.DeepEqual(t, res.Output, tt.want)
			assert.DeepEqual(t, res.Path, tt.path)
			assert.Equal(t, res.Exit, ir.BlockID(3))
		})
	}
}

func TestRun_PhiUsesIncomingEdge(t *testing.T) {
	src := `
entry BB0
BB0:
  if x.0: br BB1; else: br BB2
BB1:
  y.1 = "left"
  br BB3
BB2:
  y.2 = "right"
  br BB3
BB3:
  y.3 = phi [BB1: y.1], [BB2: y.2]
  call @print(y.3)
`
	res, err := run(t, src, map[string]ir.Operand{"x": ir.False})
	assert.NilError(t, err)
	assert.DeepEqual(t, res.Output, []string{"right"})
}

func TestRun_Swap(t *testing.T) {
	src := `
entry BB0
BB0:
  a.1 = 1
  b.1 = 2
  z.1 = 0
  br BB1
BB1:
  a.2 = phi [BB0: a.1], [BB1: b.2]
  b.2 = phi [BB0: b.1], [BB1: a.2]
  z.2 = phi [BB0: z.1], [BB1: z.3]
  z.3 = add z.2, 1
  c.1 = lt z.3, 3
  if c.1: br BB1; else: br BB2
BB2:
  call @print(a.2, b.2, z.3)
`
	res, err := run(t, src, nil)
	assert.NilError(t, err)
	// three visits to BB1 swap the pair twice
	assert.DeepEqual(t, res.Output, []string{"1\t2\t3"})
}

func TestRun_Operators(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"add", "r = add 1, 2", "3"},
		{"float add", "r = add 1.5, 2", "3.5"},
		{"floor division", "r = idiv 7, 2", "3"},
		{"negative floor division", "r = idiv -7, 2", "-4"},
		{"modulo", "r = mod -7, 3", "2"},
		{"power", "r = pow 2, 10", "1024"},
		{"concat", `r = concat "a", "b"`, "ab"},
		{"concat number", `r = concat "n", 1`, "n1"},
		{"bitwise not", "r = bnot 5", "-6"},
		{"shift left", "r = shl 1, 4", "16"},
		{"shift out", "r = shl 1, 64", "0"},
		{"length", `r = len "abc"`, "3"},
		{"not nil", "r = not nil", "true"},
		{"compare strings", `r = lt "a", "b"`, "true"},
		{"equal mixed", `r = eq 1, "1"`, "false"},
		{"division by zero", "r = div 1, 0", "inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "entry BB0\nBB0:\n  " + tt.src + "\n  call @print(r)\n"
			res, err := run(t, src, nil)
			assert.NilError(t, err)
			assert.DeepEqual(t, res.Output, []string{tt.want})
		})
	}
}

func TestRun_Builtins(t *testing.T) {
	tests := []struct {
		name string
		call string
		want string
	}{
		{"type of number", "@type(1)", "number"},
		{"type of builtin", "@type(@print)", "function"},
		{"tostring", "@tostring(true)", "true"},
		{"tonumber", `@tonumber(" 12 ")`, "12"},
		{"tonumber invalid", `@tonumber("x")`, "nil"},
		{"select count", `@select("#", 1, 2, 3)`, "3"},
		{"select index", `@select(2, "a", "b")`, "b"},
		{"select negative", `@select(-1, "a", "b")`, "b"},
		{"rawequal", "@rawequal(1, 1)", "true"},
		{"rawlen", `@rawlen("abcd")`, "4"},
		{"floor", "@math.floor(2.7)", "2"},
		{"abs", "@math.abs(-3)", "3"},
		{"max", "@math.max(1, 5, 3)", "5"},
		{"min", "@math.min(4, 2, 9)", "2"},
		{"sub", `@string.sub("hello", 2, 4)`, "ell"},
		{"sub negative", `@string.sub("hello", -3)`, "llo"},
		{"sub empty", `@string.sub("hello", 4, 2)`, ""},
		{"upper", `@string.upper("abc")`, "ABC"},
		{"lower", `@string.lower("ABC")`, "abc"},
		{"assert passes", `@assert(1, "msg")`, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "entry BB0\nBB0:\n  r = call " + tt.call + "\n  call @print(r)\n"
			res, err := run(t, src, nil)
			assert.NilError(t, err)
			assert.DeepEqual(t, res.Output, []string{tt.want})
		})
	}
}

func TestRun_RuntimeErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		output []string
		msg    string
	}{
		{
			name: "error builtin",
			src: `
entry BB0
BB0:
  call @print("before")
  call @error("boom")
  call @print("after")
`,
			output: []string{"before"},
			msg:    "boom",
		},
		{
			name: "failed assertion",
			src: `
entry BB0
BB0:
  call @assert(false)
`,
			msg: "assertion failed!",
		},
		{
			name: "arithmetic on string",
			src: `
entry BB0
BB0:
  r = add "a", 1
`,
			msg: "attempt to perform add",
		},
		{
			name: "call a number",
			src: `
entry BB0
BB0:
  f = 1
  call f()
`,
			msg: "attempt to call a number value",
		},
		{
			name: "bad builtin argument",
			src: `
entry BB0
BB0:
  r = call @math.floor("x")
`,
			msg: "math.floor: bad argument #1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := run(t, tt.src, nil)
			assert.ErrorContains(t, err, tt.msg)
			assert.Assert(t, stderrors.Is(err, errors.New(errors.PhaseExec, errors.KindRuntime).Build()))
			assert.DeepEqual(t, res.Output, tt.output)
		})
	}
}

func TestRun_StepLimit(t *testing.T) {
	src := `
entry BB0
BB0:
  br BB1
BB1:
  br BB1
`
	_, err := Run(context.Background(), ir.MustParse(src), Options{MaxSteps: 50})
	assert.ErrorContains(t, err, "step limit 50 exceeded")
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, ir.MustParse("entry BB0\nBB0:\n  call @print(1)\n"), Options{})
	assert.Assert(t, stderrors.Is(err, errors.New(errors.PhaseExec, errors.KindCanceled).Build()))
}

func TestRun_LiveInFromEnv(t *testing.T) {
	src := `
entry BB0
BB0:
  r = add x.0, y
  call @print(r, z)
`
	res, err := run(t, src, map[string]ir.Operand{"x": ir.NumberConst(2), "y": ir.NumberConst(3)})
	assert.NilError(t, err)
	assert.DeepEqual(t, res.Output, []string{"5\tnil"})
}

func TestRun_UndefinedVersion(t *testing.T) {
	_, err := run(t, "entry BB0\nBB0:\n  call @print(y.4)\n", nil)
	assert.ErrorContains(t, err, "read of y.4 before its definition")
}

func TestSubstring(t *testing.T) {
	tests := []struct {
		i, j int
		want string
	}{
		{1, -1, "hello"},
		{0, 2, "he"},
		{-2, -1, "lo"},
		{-10, 2, "he"},
		{3, 100, "llo"},
		{6, 8, ""},
		{2, -10, ""},
	}
	for _, tt := range tests {
		assert.Check(t, is.Equal(substring("hello", tt.i, tt.j), tt.want), "substring(%d, %d)", tt.i, tt.j)
	}
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, typeName(ir.NumberConst(math.Inf(1))), "number")
	assert.Equal(t, typeName(ir.Nil), "nil")
	assert.Equal(t, typeName(ir.BuiltinPrint), "function")
}
