package interp

import (
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/scriptc/errors"
	"github.com/wippyai/scriptc/ir"
)

func (m *machine) callBuiltin(block ir.BlockID, fn ir.Builtin, args []ir.Operand) (ir.Operand, error) {
	fail := func(format string, a ...any) (ir.Operand, error) {
		return nil, errors.Runtime(int(block), "%s: "+format, append([]any{fn.Name()}, a...)...)
	}
	arg := func(i int) ir.Operand {
		if i < len(args) {
			return args[i]
		}
		return ir.Nil
	}

	switch fn {
	case ir.BuiltinPrint:
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = ir.ToString(a)
		}
		m.out = append(m.out, strings.Join(parts, "\t"))
		return ir.Nil, nil

	case ir.BuiltinType:
		if len(args) == 0 {
			return fail("bad argument #1 (value expected)")
		}
		return ir.StringConst(typeName(args[0])), nil

	case ir.BuiltinToString:
		return ir.StringConst(ir.ToString(arg(0))), nil

	case ir.BuiltinToNumber:
		c, _ := arg(0).(ir.Constant)
		switch c.Kind() {
		case ir.ConstNumber:
			return c, nil
		case ir.ConstString:
			n, err := strconv.ParseFloat(strings.TrimSpace(c.Str()), 64)
			if err != nil {
				return ir.Nil, nil
			}
			return ir.NumberConst(n), nil
		}
		return ir.Nil, nil

	case ir.BuiltinAssert:
		if len(args) == 0 {
			return fail("bad argument #1 (value expected)")
		}
		if !truthy(args[0]) {
			msg := "assertion failed!"
			if len(args) > 1 {
				msg = ir.ToString(args[1])
			}
			return nil, errors.Runtime(int(block), "%s", msg)
		}
		return args[0], nil

	case ir.BuiltinError:
		return nil, errors.Runtime(int(block), "%s", ir.ToString(arg(0)))

	case ir.BuiltinSelect:
		n, ok := arg(0).(ir.Constant)
		if ok && n.Kind() == ir.ConstString && n.Str() == "#" {
			return ir.NumberConst(float64(len(args) - 1)), nil
		}
		if !ok || n.Kind() != ir.ConstNumber {
			return fail("bad argument #1 (number expected)")
		}
		i := int(n.Num())
		if i < 0 {
			i += len(args)
		}
		if i < 1 {
			return fail("bad argument #1 (index out of range)")
		}
		return arg(i), nil

	case ir.BuiltinRawEqual:
		return ir.BoolConst(arg(0) == arg(1)), nil

	case ir.BuiltinRawLen, ir.BuiltinStringLen:
		s, ok := stringArg(arg(0))
		if !ok {
			return fail("bad argument #1 (string expected, got %s)", typeName(arg(0)))
		}
		return ir.NumberConst(float64(len(s))), nil

	case ir.BuiltinMathFloor, ir.BuiltinMathAbs:
		n, ok := numberArg(arg(0))
		if !ok {
			return fail("bad argument #1 (number expected, got %s)", typeName(arg(0)))
		}
		if fn == ir.BuiltinMathFloor {
			return ir.NumberConst(math.Floor(n)), nil
		}
		return ir.NumberConst(math.Abs(n)), nil

	case ir.BuiltinMathMax, ir.BuiltinMathMin:
		if len(args) == 0 {
			return fail("bad argument #1 (number expected, got no value)")
		}
		var best float64
		for i, a := range args {
			n, ok := numberArg(a)
			if !ok {
				return fail("bad argument #%d (number expected, got %s)", i+1, typeName(a))
			}
			if i == 0 || (fn == ir.BuiltinMathMax && n > best) || (fn == ir.BuiltinMathMin && n < best) {
				best = n
			}
		}
		return ir.NumberConst(best), nil

	case ir.BuiltinStringSub:
		s, ok := stringArg(arg(0))
		if !ok {
			return fail("bad argument #1 (string expected, got %s)", typeName(arg(0)))
		}
		i, j := 1.0, -1.0
		if len(args) > 1 {
			if i, ok = numberArg(args[1]); !ok {
				return fail("bad argument #2 (number expected, got %s)", typeName(args[1]))
			}
		}
		if len(args) > 2 {
			if j, ok = numberArg(args[2]); !ok {
				return fail("bad argument #3 (number expected, got %s)", typeName(args[2]))
			}
		}
		return ir.StringConst(substring(s, int(i), int(j))), nil

	case ir.BuiltinStringUpper, ir.BuiltinStringLower:
		s, ok := stringArg(arg(0))
		if !ok {
			return fail("bad argument #1 (string expected, got %s)", typeName(arg(0)))
		}
		if fn == ir.BuiltinStringUpper {
			return ir.StringConst(strings.ToUpper(s)), nil
		}
		return ir.StringConst(strings.ToLower(s)), nil
	}
	return fail("not implemented")
}

func stringArg(v ir.Operand) (string, bool) {
	c, ok := v.(ir.Constant)
	if !ok {
		return "", false
	}
	switch c.Kind() {
	case ir.ConstString:
		return c.Str(), true
	case ir.ConstNumber:
		return ir.ToString(c), true
	}
	return "", false
}

func numberArg(v ir.Operand) (float64, bool) {
	c, ok := v.(ir.Constant)
	if !ok {
		return 0, false
	}
	switch c.Kind() {
	case ir.ConstNumber:
		return c.Num(), true
	case ir.ConstString:
		n, err := strconv.ParseFloat(strings.TrimSpace(c.Str()), 64)
		return n, err == nil
	}
	return 0, false
}

// substring follows string.sub: 1-based inclusive bounds, negative indexes
// count from the end.
func substring(s string, i, j int) string {
	n := len(s)
	if i < 0 {
		i = max(n+i+1, 1)
	} else if i == 0 {
		i = 1
	}
	if j < 0 {
		j = n + j + 1
	} else if j > n {
		j = n
	}
	if i > j {
		return ""
	}
	return s[i-1 : j]
}
