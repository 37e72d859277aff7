package ir

import (
	"math"
	"strconv"
)

// EvalUnary applies op to a constant operand. ok is false when the operation
// is not defined for the operand at compile time (it would raise a runtime
// error, or needs coercion rules the folder does not model).
func EvalUnary(op UnaryOp, c Constant) (Constant, bool) {
	switch op {
	case OpNegation:
		if c.kind == ConstNumber {
			return NumberConst(-c.num), true
		}
	case OpLogicalNot:
		return BoolConst(!c.Truthy()), true
	case OpLength:
		if c.kind == ConstString {
			return NumberConst(float64(len(c.str))), true
		}
	case OpBitwiseNegation:
		if i, ok := toInteger(c); ok {
			return NumberConst(float64(^i)), true
		}
	}
	return Nil, false
}

// EvalBinary applies op to two constant operands. ok is false when the
// operation is not defined for the operands at compile time.
func EvalBinary(op BinaryOp, a, b Constant) (Constant, bool) {
	switch op {
	case OpEqual:
		return BoolConst(constEqual(a, b)), true
	case OpNotEqual:
		return BoolConst(!constEqual(a, b)), true
	case OpLessThan, OpLessEqual, OpGreaterThan, OpGreaterEqual:
		return compare(op, a, b)
	case OpConcatenation:
		as, aok := concatOperand(a)
		bs, bok := concatOperand(b)
		if !aok || !bok {
			return Nil, false
		}
		return StringConst(as + bs), true
	case OpBitwiseAnd, OpBitwiseOr, OpBitwiseXor, OpShiftLeft, OpShiftRight:
		x, xok := toInteger(a)
		y, yok := toInteger(b)
		if !xok || !yok {
			return Nil, false
		}
		return NumberConst(float64(bitwise(op, x, y))), true
	}

	if a.kind != ConstNumber || b.kind != ConstNumber {
		return Nil, false
	}
	x, y := a.num, b.num
	switch op {
	case OpAddition:
		return NumberConst(x + y), true
	case OpSubtraction:
		return NumberConst(x - y), true
	case OpMultiplication:
		return NumberConst(x * y), true
	case OpDivision:
		return NumberConst(x / y), true
	case OpFloorDivision:
		return NumberConst(math.Floor(x / y)), true
	case OpModulo:
		return NumberConst(x - math.Floor(x/y)*y), true
	case OpExponentiation:
		return NumberConst(math.Pow(x, y)), true
	}
	return Nil, false
}

// ToString renders a runtime value the way the language's tostring does.
func ToString(op Operand) string {
	switch v := op.(type) {
	case Constant:
		switch v.kind {
		case ConstNumber:
			return formatNumber(v.num)
		case ConstString:
			return v.str
		default:
			return v.String()
		}
	case Builtin:
		return "builtin: " + v.Name()
	case NameValue:
		return v.String()
	default:
		return "?"
	}
}

func formatNumber(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case math.IsNaN(n):
		return "nan"
	case n == math.Trunc(n) && math.Abs(n) < 1e15:
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', 14, 64)
}

func constEqual(a, b Constant) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case ConstNil:
		return true
	case ConstBoolean:
		return a.b == b.b
	case ConstNumber:
		return a.num == b.num
	default:
		return a.str == b.str
	}
}

func compare(op BinaryOp, a, b Constant) (Constant, bool) {
	var lt, eq bool
	switch {
	case a.kind == ConstNumber && b.kind == ConstNumber:
		lt, eq = a.num < b.num, a.num == b.num
	case a.kind == ConstString && b.kind == ConstString:
		lt, eq = a.str < b.str, a.str == b.str
	default:
		return Nil, false
	}
	switch op {
	case OpLessThan:
		return BoolConst(lt), true
	case OpLessEqual:
		return BoolConst(lt || eq), true
	case OpGreaterThan:
		if a.kind == ConstNumber {
			return BoolConst(a.num > b.num), true
		}
		return BoolConst(a.str > b.str), true
	default:
		if a.kind == ConstNumber {
			return BoolConst(a.num >= b.num), true
		}
		return BoolConst(a.str >= b.str), true
	}
}

func concatOperand(c Constant) (string, bool) {
	switch c.kind {
	case ConstString:
		return c.str, true
	case ConstNumber:
		return formatNumber(c.num), true
	default:
		return "", false
	}
}

// toInteger converts a number with an exact 64-bit integer representation.
func toInteger(c Constant) (int64, bool) {
	if c.kind != ConstNumber {
		return 0, false
	}
	n := c.num
	if n != math.Trunc(n) || n < -(1<<63) || n >= 1<<63 {
		return 0, false
	}
	return int64(n), true
}

func bitwise(op BinaryOp, x, y int64) int64 {
	switch op {
	case OpBitwiseAnd:
		return x & y
	case OpBitwiseOr:
		return x | y
	case OpBitwiseXor:
		return x ^ y
	case OpShiftLeft:
		return shiftLeft(x, y)
	default:
		return shiftLeft(x, -y)
	}
}

// shiftLeft is a logical shift; negative counts shift right.
func shiftLeft(x, n int64) int64 {
	switch {
	case n <= -64 || n >= 64:
		return 0
	case n >= 0:
		return int64(uint64(x) << uint(n))
	default:
		return int64(uint64(x) >> uint(-n))
	}
}
