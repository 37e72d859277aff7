package ir

import (
	"math"
	"strconv"
	"strings"
)

// Operand is a value read by an instruction: a Constant, a Builtin or a
// NameValue. Operands are comparable; == is value equality.
type Operand interface {
	String() string
	isOperand()
}

// ConstKind is the dynamic type of a Constant.
type ConstKind uint8

const (
	ConstNil ConstKind = iota
	ConstBoolean
	ConstNumber
	ConstString
)

func (k ConstKind) String() string {
	switch k {
	case ConstNil:
		return "nil"
	case ConstBoolean:
		return "boolean"
	case ConstNumber:
		return "number"
	case ConstString:
		return "string"
	default:
		return "unknown"
	}
}

// Constant is an immutable literal value. The zero Constant is nil.
type Constant struct {
	str  string
	num  float64
	kind ConstKind
	b    bool
}

// Interned constants.
var (
	Nil   = Constant{}
	True  = Constant{kind: ConstBoolean, b: true}
	False = Constant{kind: ConstBoolean}
)

// NumberConst returns a number constant.
func NumberConst(n float64) Constant {
	return Constant{kind: ConstNumber, num: n}
}

// StringConst returns a string constant.
func StringConst(s string) Constant {
	return Constant{kind: ConstString, str: s}
}

// BoolConst returns the interned boolean constant for b.
func BoolConst(b bool) Constant {
	if b {
		return True
	}
	return False
}

func (Constant) isOperand() {}

// Kind returns the constant's dynamic type.
func (c Constant) Kind() ConstKind { return c.kind }

// Bool returns the boolean payload. Only meaningful for ConstBoolean.
func (c Constant) Bool() bool { return c.b }

// Num returns the number payload. Only meaningful for ConstNumber.
func (c Constant) Num() float64 { return c.num }

// Str returns the string payload. Only meaningful for ConstString.
func (c Constant) Str() string { return c.str }

// Truthy reports whether the constant counts as true in a condition.
// Only nil and false are falsy.
func (c Constant) Truthy() bool {
	switch c.kind {
	case ConstNil:
		return false
	case ConstBoolean:
		return c.b
	default:
		return true
	}
}

// String renders the constant in the text form accepted by Parse.
func (c Constant) String() string {
	switch c.kind {
	case ConstNil:
		return "nil"
	case ConstBoolean:
		if c.b {
			return "true"
		}
		return "false"
	case ConstNumber:
		return formatNumberLiteral(c.num)
	case ConstString:
		return strconv.Quote(c.str)
	default:
		return "?"
	}
}

func formatNumberLiteral(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return "+inf"
	case math.IsInf(n, -1):
		return "-inf"
	case math.IsNaN(n):
		return "+nan"
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// Builtin identifies one of the standard-library functions known to the
// compiler. Builtins carry identity only.
type Builtin uint8

const (
	BuiltinPrint Builtin = iota + 1
	BuiltinType
	BuiltinToString
	BuiltinToNumber
	BuiltinAssert
	BuiltinError
	BuiltinSelect
	BuiltinRawEqual
	BuiltinRawLen
	BuiltinMathFloor
	BuiltinMathAbs
	BuiltinMathMax
	BuiltinMathMin
	BuiltinStringLen
	BuiltinStringSub
	BuiltinStringUpper
	BuiltinStringLower
)

var builtinNames = map[Builtin]string{
	BuiltinPrint:       "print",
	BuiltinType:        "type",
	BuiltinToString:    "tostring",
	BuiltinToNumber:    "tonumber",
	BuiltinAssert:      "assert",
	BuiltinError:       "error",
	BuiltinSelect:      "select",
	BuiltinRawEqual:    "rawequal",
	BuiltinRawLen:      "rawlen",
	BuiltinMathFloor:   "math.floor",
	BuiltinMathAbs:     "math.abs",
	BuiltinMathMax:     "math.max",
	BuiltinMathMin:     "math.min",
	BuiltinStringLen:   "string.len",
	BuiltinStringSub:   "string.sub",
	BuiltinStringUpper: "string.upper",
	BuiltinStringLower: "string.lower",
}

var builtinsByName = func() map[string]Builtin {
	m := make(map[string]Builtin, len(builtinNames))
	for b, name := range builtinNames {
		m[name] = b
	}
	return m
}()

// LookupBuiltin returns the builtin with the given library name.
func LookupBuiltin(name string) (Builtin, bool) {
	b, ok := builtinsByName[name]
	return b, ok
}

func (Builtin) isOperand() {}

// Name returns the library name, e.g. "math.floor".
func (b Builtin) Name() string {
	if name, ok := builtinNames[b]; ok {
		return name
	}
	return "builtin" + strconv.Itoa(int(b))
}

func (b Builtin) String() string { return "@" + b.Name() }

// Unversioned is the version of a name that has not been through SSA
// construction.
const Unversioned = -1

// LiveIn is the version of a name read before any definition in the unit.
const LiveIn = 0

// TempName is the base name shared by compiler-synthesized temporaries.
// SSA construction gives each temporary definition its own version.
const TempName = "%"

// NameValue identifies a variable: a base name plus a version.
type NameValue struct {
	Name    string
	Version int
}

// Var returns the unversioned name.
func Var(name string) NameValue {
	return NameValue{Name: name, Version: Unversioned}
}

// Temp returns the unversioned temporary name.
func Temp() NameValue {
	return NameValue{Name: TempName, Version: Unversioned}
}

// Versioned returns name at the given version.
func Versioned(name string, version int) NameValue {
	return NameValue{Name: name, Version: version}
}

func (NameValue) isOperand() {}

// IsZero reports whether the name is absent, as in a call for effect.
func (n NameValue) IsZero() bool { return n.Name == "" }

// IsVersioned reports whether SSA construction assigned a version.
func (n NameValue) IsVersioned() bool { return n.Version >= 0 }

// IsLiveIn reports whether the name denotes the unit's incoming value.
func (n NameValue) IsLiveIn() bool { return n.Version == LiveIn }

// IsTemp reports whether the name is a compiler temporary.
func (n NameValue) IsTemp() bool { return n.Name == TempName }

// Base returns the unversioned form of the name.
func (n NameValue) Base() NameValue {
	return NameValue{Name: n.Name, Version: Unversioned}
}

// reservedNames are identifiers the text reader treats as keywords or
// literals. A variable with one of these names prints with a '$' prefix.
var reservedNames = map[string]bool{
	"br":    true,
	"call":  true,
	"else":  true,
	"false": true,
	"if":    true,
	"nil":   true,
	"phi":   true,
	"true":  true,
}

func (n NameValue) String() string {
	if n.IsTemp() {
		if n.Version < 0 {
			return TempName
		}
		return TempName + strconv.Itoa(n.Version)
	}
	name := n.Name
	if reservedNames[name] {
		name = "$" + name
	}
	if n.Version < 0 {
		return name
	}
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(n.Version))
	return b.String()
}

// sameOperand is operand equality that treats a constant as equal to itself
// even when it holds NaN.
func sameOperand(a, b Operand) bool {
	ca, okA := a.(Constant)
	cb, okB := b.(Constant)
	if okA && okB {
		return ca.kind == cb.kind && ca.b == cb.b && ca.str == cb.str &&
			math.Float64bits(ca.num) == math.Float64bits(cb.num)
	}
	return a == b
}

// AsName returns the operand as a NameValue when it is one.
func AsName(op Operand) (NameValue, bool) {
	n, ok := op.(NameValue)
	return n, ok
}

// AsConstant returns the operand as a Constant when it is one.
func AsConstant(op Operand) (Constant, bool) {
	c, ok := op.(Constant)
	return c, ok
}
