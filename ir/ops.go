package ir

// UnaryOp is the operator of a UnaryAssignment.
type UnaryOp uint8

const (
	OpNegation UnaryOp = iota + 1
	OpLogicalNot
	OpLength
	OpBitwiseNegation
)

var unaryMnemonics = map[UnaryOp]string{
	OpNegation:        "neg",
	OpLogicalNot:      "not",
	OpLength:          "len",
	OpBitwiseNegation: "bnot",
}

func (op UnaryOp) String() string {
	if s, ok := unaryMnemonics[op]; ok {
		return s
	}
	return "unary?"
}

// BinaryOp is the operator of a BinaryAssignment.
type BinaryOp uint8

const (
	OpAddition BinaryOp = iota + 1
	OpSubtraction
	OpMultiplication
	OpDivision
	OpFloorDivision
	OpModulo
	OpExponentiation
	OpBitwiseAnd
	OpBitwiseOr
	OpBitwiseXor
	OpShiftLeft
	OpShiftRight
	OpConcatenation
	OpEqual
	OpNotEqual
	OpLessThan
	OpLessEqual
	OpGreaterThan
	OpGreaterEqual
)

var binaryMnemonics = map[BinaryOp]string{
	OpAddition:       "add",
	OpSubtraction:    "sub",
	OpMultiplication: "mul",
	OpDivision:       "div",
	OpFloorDivision:  "idiv",
	OpModulo:         "mod",
	OpExponentiation: "pow",
	OpBitwiseAnd:     "band",
	OpBitwiseOr:      "bor",
	OpBitwiseXor:     "bxor",
	OpShiftLeft:      "shl",
	OpShiftRight:     "shr",
	OpConcatenation:  "concat",
	OpEqual:          "eq",
	OpNotEqual:       "ne",
	OpLessThan:       "lt",
	OpLessEqual:      "le",
	OpGreaterThan:    "gt",
	OpGreaterEqual:   "ge",
}

func (op BinaryOp) String() string {
	if s, ok := binaryMnemonics[op]; ok {
		return s
	}
	return "binary?"
}

var (
	unaryByMnemonic  = invert(unaryMnemonics)
	binaryByMnemonic = invert(binaryMnemonics)
)

func invert[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// LookupUnaryOp returns the unary operator with the given mnemonic.
func LookupUnaryOp(mnemonic string) (UnaryOp, bool) {
	op, ok := unaryByMnemonic[mnemonic]
	return op, ok
}

// LookupBinaryOp returns the binary operator with the given mnemonic.
func LookupBinaryOp(mnemonic string) (BinaryOp, bool) {
	op, ok := binaryByMnemonic[mnemonic]
	return op, ok
}
