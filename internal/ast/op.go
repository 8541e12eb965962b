package ast

// Op is the operator tag of operation, sequence and branch nodes.
type Op uint8

const (
	OpNone Op = iota

	// Scaffolding
	OpFunction
	OpSequence
	OpParameters
	OpLinkerObjects

	// Aggregates
	OpFunctionCall
	OpConstruct
	OpBuiltin
	OpSwizzleSelector

	// Arithmetic and bitwise
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr

	// Comparison
	OpEqual
	OpNotEqual
	OpLessThan
	OpGreaterThan
	OpLessThanEqual
	OpGreaterThanEqual

	// Logical
	OpLogicalAnd
	OpLogicalOr
	OpLogicalXor
	OpComma

	// Assignment
	OpAssign
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpModAssign
	OpAndAssign
	OpOrAssign
	OpXorAssign
	OpShlAssign
	OpShrAssign

	// Access
	OpVectorSwizzle
	OpIndexDirect
	OpIndexIndirect
	OpIndexDirectStruct

	// Unary
	OpNegate
	OpLogicalNot
	OpBitwiseNot
	OpPreIncrement
	OpPreDecrement
	OpPostIncrement
	OpPostDecrement

	// Branches
	OpReturn
	OpBreak
	OpContinue
	OpDiscard
)

var opNames = [...]string{
	OpNone:              "none",
	OpFunction:          "function",
	OpSequence:          "sequence",
	OpParameters:        "parameters",
	OpLinkerObjects:     "linker-objects",
	OpFunctionCall:      "call",
	OpConstruct:         "construct",
	OpBuiltin:           "builtin",
	OpSwizzleSelector:   "swizzle-selector",
	OpAdd:               "+",
	OpSub:               "-",
	OpMul:               "*",
	OpDiv:               "/",
	OpMod:               "%",
	OpBitAnd:            "&",
	OpBitOr:             "|",
	OpBitXor:            "^",
	OpShl:               "<<",
	OpShr:               ">>",
	OpEqual:             "==",
	OpNotEqual:          "!=",
	OpLessThan:          "<",
	OpGreaterThan:       ">",
	OpLessThanEqual:     "<=",
	OpGreaterThanEqual:  ">=",
	OpLogicalAnd:        "&&",
	OpLogicalOr:         "||",
	OpLogicalXor:        "^^",
	OpComma:             ",",
	OpAssign:            "=",
	OpAddAssign:         "+=",
	OpSubAssign:         "-=",
	OpMulAssign:         "*=",
	OpDivAssign:         "/=",
	OpModAssign:         "%=",
	OpAndAssign:         "&=",
	OpOrAssign:          "|=",
	OpXorAssign:         "^=",
	OpShlAssign:         "<<=",
	OpShrAssign:         ">>=",
	OpVectorSwizzle:     "swizzle",
	OpIndexDirect:       "index",
	OpIndexIndirect:     "index-indirect",
	OpIndexDirectStruct: "field",
	OpNegate:            "negate",
	OpLogicalNot:        "!",
	OpBitwiseNot:        "~",
	OpPreIncrement:      "++pre",
	OpPreDecrement:      "--pre",
	OpPostIncrement:     "post++",
	OpPostDecrement:     "post--",
	OpReturn:            "return",
	OpBreak:             "break",
	OpContinue:          "continue",
	OpDiscard:           "discard",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "unknown"
}

// Counted reports whether an operation with this tag gets a width cost.
// Scaffolding, plain assignment, the swizzle selector and every comparison
// or logical operator are excluded.
func (o Op) Counted() bool {
	switch o {
	case OpFunction, OpSequence, OpParameters, OpLinkerObjects,
		OpAssign, OpSwizzleSelector,
		OpEqual, OpNotEqual, OpLessThan, OpGreaterThan,
		OpLessThanEqual, OpGreaterThanEqual,
		OpComma, OpLogicalOr, OpLogicalXor, OpLogicalAnd:
		return false
	default:
		return true
	}
}

// IsAssignment reports whether o writes its left operand.
func (o Op) IsAssignment() bool {
	return o >= OpAssign && o <= OpShrAssign
}

// IsComparison reports whether o yields a boolean from a comparison.
func (o Op) IsComparison() bool {
	return o >= OpEqual && o <= OpGreaterThanEqual
}
