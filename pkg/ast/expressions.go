package ast

// Expression is a node of the restricted condition/assignment sublanguage.
// Expressions are side-effect-free; only Assignment statements mutate state.
type Expression interface {
	Node
	exprNode()
}

// StringLit is a double-quoted string literal (already unescaped).
type StringLit struct {
	Position Position
	Value    string
}

func (e *StringLit) Pos() Position { return e.Position }
func (e *StringLit) exprNode()     {}

// NumberLit is an integer or floating point literal.
type NumberLit struct {
	Position Position
	IsInt    bool
	Int      int64
	Float    float64
}

func (e *NumberLit) Pos() Position { return e.Position }
func (e *NumberLit) exprNode()     {}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Position Position
	Value    bool
}

func (e *BoolLit) Pos() Position { return e.Position }
func (e *BoolLit) exprNode()     {}

// NullLit is the `null` literal.
type NullLit struct {
	Position Position
}

func (e *NullLit) Pos() Position { return e.Position }
func (e *NullLit) exprNode()     {}

// VarRef reads a script-scoped variable.
type VarRef struct {
	Position Position
	Name     string
}

func (e *VarRef) Pos() Position { return e.Position }
func (e *VarRef) exprNode()     {}

// FieldAccess reads a character field (`character.field`).
type FieldAccess struct {
	Position  Position
	Character string
	Field     string
}

func (e *FieldAccess) Pos() Position { return e.Position }
func (e *FieldAccess) exprNode()     {}

// BinaryOpKind enumerates the binary operators.
type BinaryOpKind int

const (
	OpAdd BinaryOpKind = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
)

func (k BinaryOpKind) String() string {
	switch k {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	default:
		return "?"
	}
}

// BinaryOp applies an arithmetic, comparison or boolean operator.
type BinaryOp struct {
	Position Position
	Op       BinaryOpKind
	Left     Expression
	Right    Expression
}

func (e *BinaryOp) Pos() Position { return e.Position }
func (e *BinaryOp) exprNode()     {}

// UnaryOpKind enumerates the unary operators.
type UnaryOpKind int

const (
	OpNeg UnaryOpKind = iota
	OpNot
)

func (k UnaryOpKind) String() string {
	if k == OpNot {
		return "not"
	}
	return "-"
}

// UnaryOp applies negation or logical not.
type UnaryOp struct {
	Position Position
	Op       UnaryOpKind
	Operand  Expression
}

func (e *UnaryOp) Pos() Position { return e.Position }
func (e *UnaryOp) exprNode()     {}

// CallExpr invokes a host-registered function.
type CallExpr struct {
	Position Position
	Name     string
	Args     []Expression
}

func (e *CallExpr) Pos() Position { return e.Position }
func (e *CallExpr) exprNode()     {}
