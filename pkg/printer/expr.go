package printer

import (
	"strconv"
	"strings"

	"loreline/engine-go/pkg/ast"
	"loreline/engine-go/pkg/lexer"
)

// operator binding powers, mirrored from the parser so that parentheses are
// emitted exactly where re-parsing needs them.
func opPower(op ast.BinaryOpKind) int {
	switch op {
	case ast.OpOr:
		return 1
	case ast.OpAnd:
		return 2
	case ast.OpEq, ast.OpNeq:
		return 3
	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		return 4
	case ast.OpAdd, ast.OpSub:
		return 5
	default:
		return 6
	}
}

// printExpr renders an expression canonically: single spaces around binary
// operators, keyword boolean operators, minimal parentheses.
func printExpr(expr ast.Expression, minPower int) string {
	switch e := expr.(type) {
	case *ast.StringLit:
		return lexer.EscapeString(e.Value)
	case *ast.NumberLit:
		if e.IsInt {
			return strconv.FormatInt(e.Int, 10)
		}
		s := strconv.FormatFloat(e.Float, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case *ast.BoolLit:
		if e.Value {
			return "true"
		}
		return "false"
	case *ast.NullLit:
		return "null"
	case *ast.VarRef:
		return e.Name
	case *ast.FieldAccess:
		return e.Character + "." + e.Field
	case *ast.CallExpr:
		args := make([]string, len(e.Args))
		for i, arg := range e.Args {
			args[i] = printExpr(arg, 0)
		}
		return e.Name + "(" + strings.Join(args, ", ") + ")"
	case *ast.UnaryOp:
		var rendered string
		if e.Op == ast.OpNot {
			rendered = "not " + printExpr(e.Operand, 7)
		} else {
			rendered = "-" + printExpr(e.Operand, 7)
		}
		if minPower > 6 {
			return "(" + rendered + ")"
		}
		return rendered
	case *ast.BinaryOp:
		power := opPower(e.Op)
		rendered := printExpr(e.Left, power) + " " + e.Op.String() + " " + printExpr(e.Right, power+1)
		if power < minPower {
			return "(" + rendered + ")"
		}
		return rendered
	default:
		return ""
	}
}
