package interpreter

import (
	"fmt"

	"loreline/engine-go/pkg/ast"
	"loreline/engine-go/pkg/runtime"
)

func (in *Interpreter) eval(e ast.Expression) (runtime.Value, error) {
	switch expr := e.(type) {
	case *ast.StringLit:
		return runtime.StringValue{Val: expr.Value}, nil
	case *ast.NumberLit:
		if expr.IsInt {
			return runtime.IntValue{Val: expr.Int}, nil
		}
		return runtime.FloatValue{Val: expr.Float}, nil
	case *ast.BoolLit:
		return runtime.BoolValue{Val: expr.Value}, nil
	case *ast.NullLit:
		return runtime.Null, nil
	case *ast.VarRef:
		return in.readVar(expr.Name, expr.Position)
	case *ast.FieldAccess:
		return in.readField(expr.Character, expr.Field, expr.Position)
	case *ast.UnaryOp:
		return in.evalUnary(expr)
	case *ast.BinaryOp:
		return in.evalBinary(expr)
	case *ast.CallExpr:
		return in.evalCall(expr)
	}
	pos := e.Pos()
	return nil, stateErrf("%d:%d: unsupported expression", pos.Line, pos.Column)
}

func (in *Interpreter) readVar(name string, pos ast.Position) (runtime.Value, error) {
	if v, ok := in.store.Var(name); ok {
		return v, nil
	}
	if in.opts.StrictAccess {
		return nil, accessErrf("%d:%d: unknown variable %q", pos.Line, pos.Column, name)
	}
	return runtime.Null, nil
}

func (in *Interpreter) readField(character, field string, pos ast.Position) (runtime.Value, error) {
	if !in.store.HasCharacter(character) {
		if in.opts.StrictAccess {
			return nil, accessErrf("%d:%d: unknown character %q", pos.Line, pos.Column, character)
		}
		return runtime.Null, nil
	}
	if v, ok := in.store.Field(character, field); ok {
		return v, nil
	}
	if in.opts.StrictAccess {
		return nil, accessErrf("%d:%d: character %q has no field %q", pos.Line, pos.Column, character, field)
	}
	return runtime.Null, nil
}

func (in *Interpreter) evalUnary(expr *ast.UnaryOp) (runtime.Value, error) {
	v, err := in.eval(expr.Operand)
	if err != nil {
		return nil, err
	}
	if expr.Op == ast.OpNot {
		return runtime.BoolValue{Val: !runtime.Truthy(v)}, nil
	}
	out, err := runtime.Negate(v)
	if err != nil {
		return nil, posErr(expr.Position, err)
	}
	return out, nil
}

func (in *Interpreter) evalBinary(expr *ast.BinaryOp) (runtime.Value, error) {
	if expr.Op == ast.OpAnd || expr.Op == ast.OpOr {
		left, err := in.eval(expr.Left)
		if err != nil {
			return nil, err
		}
		lt := runtime.Truthy(left)
		if expr.Op == ast.OpAnd && !lt {
			return runtime.BoolValue{Val: false}, nil
		}
		if expr.Op == ast.OpOr && lt {
			return runtime.BoolValue{Val: true}, nil
		}
		right, err := in.eval(expr.Right)
		if err != nil {
			return nil, err
		}
		return runtime.BoolValue{Val: runtime.Truthy(right)}, nil
	}
	left, err := in.eval(expr.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.eval(expr.Right)
	if err != nil {
		return nil, err
	}
	switch expr.Op {
	case ast.OpEq:
		return runtime.BoolValue{Val: runtime.Equal(left, right)}, nil
	case ast.OpNeq:
		return runtime.BoolValue{Val: !runtime.Equal(left, right)}, nil
	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		cmp, err := runtime.Compare(left, right)
		if err != nil {
			return nil, posErr(expr.Position, err)
		}
		switch expr.Op {
		case ast.OpLt:
			return runtime.BoolValue{Val: cmp < 0}, nil
		case ast.OpLte:
			return runtime.BoolValue{Val: cmp <= 0}, nil
		case ast.OpGt:
			return runtime.BoolValue{Val: cmp > 0}, nil
		default:
			return runtime.BoolValue{Val: cmp >= 0}, nil
		}
	default:
		out, err := runtime.Arithmetic(expr.Op.String(), left, right)
		if err != nil {
			return nil, posErr(expr.Position, err)
		}
		return out, nil
	}
}

func (in *Interpreter) evalCall(expr *ast.CallExpr) (runtime.Value, error) {
	fn, ok := in.opts.Functions[expr.Name]
	if !ok {
		return nil, accessErrf("%d:%d: unknown function %q", expr.Position.Line, expr.Position.Column, expr.Name)
	}
	args := make([]runtime.Value, len(expr.Args))
	for i, a := range expr.Args {
		v, err := in.eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	out, err := fn(args)
	if err != nil {
		return nil, fmt.Errorf("%d:%d: %s: %w", expr.Position.Line, expr.Position.Column, expr.Name, err)
	}
	if out == nil {
		out = runtime.Null
	}
	return out, nil
}
