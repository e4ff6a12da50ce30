package parser

import (
	"loreline/engine-go/pkg/ast"
	"loreline/engine-go/pkg/lexer"
)

// exprParser is a precedence-climbing parser over a scanned token stream.
type exprParser struct {
	path   string
	tokens []lexer.Token
	idx    int
}

// parseExpression parses a full token stream; trailing tokens are an error.
func parseExpression(tokens []lexer.Token, path string) (ast.Expression, error) {
	p := &exprParser{path: path, tokens: tokens}
	expr, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != lexer.TokenEOF {
		return nil, syntaxErr(path, tokPos(tok), "unexpected %q in expression", tok.Text)
	}
	return expr, nil
}

func tokPos(tok lexer.Token) ast.Position {
	return ast.Position{Line: tok.Line, Column: tok.Column}
}

func (p *exprParser) peek() lexer.Token { return p.tokens[p.idx] }

func (p *exprParser) next() lexer.Token {
	tok := p.tokens[p.idx]
	if tok.Kind != lexer.TokenEOF {
		p.idx++
	}
	return tok
}

// binding powers, lowest first
func binaryPower(tok lexer.Token) (ast.BinaryOpKind, int, bool) {
	switch {
	case tok.Kind == lexer.TokenIdent && tok.Text == "or", tok.Kind == lexer.TokenOp && tok.Text == "||":
		return ast.OpOr, 1, true
	case tok.Kind == lexer.TokenIdent && tok.Text == "and", tok.Kind == lexer.TokenOp && tok.Text == "&&":
		return ast.OpAnd, 2, true
	}
	if tok.Kind != lexer.TokenOp {
		return 0, 0, false
	}
	switch tok.Text {
	case "==":
		return ast.OpEq, 3, true
	case "!=":
		return ast.OpNeq, 3, true
	case "<":
		return ast.OpLt, 4, true
	case "<=":
		return ast.OpLte, 4, true
	case ">":
		return ast.OpGt, 4, true
	case ">=":
		return ast.OpGte, 4, true
	case "+":
		return ast.OpAdd, 5, true
	case "-":
		return ast.OpSub, 5, true
	case "*":
		return ast.OpMul, 6, true
	case "/":
		return ast.OpDiv, 6, true
	case "%":
		return ast.OpMod, 6, true
	}
	return 0, 0, false
}

func (p *exprParser) parseBinary(minPower int) (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, power, ok := binaryPower(p.peek())
		if !ok || power < minPower {
			return left, nil
		}
		tok := p.next()
		right, err := p.parseBinary(power + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Position: tokPos(tok), Op: op, Left: left, Right: right}
	}
}

func (p *exprParser) parseUnary() (ast.Expression, error) {
	tok := p.peek()
	switch {
	case tok.Kind == lexer.TokenOp && tok.Text == "-":
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Position: tokPos(tok), Op: ast.OpNeg, Operand: operand}, nil
	case tok.Kind == lexer.TokenOp && tok.Text == "!",
		tok.Kind == lexer.TokenIdent && tok.Text == "not":
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Position: tokPos(tok), Op: ast.OpNot, Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (ast.Expression, error) {
	tok := p.next()
	pos := tokPos(tok)
	switch tok.Kind {
	case lexer.TokenNumber:
		return &ast.NumberLit{Position: pos, IsInt: tok.IsInt, Int: tok.Int, Float: tok.Float}, nil
	case lexer.TokenString:
		return &ast.StringLit{Position: pos, Value: tok.Str}, nil
	case lexer.TokenLParen:
		inner, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.Kind != lexer.TokenRParen {
			return nil, syntaxErr(p.path, tokPos(closing), "expected ')'")
		}
		return inner, nil
	case lexer.TokenIdent:
		switch tok.Text {
		case "true", "false":
			return &ast.BoolLit{Position: pos, Value: tok.Text == "true"}, nil
		case "null":
			return &ast.NullLit{Position: pos}, nil
		case "and", "or", "not":
			return nil, syntaxErr(p.path, pos, "unexpected keyword %q", tok.Text)
		}
		if p.peek().Kind == lexer.TokenLParen {
			p.next()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &ast.CallExpr{Position: pos, Name: tok.Text, Args: args}, nil
		}
		if p.peek().Kind == lexer.TokenDot {
			p.next()
			field := p.next()
			if field.Kind != lexer.TokenIdent {
				return nil, syntaxErr(p.path, tokPos(field), "expected field name after '.'")
			}
			return &ast.FieldAccess{Position: pos, Character: tok.Text, Field: field.Text}, nil
		}
		return &ast.VarRef{Position: pos, Name: tok.Text}, nil
	case lexer.TokenEOF:
		return nil, syntaxErr(p.path, pos, "unexpected end of expression")
	default:
		return nil, syntaxErr(p.path, pos, "unexpected %q in expression", tok.Text)
	}
}

func (p *exprParser) parseArgs() ([]ast.Expression, error) {
	var args []ast.Expression
	if p.peek().Kind == lexer.TokenRParen {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		tok := p.next()
		switch tok.Kind {
		case lexer.TokenComma:
			continue
		case lexer.TokenRParen:
			return args, nil
		default:
			return nil, syntaxErr(p.path, tokPos(tok), "expected ',' or ')' in arguments")
		}
	}
}
