package parser

import (
	"strings"

	"loreline/engine-go/pkg/ast"
	"loreline/engine-go/pkg/lexer"
)

// fileParser walks the logical lines of a single file.
type fileParser struct {
	path  string
	lines []lexer.Line
	idx   int
}

func (p *fileParser) peek() (lexer.Line, bool) {
	if p.idx >= len(p.lines) {
		return lexer.Line{}, false
	}
	return p.lines[p.idx], true
}

func (p *fileParser) linePos(l lexer.Line) ast.Position {
	return ast.Position{Line: l.Number, Column: l.Indent + 1}
}

func (p *fileParser) parseTopLevel() ([]entry, error) {
	var entries []entry
	for {
		line, ok := p.peek()
		if !ok {
			return entries, nil
		}
		if line.Indent != 0 {
			return nil, syntaxErr(p.path, p.linePos(line), "unexpected indentation at top level")
		}
		word, rest := splitWord(line.Text)
		pos := p.linePos(line)
		switch word {
		case "import":
			raw, err := p.importPath(rest, pos)
			if err != nil {
				return nil, err
			}
			p.idx++
			entries = append(entries, entry{imp: &importRef{
				resolved: resolveImport(p.path, raw),
				pos:      pos,
				raw:      raw,
			}})
		case "state":
			if rest != "" {
				return nil, syntaxErr(p.path, pos, "unexpected text after 'state'")
			}
			p.idx++
			fields, err := p.parseFieldBlock(line.Indent)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry{decl: &ast.StateDecl{Position: pos, Vars: fields}})
		case "character":
			if !lexer.IsIdent(rest) {
				return nil, syntaxErr(p.path, pos, "'character' expects an identifier")
			}
			p.idx++
			fields, err := p.parseFieldBlock(line.Indent)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry{decl: &ast.CharacterDecl{Position: pos, ID: rest, Fields: fields}})
		case "beat":
			if !lexer.IsIdent(rest) {
				return nil, syntaxErr(p.path, pos, "'beat' expects an identifier")
			}
			p.idx++
			body, err := p.parseBlock(line.Indent)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry{decl: &ast.Beat{Position: pos, Name: rest, Body: body}})
		default:
			return nil, syntaxErr(p.path, pos, "expected 'import', 'state', 'character' or 'beat', found %q", word)
		}
	}
}

func (p *fileParser) importPath(rest string, pos ast.Position) (string, error) {
	tokens, lexErr := lexer.ScanExpr(rest, pos.Line, pos.Column+len("import "))
	if lexErr != nil {
		return "", fromLexError(p.path, lexErr)
	}
	if len(tokens) != 2 || tokens[0].Kind != lexer.TokenString {
		return "", syntaxErr(p.path, pos, "'import' expects a quoted path")
	}
	return tokens[0].Str, nil
}

// parseFieldBlock reads the `name: expression` lines of a state or character
// block.
func (p *fileParser) parseFieldBlock(parentIndent int) ([]*ast.FieldDefault, error) {
	var fields []*ast.FieldDefault
	blockIndent := -1
	for {
		line, ok := p.peek()
		if !ok || line.Indent <= parentIndent {
			return fields, nil
		}
		if blockIndent == -1 {
			blockIndent = line.Indent
		}
		if line.Indent != blockIndent {
			return nil, syntaxErr(p.path, p.linePos(line), "inconsistent indentation")
		}
		pos := p.linePos(line)
		name, rest, ok := splitColon(line.Text)
		if !ok || !lexer.IsIdent(name) {
			return nil, syntaxErr(p.path, pos, "expected 'name: value'")
		}
		value, err := p.parseExprString(rest, line.Number, line.Indent+len(name)+2)
		if err != nil {
			return nil, err
		}
		fields = append(fields, &ast.FieldDefault{Position: pos, Name: name, Value: value})
		p.idx++
	}
}

// parseBlock reads a statement sequence indented deeper than parentIndent.
func (p *fileParser) parseBlock(parentIndent int) ([]ast.Statement, error) {
	stmts := []ast.Statement{}
	blockIndent := -1
	for {
		line, ok := p.peek()
		if !ok || line.Indent <= parentIndent {
			return stmts, nil
		}
		if blockIndent == -1 {
			blockIndent = line.Indent
		}
		if line.Indent != blockIndent {
			return nil, syntaxErr(p.path, p.linePos(line), "inconsistent indentation")
		}
		stmt, err := p.parseStatement(line)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (p *fileParser) parseStatement(line lexer.Line) (ast.Statement, error) {
	pos := p.linePos(line)
	word, rest := splitWord(line.Text)
	switch {
	case word == "choice" && rest == "":
		p.idx++
		return p.parseChoice(pos, line.Indent)
	case word == "if":
		return p.parseIf(line)
	case word == "else":
		return nil, syntaxErr(p.path, pos, "'else' without matching 'if'")
	case strings.HasPrefix(line.Text, "->"):
		target := strings.TrimSpace(line.Text[2:])
		if target != ast.EndTarget && !lexer.IsIdent(target) {
			return nil, syntaxErr(p.path, pos, "'->' expects a beat name or '.'")
		}
		p.idx++
		return &ast.JumpStatement{Position: pos, Target: target}, nil
	}
	if stmt, ok, err := p.tryAssignment(line); err != nil {
		return nil, err
	} else if ok {
		return stmt, nil
	}
	return p.parseDialogue(line)
}

// tryAssignment recognises `target = expr`, `target += expr`, `target -= expr`
// where target is an identifier or `identifier.field`.
func (p *fileParser) tryAssignment(line lexer.Line) (ast.Statement, bool, error) {
	text := line.Text
	i := 0
	for i < len(text) && text[i] != ' ' && text[i] != '=' && text[i] != '+' && text[i] != '-' {
		i++
	}
	lhs := text[:i]
	rest := strings.TrimLeft(text[i:], " ")
	var op ast.AssignOp
	var opLen int
	switch {
	case strings.HasPrefix(rest, "+="):
		op, opLen = ast.AssignAdd, 2
	case strings.HasPrefix(rest, "-="):
		op, opLen = ast.AssignSub, 2
	case strings.HasPrefix(rest, "=="):
		return nil, false, nil
	case strings.HasPrefix(rest, "="):
		op, opLen = ast.AssignSet, 1
	default:
		return nil, false, nil
	}
	pos := p.linePos(line)
	target, ok := parseAssignTarget(lhs, pos)
	if !ok {
		return nil, false, nil
	}
	valueSrc := strings.TrimLeft(rest[opLen:], " ")
	value, err := p.parseExprString(valueSrc, line.Number, line.Indent+len(line.Text)-len(valueSrc)+1)
	if err != nil {
		return nil, false, err
	}
	p.idx++
	return &ast.Assignment{Position: pos, Target: target, Op: op, Value: value}, true, nil
}

func parseAssignTarget(lhs string, pos ast.Position) (ast.Expression, bool) {
	if dot := strings.IndexByte(lhs, '.'); dot >= 0 {
		char, field := lhs[:dot], lhs[dot+1:]
		if lexer.IsIdent(char) && lexer.IsIdent(field) {
			return &ast.FieldAccess{Position: pos, Character: char, Field: field}, true
		}
		return nil, false
	}
	if lexer.IsIdent(lhs) {
		return &ast.VarRef{Position: pos, Name: lhs}, true
	}
	return nil, false
}

func (p *fileParser) parseIf(line lexer.Line) (ast.Statement, error) {
	pos := p.linePos(line)
	condSrc := strings.TrimSpace(line.Text[len("if"):])
	if condSrc == "" {
		return nil, syntaxErr(p.path, pos, "'if' expects a condition")
	}
	cond, err := p.parseExprString(condSrc, line.Number, line.Indent+len(line.Text)-len(condSrc)+1)
	if err != nil {
		return nil, err
	}
	p.idx++
	then, err := p.parseBlock(line.Indent)
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStatement{Position: pos, Condition: cond, Then: then}

	next, ok := p.peek()
	if !ok || next.Indent != line.Indent {
		return stmt, nil
	}
	word, rest := splitWord(next.Text)
	if word != "else" {
		return stmt, nil
	}
	elsePos := p.linePos(next)
	if rest == "" {
		p.idx++
		elseBody, err := p.parseBlock(next.Indent)
		if err != nil {
			return nil, err
		}
		stmt.Else = elseBody
		return stmt, nil
	}
	if elseWord, _ := splitWord(rest); elseWord != "if" {
		return nil, syntaxErr(p.path, elsePos, "unexpected text after 'else'")
	}
	nested, err := p.parseIf(lexer.Line{Number: next.Number, Indent: next.Indent, Text: rest})
	if err != nil {
		return nil, err
	}
	stmt.Else = []ast.Statement{nested}
	return stmt, nil
}

func (p *fileParser) parseChoice(pos ast.Position, parentIndent int) (ast.Statement, error) {
	choice := &ast.ChoiceStatement{Position: pos}
	optionIndent := -1
	for {
		line, ok := p.peek()
		if !ok || line.Indent <= parentIndent {
			break
		}
		if optionIndent == -1 {
			optionIndent = line.Indent
		}
		if line.Indent != optionIndent {
			return nil, syntaxErr(p.path, p.linePos(line), "inconsistent indentation in choice")
		}
		opt, err := p.parseOption(line)
		if err != nil {
			return nil, err
		}
		choice.Options = append(choice.Options, opt)
	}
	if len(choice.Options) == 0 {
		return nil, syntaxErr(p.path, pos, "'choice' expects at least one option")
	}
	return choice, nil
}

func (p *fileParser) parseOption(line lexer.Line) (*ast.ChoiceOption, error) {
	pos := p.linePos(line)
	textSrc, condSrc := splitOptionCondition(line.Text)
	var cond ast.Expression
	if condSrc != "" {
		parsed, err := p.parseExprString(condSrc, line.Number, line.Indent+len(line.Text)-len(condSrc)+1)
		if err == nil {
			cond = parsed
		} else {
			// Not a condition after all: the ` if ` belonged to the text.
			textSrc = line.Text
		}
	}
	content, err := p.parseText(textSrc, pos)
	if err != nil {
		return nil, err
	}
	p.idx++
	body, err := p.parseBlock(line.Indent)
	if err != nil {
		return nil, err
	}
	return &ast.ChoiceOption{Position: pos, Content: content, Condition: cond, Body: body}, nil
}

// parseDialogue handles speaker and narrator lines, folding continuation
// lines (indented deeper, joined with newlines) into the text content.
func (p *fileParser) parseDialogue(line lexer.Line) (ast.Statement, error) {
	pos := p.linePos(line)
	speaker := ""
	textSrc := line.Text
	if name, rest, ok := splitColon(line.Text); ok && lexer.IsIdent(name) {
		speaker = name
		textSrc = rest
	}
	p.idx++

	raw := textSrc
	for {
		next, ok := p.peek()
		if !ok || next.Indent <= line.Indent {
			break
		}
		raw += "\n" + next.Text
		p.idx++
	}
	content, err := p.parseText(raw, pos)
	if err != nil {
		return nil, err
	}
	return &ast.DialogueStatement{Position: pos, Speaker: speaker, Content: content}, nil
}

func (p *fileParser) parseExprString(src string, line, column int) (ast.Expression, error) {
	tokens, lexErr := lexer.ScanExpr(src, line, column)
	if lexErr != nil {
		return nil, fromLexError(p.path, lexErr)
	}
	return parseExpression(tokens, p.path)
}

// splitWord splits the first space-delimited word from the rest of the line.
func splitWord(text string) (string, string) {
	if i := strings.IndexByte(text, ' '); i >= 0 {
		return text[:i], strings.TrimLeft(text[i+1:], " ")
	}
	return text, ""
}

// splitColon splits `name: rest`; the single optional space after the colon
// is consumed.
func splitColon(text string) (string, string, bool) {
	i := strings.IndexByte(text, ':')
	if i < 0 {
		return "", "", false
	}
	rest := text[i+1:]
	rest = strings.TrimPrefix(rest, " ")
	return text[:i], rest, true
}

// splitOptionCondition finds the last top-level ` if ` separator of an option
// line. Occurrences inside interpolations, tags or quotes do not count.
func splitOptionCondition(text string) (textSrc, condSrc string) {
	depth := 0
	last := -1
	for i := 0; i+3 < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '<':
			// A bare `<` that the text parser keeps literal must not open a
			// depth level, or the trailing condition is swallowed as text.
			if isTagOpen(text, i) {
				depth++
			}
		case '}', '>':
			if depth > 0 {
				depth--
			}
		case ' ':
			if depth == 0 && strings.HasPrefix(text[i:], " if ") {
				last = i
			}
		}
	}
	if last < 0 {
		return text, ""
	}
	return text[:last], text[last+len(" if "):]
}
