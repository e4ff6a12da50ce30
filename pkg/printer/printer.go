// Package printer unparses an ast.Script back into source text. The output
// is canonical (fixed indentation per depth, one statement per line, tags at
// their recorded positions) and is the primary correctness oracle for the
// engine: print(parse(print(s))) must equal print(s) for every parseable s,
// whatever indent and newline strings are chosen.
package printer

import (
	"strings"

	"loreline/engine-go/pkg/ast"
	"loreline/engine-go/pkg/lexer"
)

// Print renders the script using the given indent and newline strings.
func Print(script *ast.Script, indent, newline string) string {
	p := &printer{indent: indent, newline: newline}
	first := true
	for _, decl := range script.Decls {
		if !first {
			p.raw(p.newline)
		}
		first = false
		p.printDecl(decl)
	}
	return p.b.String()
}

type printer struct {
	b       strings.Builder
	indent  string
	newline string
}

func (p *printer) raw(s string) { p.b.WriteString(s) }

func (p *printer) line(depth int, text string) {
	p.b.WriteString(strings.Repeat(p.indent, depth))
	p.b.WriteString(text)
	p.b.WriteString(p.newline)
}

func (p *printer) printDecl(decl ast.Decl) {
	switch d := decl.(type) {
	case *ast.StateDecl:
		p.line(0, "state")
		for _, f := range d.Vars {
			p.line(1, f.Name+": "+printExpr(f.Value, 0))
		}
	case *ast.CharacterDecl:
		p.line(0, "character "+d.ID)
		for _, f := range d.Fields {
			p.line(1, f.Name+": "+printExpr(f.Value, 0))
		}
	case *ast.Beat:
		p.line(0, "beat "+d.Name)
		p.printBlock(d.Body, 1)
	}
}

func (p *printer) printBlock(block []ast.Statement, depth int) {
	for _, stmt := range block {
		p.printStatement(stmt, depth)
	}
}

func (p *printer) printStatement(stmt ast.Statement, depth int) {
	switch s := stmt.(type) {
	case *ast.DialogueStatement:
		text := p.renderText(s.Content, depth)
		if s.Speaker != "" {
			p.line(depth, s.Speaker+": "+text)
		} else {
			p.line(depth, escapeLeadingKeyword(text))
		}
	case *ast.Assignment:
		p.line(depth, printExpr(s.Target, 0)+" "+s.Op.String()+" "+printExpr(s.Value, 0))
	case *ast.JumpStatement:
		p.line(depth, "-> "+s.Target)
	case *ast.ChoiceStatement:
		p.line(depth, "choice")
		for _, opt := range s.Options {
			text := p.renderText(opt.Content, depth+1)
			if opt.Condition != nil {
				text += " if " + printExpr(opt.Condition, 0)
			}
			p.line(depth+1, text)
			p.printBlock(opt.Body, depth+2)
		}
	case *ast.IfStatement:
		p.printIf(s, depth, "if ")
	}
}

// printIf renders else-if chains on single lines: an else body holding
// exactly one if statement folds into `else if`.
func (p *printer) printIf(s *ast.IfStatement, depth int, keyword string) {
	p.line(depth, keyword+printExpr(s.Condition, 0))
	p.printBlock(s.Then, depth+1)
	if len(s.Else) == 0 {
		return
	}
	if len(s.Else) == 1 {
		if nested, ok := s.Else[0].(*ast.IfStatement); ok {
			p.printIf(nested, depth, "else if ")
			return
		}
	}
	p.line(depth, "else")
	p.printBlock(s.Else, depth+1)
}

// renderText serialises text content to its source form: escaped runs,
// `{expr}` interpolations and `<tag>` markers, with embedded newlines turned
// into continuation lines one level deeper.
func (p *printer) renderText(content *ast.TextContent, depth int) string {
	var b strings.Builder
	for i, part := range content.Parts {
		switch t := part.(type) {
		case ast.TextRun:
			b.WriteString(escapeRun(t.Text, i+1 < len(content.Parts)))
		case ast.TextInterp:
			b.WriteString("{" + printExpr(t.Expr, 0) + "}")
		case ast.TagMark:
			if t.Closing {
				b.WriteString("</" + t.Value + ">")
			} else {
				b.WriteString("<" + t.Value + ">")
			}
		}
	}
	continuation := p.newline + strings.Repeat(p.indent, depth+1)
	return strings.ReplaceAll(b.String(), "\n", continuation)
}

// escapeRun protects characters that would re-lex as markup. `<` is escaped
// when the parser would read it as a tag opener; moreFollows covers a `<` at
// the end of a run that another part (such as an interpolation) follows.
func escapeRun(text string, moreFollows bool) string {
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '{':
			b.WriteString(`\{`)
		case '<':
			if tagWouldOpen(text, i, moreFollows) {
				b.WriteString(`\<`)
			} else {
				b.WriteByte('<')
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func tagWouldOpen(text string, i int, moreFollows bool) bool {
	if i+1 >= len(text) {
		return moreFollows
	}
	next := text[i+1]
	if next == '/' {
		return true
	}
	return next != ' ' && next != '\t' && next != '\n' && next != '<' && next != '=' && next != '>'
}

// escapeLeadingKeyword guards narrator lines whose text would otherwise
// classify as a statement when parsed back.
func escapeLeadingKeyword(text string) string {
	if text == "" {
		return text
	}
	firstLine := text
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}
	if classifiesAsStatement(firstLine) {
		return "\\" + text
	}
	return text
}

func classifiesAsStatement(line string) bool {
	if strings.HasPrefix(line, "->") {
		return true
	}
	word := line
	if i := strings.IndexByte(word, ' '); i >= 0 {
		word = word[:i]
	}
	switch word {
	case "choice":
		return line == "choice"
	case "if", "else", "state", "character", "beat", "import":
		return true
	}
	// An identifier before the first colon would reclassify the narrator
	// line as speaker dialogue.
	if i := strings.IndexByte(line, ':'); i > 0 && lexer.IsIdent(line[:i]) {
		return true
	}
	return looksLikeAssignment(line)
}

func looksLikeAssignment(line string) bool {
	i := 0
	for i < len(line) && line[i] != ' ' && line[i] != '=' && line[i] != '+' && line[i] != '-' {
		i++
	}
	lhs := line[:i]
	rest := strings.TrimLeft(line[i:], " ")
	if !validTarget(lhs) {
		return false
	}
	if strings.HasPrefix(rest, "==") {
		return false
	}
	return strings.HasPrefix(rest, "=") || strings.HasPrefix(rest, "+=") || strings.HasPrefix(rest, "-=")
}

func validTarget(lhs string) bool {
	parts := strings.Split(lhs, ".")
	if len(parts) > 2 {
		return false
	}
	for _, part := range parts {
		if !lexer.IsIdent(part) {
			return false
		}
	}
	return true
}
