package parser

import (
	"strings"

	"loreline/engine-go/pkg/ast"
	"loreline/engine-go/pkg/lexer"
)

// parseText scans dialogue or option text into ordered parts: literal runs,
// `{expression}` interpolations and `<tag>`/`</tag>` markers. A backslash
// escapes the next character; `<` only opens a tag when followed by `/` or an
// identifier character, so comparisons pasted into text stay literal.
func (p *fileParser) parseText(raw string, pos ast.Position) (*ast.TextContent, error) {
	content := &ast.TextContent{Position: pos}
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			content.Parts = append(content.Parts, ast.TextRun{Text: run.String()})
			run.Reset()
		}
	}
	line := pos.Line
	col := pos.Column
	i := 0
	for i < len(raw) {
		c := raw[i]
		switch {
		case c == '\\' && i+1 < len(raw):
			run.WriteByte(raw[i+1])
			i += 2
			col += 2
		case c == '\n':
			run.WriteByte('\n')
			i++
			line++
			col = 1
		case c == '{':
			end := findInterpEnd(raw, i+1)
			if end < 0 {
				return nil, syntaxErr(p.path, ast.Position{Line: line, Column: col}, "unterminated '{' interpolation")
			}
			exprSrc := raw[i+1 : end]
			tokens, lexErr := lexer.ScanExpr(exprSrc, line, col+1)
			if lexErr != nil {
				return nil, fromLexError(p.path, lexErr)
			}
			expr, err := parseExpression(tokens, p.path)
			if err != nil {
				return nil, err
			}
			flush()
			content.Parts = append(content.Parts, ast.TextInterp{Position: ast.Position{Line: line, Column: col}, Expr: expr})
			col += end + 1 - i
			i = end + 1
		case c == '<' && isTagOpen(raw, i):
			end := strings.IndexByte(raw[i:], '>')
			if end < 0 {
				return nil, syntaxErr(p.path, ast.Position{Line: line, Column: col}, "unterminated '<' tag")
			}
			inner := raw[i+1 : i+end]
			closing := strings.HasPrefix(inner, "/")
			value := strings.TrimPrefix(inner, "/")
			if value == "" {
				return nil, syntaxErr(p.path, ast.Position{Line: line, Column: col}, "empty tag")
			}
			flush()
			content.Parts = append(content.Parts, ast.TagMark{Value: value, Closing: closing})
			col += end + 1
			i += end + 1
		default:
			run.WriteByte(c)
			i++
			col++
		}
	}
	flush()
	return content, nil
}

// findInterpEnd locates the `}` closing an interpolation, skipping braces
// inside string literals.
func findInterpEnd(raw string, from int) int {
	inString := false
	for i := from; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			i++
		case '"':
			inString = !inString
		case '}':
			if !inString {
				return i
			}
		case '\n':
			if !inString {
				return -1
			}
		}
	}
	return -1
}

// isTagOpen reports whether the `<` at raw[i] starts a tag marker.
func isTagOpen(raw string, i int) bool {
	if i+1 >= len(raw) {
		return false
	}
	next := raw[i+1]
	if next == '/' {
		return true
	}
	return next != ' ' && next != '\t' && next != '<' && next != '=' && strings.IndexByte(">\n", next) < 0
}
