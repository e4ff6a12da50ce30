// Package lexer turns source text into the two low-level streams the parser
// consumes: logical lines with indentation depth, and token streams for the
// expression sublanguage. CRLF is normalized here so the resulting structures
// are byte-identical for both line-ending styles.
package lexer

import (
	"fmt"
	"strings"
)

// Error is a positioned lexical error.
type Error struct {
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

func errAt(line, column int, format string, args ...any) *Error {
	return &Error{Line: line, Column: column, Message: fmt.Sprintf(format, args...)}
}

// Line is one logical source line: content with its indentation depth in
// spaces. Blank and comment-only lines are dropped; Number keeps the original
// 1-based source line for diagnostics.
type Line struct {
	Number int
	Indent int
	Text   string
}

// ScanLines splits source into logical lines. Block comments are removed
// (line numbering preserved), line comments are stripped, tabs in leading
// whitespace are rejected.
func ScanLines(source string) ([]Line, *Error) {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = stripBlockComments(source)

	var lines []Line
	for i, raw := range strings.Split(source, "\n") {
		number := i + 1
		indent := 0
		for indent < len(raw) && raw[indent] == ' ' {
			indent++
		}
		if indent < len(raw) && raw[indent] == '\t' {
			return nil, errAt(number, indent+1, "tab in indentation (use spaces)")
		}
		text := strings.TrimRight(stripLineComment(raw[indent:]), " \t")
		if text == "" {
			continue
		}
		lines = append(lines, Line{Number: number, Indent: indent, Text: text})
	}
	return lines, nil
}

// stripBlockComments removes /* ... */ spans, keeping the newlines they cover
// so later positions stay stable. A comment opener only counts when preceded
// by whitespace or a line start, so text such as URLs is left alone.
func stripBlockComments(source string) string {
	var b strings.Builder
	b.Grow(len(source))
	inComment := false
	for i := 0; i < len(source); i++ {
		if inComment {
			if source[i] == '\n' {
				b.WriteByte('\n')
			}
			if source[i] == '*' && i+1 < len(source) && source[i+1] == '/' {
				inComment = false
				i++
			}
			continue
		}
		if source[i] == '/' && i+1 < len(source) && source[i+1] == '*' && atBoundary(source, i) {
			inComment = true
			i++
			continue
		}
		b.WriteByte(source[i])
	}
	return b.String()
}

func stripLineComment(text string) string {
	for i := 0; i+1 < len(text); i++ {
		if text[i] == '/' && text[i+1] == '/' && (i == 0 || text[i-1] == ' ' || text[i-1] == '\t') {
			return text[:i]
		}
	}
	return text
}

func atBoundary(source string, i int) bool {
	return i == 0 || source[i-1] == ' ' || source[i-1] == '\t' || source[i-1] == '\n'
}
