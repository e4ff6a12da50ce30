package parser

import (
	"fmt"

	"loreline/engine-go/pkg/ast"
	"loreline/engine-go/pkg/lexer"
)

// SyntaxError is a positioned parse failure. A parse either returns a full
// Script or exactly one SyntaxError; no partial tree is ever produced.
type SyntaxError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
}

// ImportError reports a failed import, attributed to the importing statement
// rather than the missing file.
type ImportError struct {
	Path       string // importing file
	Line       int
	Column     int
	ImportPath string // resolved path that failed to load
	Reason     string
}

func (e *ImportError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%d:%d: import %q: %s", e.Line, e.Column, e.ImportPath, e.Reason)
	}
	return fmt.Sprintf("%s:%d:%d: import %q: %s", e.Path, e.Line, e.Column, e.ImportPath, e.Reason)
}

func syntaxErr(path string, pos ast.Position, format string, args ...any) *SyntaxError {
	return &SyntaxError{Path: path, Line: pos.Line, Column: pos.Column, Message: fmt.Sprintf(format, args...)}
}

func fromLexError(path string, err *lexer.Error) *SyntaxError {
	return &SyntaxError{Path: path, Line: err.Line, Column: err.Column, Message: err.Message}
}
