// Package parser turns Loreline source text, plus recursively resolved
// imports, into an immutable ast.Script. Parsing is all-or-nothing per file:
// the first lexical or grammatical error aborts the parse with a positioned
// SyntaxError and no partial tree.
package parser

import (
	"errors"
	"path"

	"loreline/engine-go/pkg/ast"
	"loreline/engine-go/pkg/lexer"
)

// FileLoader supplies the text of an imported file. supply must eventually be
// called exactly once, with the file content, or with nil when the file
// cannot be provided. It may be called synchronously before the loader
// returns, or later from the host's own scheduling.
type FileLoader func(path string, supply func(source *string))

// ErrPendingImports is returned by Parse when the loader deferred at least
// one import; use ParseAsync to receive the script once every import has
// settled.
var ErrPendingImports = errors.New("parser: imports are resolving asynchronously, use ParseAsync")

// Parse parses source synchronously. origin names the file for diagnostics
// and relative import resolution; loader may be nil when the source has no
// imports.
func Parse(source, origin string, loader FileLoader) (*ast.Script, error) {
	var (
		script *ast.Script
		err    error
		ready  bool
	)
	ParseAsync(source, origin, loader, func(s *ast.Script, e error) {
		script, err, ready = s, e, true
	})
	if !ready {
		return nil, ErrPendingImports
	}
	return script, err
}

// ParseAsync parses source and delivers the result through done once every
// import (at any nesting depth) has been supplied. done runs synchronously
// when no import defers. Multiple imports may be in flight at once; they are
// spliced in declaration order, not completion order.
func ParseAsync(source, origin string, loader FileLoader, done func(*ast.Script, error)) {
	run := &parseRun{
		loader: loader,
		files:  make(map[string]*fileNode),
		done:   done,
	}
	run.request(origin, &source, nil, ast.Position{Line: 1, Column: 1}, "")
	run.settle()
}

// entry is one top-level item of a single file, in declaration order.
type entry struct {
	decl ast.Decl
	imp  *importRef
}

type importRef struct {
	resolved string // path handed to the loader
	pos      ast.Position
	raw      string
}

type fileState int

const (
	fileLoading fileState = iota
	fileReady
	fileFailed
)

type fileNode struct {
	path      string
	state     fileState
	entries   []entry
	ancestors map[string]bool // import chain above this file, for cycle detection
}

type parseRun struct {
	loader   FileLoader
	files    map[string]*fileNode
	root     *fileNode
	pending  int
	err      error
	finished bool
	done     func(*ast.Script, error)
}

// request registers a file and, when its source is not provided inline, asks
// the loader for it. Repeated imports of the same path reuse the first node:
// the loader is invoked once per distinct path.
func (r *parseRun) request(filePath string, source *string, parentAncestors map[string]bool, pos ast.Position, importedFrom string) *fileNode {
	if node, ok := r.files[filePath]; ok {
		return node
	}
	node := &fileNode{
		path:      filePath,
		ancestors: map[string]bool{filePath: true},
	}
	for p := range parentAncestors {
		node.ancestors[p] = true
	}
	r.files[filePath] = node
	if r.root == nil {
		// The origin is always the first request. The root must be in place
		// before supply runs: a loader that answers a nested import
		// synchronously reaches settle while this call is still on the stack.
		r.root = node
	}
	r.pending++

	if source != nil {
		r.supply(node, source, pos, importedFrom)
		return node
	}
	if r.loader == nil {
		r.pending--
		node.state = fileFailed
		r.fail(&ImportError{Path: importedFrom, Line: pos.Line, Column: pos.Column, ImportPath: filePath, Reason: "no file loader configured"})
		return node
	}
	delivered := false
	r.loader(filePath, func(src *string) {
		if delivered {
			return
		}
		delivered = true
		r.supply(node, src, pos, importedFrom)
		r.settle()
	})
	return node
}

// supply integrates a loaded file: parses its entries and requests nested
// imports. A nil source is an import failure attributed to the importing
// statement.
func (r *parseRun) supply(node *fileNode, source *string, pos ast.Position, importedFrom string) {
	r.pending--
	if r.err != nil || r.finished {
		return
	}
	if source == nil {
		node.state = fileFailed
		r.fail(&ImportError{Path: importedFrom, Line: pos.Line, Column: pos.Column, ImportPath: node.path, Reason: "file not found"})
		return
	}
	entries, err := parseEntries(*source, node.path)
	if err != nil {
		node.state = fileFailed
		r.fail(err)
		return
	}
	node.entries = entries
	node.state = fileReady
	for _, e := range entries {
		if e.imp == nil {
			continue
		}
		if node.ancestors[e.imp.resolved] {
			r.fail(&ImportError{Path: node.path, Line: e.imp.pos.Line, Column: e.imp.pos.Column, ImportPath: e.imp.resolved, Reason: "import cycle"})
			return
		}
		r.request(e.imp.resolved, nil, node.ancestors, e.imp.pos, node.path)
	}
}

func (r *parseRun) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// settle finishes the run once nothing is in flight. Imports are flattened
// depth-first in declaration order; a path already spliced earlier in the
// traversal is skipped.
func (r *parseRun) settle() {
	if r.finished {
		return
	}
	if r.err != nil {
		// The first error aborts the whole parse; outstanding imports are
		// abandoned.
		r.finished = true
		r.done(nil, r.err)
		return
	}
	if r.pending > 0 {
		return
	}
	r.finished = true
	var decls []ast.Decl
	spliced := make(map[string]bool)
	r.flatten(r.root, spliced, &decls)
	r.done(&ast.Script{Path: r.root.path, Decls: decls}, nil)
}

func (r *parseRun) flatten(node *fileNode, spliced map[string]bool, out *[]ast.Decl) {
	if spliced[node.path] {
		return
	}
	spliced[node.path] = true
	for _, e := range node.entries {
		if e.imp != nil {
			r.flatten(r.files[e.imp.resolved], spliced, out)
			continue
		}
		*out = append(*out, e.decl)
	}
}

// resolveImport joins a relative import path against the importing file's
// directory. Paths use forward slashes regardless of host OS; the file
// loader owns any mapping to OS paths.
func resolveImport(origin, imp string) string {
	if path.IsAbs(imp) || origin == "" {
		return path.Clean(imp)
	}
	return path.Join(path.Dir(origin), imp)
}

// parseEntries parses the top-level declarations of one file.
func parseEntries(source, origin string) ([]entry, error) {
	lines, lexErr := lexer.ScanLines(source)
	if lexErr != nil {
		return nil, fromLexError(origin, lexErr)
	}
	p := &fileParser{path: origin, lines: lines}
	return p.parseTopLevel()
}
