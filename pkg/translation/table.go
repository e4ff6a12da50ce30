// Package translation maps a secondary, per-language parse of a script onto
// the primary script's text nodes. Entries are keyed by structural identity
// (beat name plus statement path), never by text equality, so editing or
// translating text can never desynchronize the overlay; only reshaping the
// statement structure can.
package translation

import (
	"strconv"

	"loreline/engine-go/pkg/ast"
)

// Table is the overlay consumed by the interpreter: structural key →
// replacement text content (with its own tags and interpolations). A lookup
// miss is not an error; the caller falls back to the original text.
type Table struct {
	entries map[string]*ast.TextContent
}

// Len returns the number of keyed entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Lookup returns the replacement content for a structural key.
func (t *Table) Lookup(key string) (*ast.TextContent, bool) {
	if t == nil {
		return nil, false
	}
	c, ok := t.entries[key]
	return c, ok
}

// StatementKey derives the key of the statement at index inside the block
// identified by prefix. A beat's root block prefix is the beat name.
func StatementKey(prefix string, index int) string {
	return prefix + "." + strconv.Itoa(index)
}

// ThenKey and ElseKey derive the prefixes of an if statement's branches.
func ThenKey(stmtKey string) string { return stmtKey + ".t" }
func ElseKey(stmtKey string) string { return stmtKey + ".e" }

// OptionKey derives the key of a choice option; the same key prefixes the
// option's body statements.
func OptionKey(stmtKey string, option int) string {
	return stmtKey + ".o" + strconv.Itoa(option)
}

// Extract walks a translation-mode script (same grammar, same structural
// shape as the script it translates, typically a `name.XX.lor` sibling) and
// collects every text node under its structural key. Beats or statements the
// translation omits simply produce no entries; partial tables are valid.
func Extract(script *ast.Script) *Table {
	t := &Table{entries: make(map[string]*ast.TextContent)}
	for _, beat := range script.Beats() {
		extractBlock(t, beat.Name, beat.Body)
	}
	return t
}

func extractBlock(t *Table, prefix string, block []ast.Statement) {
	for i, stmt := range block {
		key := StatementKey(prefix, i)
		switch s := stmt.(type) {
		case *ast.DialogueStatement:
			t.entries[key] = s.Content
		case *ast.ChoiceStatement:
			for o, opt := range s.Options {
				optKey := OptionKey(key, o)
				t.entries[optKey] = opt.Content
				extractBlock(t, optKey, opt.Body)
			}
		case *ast.IfStatement:
			extractBlock(t, ThenKey(key), s.Then)
			extractBlock(t, ElseKey(key), s.Else)
		}
	}
}
