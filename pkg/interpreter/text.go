package interpreter

import (
	"strings"
	"unicode/utf8"

	"loreline/engine-go/pkg/ast"
	"loreline/engine-go/pkg/runtime"
)

// renderContent flattens text content against live state: interpolations
// evaluate and stringify, tag marks become TextTags whose offsets count
// runes of the final text. Offsets are within range by construction;
// NewTextTag re-checks the invariant anyway.
func (in *Interpreter) renderContent(c *ast.TextContent) (string, []ast.TextTag, error) {
	var b strings.Builder
	length := 0
	type mark struct {
		value   string
		closing bool
		offset  int
	}
	var marks []mark
	for _, part := range c.Parts {
		switch p := part.(type) {
		case ast.TextRun:
			b.WriteString(p.Text)
			length += utf8.RuneCountInString(p.Text)
		case ast.TextInterp:
			v, err := in.eval(p.Expr)
			if err != nil {
				return "", nil, err
			}
			s := runtime.Stringify(v)
			b.WriteString(s)
			length += utf8.RuneCountInString(s)
		case ast.TagMark:
			marks = append(marks, mark{value: p.Value, closing: p.Closing, offset: length})
		}
	}
	tags := make([]ast.TextTag, 0, len(marks))
	for _, m := range marks {
		tag, err := ast.NewTextTag(m.value, m.offset, m.closing, length)
		if err != nil {
			return "", nil, err
		}
		tags = append(tags, tag)
	}
	return b.String(), tags, nil
}
