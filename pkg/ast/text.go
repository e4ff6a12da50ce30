package ast

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TextTag is an inline marker carried alongside text rather than embedded in
// it. Offset is a rune index into the tag-free text; Offset == rune length of
// the text marks an end-of-text tag. Same-offset tags keep their declaration
// order through parse, print and interpretation.
type TextTag struct {
	Value   string
	Offset  int
	Closing bool
}

// NewTextTag validates the offset against the tag-free text length. An
// out-of-range offset is rejected, never clamped.
func NewTextTag(value string, offset int, closing bool, textLen int) (TextTag, error) {
	if offset < 0 || offset > textLen {
		return TextTag{}, fmt.Errorf("text tag %q: offset %d out of range [0, %d]", value, offset, textLen)
	}
	return TextTag{Value: value, Offset: offset, Closing: closing}, nil
}

// TextPart is one ordered segment of text content: a raw run, an
// interpolation, or a tag marker.
type TextPart interface {
	textPart()
}

// TextRun is a literal span of text (escapes already resolved, newlines kept
// for multiline dialogue).
type TextRun struct {
	Text string
}

func (TextRun) textPart() {}

// TextInterp is a `{expression}` interpolation evaluated at emission time.
type TextInterp struct {
	Position Position
	Expr     Expression
}

func (TextInterp) textPart() {}

// TagMark records a `<tag>` or `</tag>` marker at its structural position
// between runs. The rune offset of the resulting TextTag is computed when the
// surrounding text is rendered.
type TagMark struct {
	Value   string
	Closing bool
}

func (TagMark) textPart() {}

// TextContent is the text payload of a dialogue statement or choice option.
type TextContent struct {
	Position Position
	Parts    []TextPart
}

func (t *TextContent) Pos() Position { return t.Position }

// Static renders the content when it holds no interpolations. ok is false
// when an interpolation is present and the text can only be produced by the
// interpreter against live state.
func (t *TextContent) Static() (text string, tags []TextTag, ok bool) {
	var b strings.Builder
	tags = []TextTag{}
	for _, part := range t.Parts {
		switch p := part.(type) {
		case TextRun:
			b.WriteString(p.Text)
		case TagMark:
			tags = append(tags, TextTag{Value: p.Value, Offset: utf8.RuneCountInString(b.String()), Closing: p.Closing})
		case TextInterp:
			return "", nil, false
		}
	}
	return b.String(), tags, true
}

// HasInterpolation reports whether any part is an interpolation.
func (t *TextContent) HasInterpolation() bool {
	for _, part := range t.Parts {
		if _, ok := part.(TextInterp); ok {
			return true
		}
	}
	return false
}
