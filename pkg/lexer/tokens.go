package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind identifies the token category for the expression sublanguage.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenNumber
	TokenString
	TokenOp
	TokenLParen
	TokenRParen
	TokenComma
	TokenDot
)

// Token is one expression token with its decoded payload.
type Token struct {
	Kind   TokenKind
	Text   string // verbatim source slice (operators, identifiers)
	Str    string // decoded value for TokenString
	IsInt  bool
	Int    int64
	Float  float64
	Line   int
	Column int // 1-based column of the token start
}

var operators = []string{
	"==", "!=", "<=", ">=", "&&", "||", "+=", "-=",
	"+", "-", "*", "/", "%", "<", ">", "=", "!",
}

// ScanExpr tokenizes an expression fragment. line/column locate the first
// byte of src in the original source so token positions stay accurate.
func ScanExpr(src string, line, column int) ([]Token, *Error) {
	var tokens []Token
	i := 0
	for i < len(src) {
		c := src[i]
		col := column + i
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			tokens = append(tokens, Token{Kind: TokenLParen, Text: "(", Line: line, Column: col})
			i++
		case c == ')':
			tokens = append(tokens, Token{Kind: TokenRParen, Text: ")", Line: line, Column: col})
			i++
		case c == ',':
			tokens = append(tokens, Token{Kind: TokenComma, Text: ",", Line: line, Column: col})
			i++
		case c == '.' && (i+1 >= len(src) || !isDigit(src[i+1])):
			tokens = append(tokens, Token{Kind: TokenDot, Text: ".", Line: line, Column: col})
			i++
		case c == '"':
			decoded, length, err := decodeString(src[i:], line, col)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, Token{Kind: TokenString, Text: src[i : i+length], Str: decoded, Line: line, Column: col})
			i += length
		case isDigit(c) || c == '.':
			tok, length, err := scanNumber(src[i:], line, col)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i += length
		case isIdentStart(rune(c)) || c >= utf8.RuneSelf:
			start := i
			for i < len(src) {
				r, size := utf8.DecodeRuneInString(src[i:])
				if !isIdentPart(r) {
					break
				}
				i += size
			}
			if i == start {
				return nil, errAt(line, col, "unexpected character %q", src[i])
			}
			tokens = append(tokens, Token{Kind: TokenIdent, Text: src[start:i], Line: line, Column: col})
		default:
			matched := false
			for _, op := range operators {
				if strings.HasPrefix(src[i:], op) {
					tokens = append(tokens, Token{Kind: TokenOp, Text: op, Line: line, Column: col})
					i += len(op)
					matched = true
					break
				}
			}
			if !matched {
				return nil, errAt(line, col, "unexpected character %q", string(src[i]))
			}
		}
	}
	tokens = append(tokens, Token{Kind: TokenEOF, Line: line, Column: column + len(src)})
	return tokens, nil
}

func scanNumber(src string, line, col int) (Token, int, *Error) {
	i := 0
	sawDot := false
	for i < len(src) && (isDigit(src[i]) || (src[i] == '.' && !sawDot && i+1 < len(src) && isDigit(src[i+1]))) {
		if src[i] == '.' {
			sawDot = true
		}
		i++
	}
	text := src[:i]
	if sawDot {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Token{}, 0, errAt(line, col, "invalid number %q", text)
		}
		return Token{Kind: TokenNumber, Text: text, Float: f, Line: line, Column: col}, i, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Token{}, 0, errAt(line, col, "invalid number %q", text)
	}
	return Token{Kind: TokenNumber, Text: text, IsInt: true, Int: n, Float: float64(n), Line: line, Column: col}, i, nil
}

// decodeString consumes a double-quoted literal with \n \t \" \\ escapes and
// returns the decoded value plus the number of source bytes consumed.
func decodeString(src string, line, col int) (string, int, *Error) {
	var b strings.Builder
	i := 1
	for i < len(src) {
		switch src[i] {
		case '"':
			return b.String(), i + 1, nil
		case '\\':
			if i+1 >= len(src) {
				return "", 0, errAt(line, col+i, "unterminated escape")
			}
			switch src[i+1] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				return "", 0, errAt(line, col+i, "unknown escape \\%s", string(src[i+1]))
			}
			i += 2
		default:
			b.WriteByte(src[i])
			i++
		}
	}
	return "", 0, errAt(line, col, "unterminated string")
}

// EscapeString is the inverse of decodeString's unescaping, used by the
// printer to re-emit string literals.
func EscapeString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsIdent reports whether s is a well-formed identifier.
func IsIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !isIdentStart(r) {
				return false
			}
		} else if !isIdentPart(r) {
			return false
		}
	}
	return true
}
