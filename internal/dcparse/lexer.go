package dcparse

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF    tokenKind = iota
	tokNot              // ¬
	tokLParen           // (
	tokRParen           // )
	tokAnd              // ^
	tokOp               // == <> <= >= < >
	tokRef              // t0.table.column, split later by splitRef
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokNot:
		return "'¬'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokAnd:
		return "'^'"
	case tokOp:
		return "operator"
	case tokRef:
		return "tuple reference"
	default:
		return "unknown token"
	}
}

type token struct {
	kind   tokenKind
	value  string
	offset int
}

// lexer splits DC text into tokens. Whitespace between tokens is skipped.
type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

// lex tokenizes the whole input. The returned slice always ends with tokEOF.
func (l *lexer) lex() ([]token, error) {
	var toks []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) peek() (rune, int) {
	if l.pos >= len(l.src) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.src[l.pos:])
}

func (l *lexer) skipSpace() {
	for {
		r, size := l.peek()
		if size == 0 || !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	start := l.pos
	r, size := l.peek()
	if size == 0 {
		return token{kind: tokEOF, offset: start}, nil
	}
	if r == utf8.RuneError && size == 1 {
		return token{}, newSyntaxError(l.src, start, l.src[start:start+1], "invalid UTF-8 encoding")
	}

	switch {
	case r == '¬':
		l.pos += size
		return token{kind: tokNot, value: "¬", offset: start}, nil
	case r == '(':
		l.pos += size
		return token{kind: tokLParen, value: "(", offset: start}, nil
	case r == ')':
		l.pos += size
		return token{kind: tokRParen, value: ")", offset: start}, nil
	case r == '^':
		l.pos += size
		return token{kind: tokAnd, value: "^", offset: start}, nil
	case r == '=' || r == '<' || r == '>' || r == '!':
		return l.scanOperator()
	case isNameRune(r):
		return l.scanRef(), nil
	}

	return token{}, newSyntaxError(l.src, start, string(r), "unexpected character %q", r)
}

// scanOperator matches the longest DC operator at the current position.
func (l *lexer) scanOperator() (token, error) {
	start := l.pos
	rest := l.src[start:]
	for _, op := range []string{"==", "<>", "<=", ">=", "<", ">"} {
		if strings.HasPrefix(rest, op) {
			l.pos += len(op)
			return token{kind: tokOp, value: op, offset: start}, nil
		}
	}

	switch {
	case strings.HasPrefix(rest, "!="):
		return token{}, newSyntaxError(l.src, start, "!=", "unexpected \"!=\"; use \"<>\" for inequality")
	case strings.HasPrefix(rest, "!"):
		return token{}, newSyntaxError(l.src, start, "!", "unexpected \"!\"; negation must be written as \"¬\" (U+00AC)")
	default:
		// Only a lone '=' reaches here.
		return token{}, newSyntaxError(l.src, start, "=", "unexpected \"=\"; use \"==\" for equality")
	}
}

// scanRef consumes a maximal run of name characters. Dots are name characters
// here; splitRef assigns them to fields afterwards.
func (l *lexer) scanRef() token {
	start := l.pos
	for {
		r, size := l.peek()
		if size == 0 || !isNameRune(r) {
			break
		}
		l.pos += size
	}
	return token{kind: tokRef, value: l.src[start:l.pos], offset: start}
}

// isNameRune reports whether r may appear in a QualifiedName.
func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '-'
}
