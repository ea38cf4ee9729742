// Package dcparse parses denial constraint text into a dcir.DenialConstraint.
//
// Grammar:
//
//	DenialConstraint ::= "¬" "(" PredicateList ")"
//	PredicateList    ::= Predicate ("^" Predicate)*
//	Predicate        ::= TupleRef Operator TupleRef
//	TupleRef         ::= TupleId "." QualifiedName "." QualifiedName
//	Operator         ::= "==" | "<>" | "<=" | ">=" | "<" | ">"
//	TupleId          ::= "t" Digit+
//	QualifiedName    ::= (Letter | Digit | "_" | "." | "-")+
//
// Because QualifiedName may contain dots, a tuple reference is lexed as one
// token and split afterwards: the first dot ends the tuple id, the last dot
// starts the column, and everything in between is the table name. Parsing is
// a single left-to-right pass with one token of lookahead.
package dcparse

import (
	"fmt"
	"strings"

	"github.com/roach88/dcsql/internal/dcir"
)

// Parse parses text into a denial constraint.
//
// Parse checks syntax only. A constraint over several tables parses
// successfully; call dcir.Validate (or ParseAndValidate) to reject it.
// On failure the error is a *SyntaxError and no AST is returned.
func Parse(text string) (*dcir.DenialConstraint, error) {
	toks, err := newLexer(text).lex()
	if err != nil {
		return nil, err
	}

	p := &parser{src: text, toks: toks}
	dc, err := p.parseConstraint()
	if err != nil {
		return nil, err
	}
	return dc, nil
}

// ParseAndValidate parses text and checks well-formedness.
// Returns a *SyntaxError or a *dcir.WellFormednessError on failure.
func ParseAndValidate(text string) (*dcir.DenialConstraint, error) {
	dc, err := Parse(text)
	if err != nil {
		return nil, err
	}
	if err := dcir.Validate(dc); err != nil {
		return nil, err
	}
	return dc, nil
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// expect consumes a token of the given kind or fails with a SyntaxError.
func (p *parser) expect(kind tokenKind, context string) (token, error) {
	t := p.peek()
	if t.kind != kind {
		return token{}, p.unexpected(t, "expected %s %s", kind, context)
	}
	return p.advance(), nil
}

func (p *parser) unexpected(t token, format string, args ...any) *SyntaxError {
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	if t.kind == tokEOF {
		return newSyntaxError(p.src, t.offset, "", "%s, found end of input", msg)
	}
	return newSyntaxError(p.src, t.offset, t.value, "%s, found %q", msg, t.value)
}

// parseConstraint: "¬" "(" PredicateList ")" EOF
func (p *parser) parseConstraint() (*dcir.DenialConstraint, error) {
	if _, err := p.expect(tokNot, "at start of denial constraint"); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLParen, "after '¬'"); err != nil {
		return nil, err
	}

	preds, err := p.parsePredicateList()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(tokRParen, "or '^' after predicate"); err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.unexpected(t, "unexpected input after closing ')'")
	}

	return &dcir.DenialConstraint{Predicates: preds}, nil
}

// parsePredicateList: Predicate ("^" Predicate)*
func (p *parser) parsePredicateList() ([]dcir.Predicate, error) {
	var preds []dcir.Predicate
	for {
		pred, err := p.parsePredicate()
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)

		if p.peek().kind != tokAnd {
			return preds, nil
		}
		p.advance()
	}
}

// parsePredicate: TupleRef Operator TupleRef
func (p *parser) parsePredicate() (dcir.Predicate, error) {
	left, err := p.parseRef()
	if err != nil {
		return dcir.Predicate{}, err
	}

	opTok, err := p.expect(tokOp, "after tuple reference")
	if err != nil {
		return dcir.Predicate{}, err
	}
	op, _ := dcir.ParseOperator(opTok.value)

	right, err := p.parseRef()
	if err != nil {
		return dcir.Predicate{}, err
	}

	return dcir.Predicate{Left: left, Op: op, Right: right}, nil
}

func (p *parser) parseRef() (dcir.TupleRef, error) {
	t, err := p.expect(tokRef, "")
	if err != nil {
		return dcir.TupleRef{}, err
	}
	return p.splitRef(t)
}

// splitRef disambiguates a tuple reference token into its three fields.
//
// The first dot ends the tuple id and the last dot starts the column, so
// "t0.WDC_planets.csv.Name" yields ("t0", "WDC_planets.csv", "Name").
func (p *parser) splitRef(t token) (dcir.TupleRef, error) {
	s := t.value

	first := strings.IndexByte(s, '.')
	if first < 0 {
		return dcir.TupleRef{}, newSyntaxError(p.src, t.offset, s,
			"tuple reference %q must have the form tN.table.column", s)
	}
	tuple := s[:first]
	if !isTupleID(tuple) {
		return dcir.TupleRef{}, newSyntaxError(p.src, t.offset, s,
			"invalid tuple identifier %q: expected 't' followed by digits", tuple)
	}

	rest := s[first+1:]
	last := strings.LastIndexByte(rest, '.')
	if last < 0 {
		return dcir.TupleRef{}, newSyntaxError(p.src, t.offset, s,
			"tuple reference %q is missing a column name", s)
	}
	table, column := rest[:last], rest[last+1:]
	if table == "" {
		return dcir.TupleRef{}, newSyntaxError(p.src, t.offset, s,
			"tuple reference %q has an empty table name", s)
	}
	if column == "" {
		return dcir.TupleRef{}, newSyntaxError(p.src, t.offset, s,
			"tuple reference %q has an empty column name", s)
	}

	return dcir.TupleRef{Tuple: tuple, Table: table, Column: column}, nil
}

// isTupleID matches "t" followed by one or more ASCII digits.
func isTupleID(s string) bool {
	if len(s) < 2 || s[0] != 't' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
