// Package dcsql renders denial constraints as SQL self-join queries that
// return every tuple combination violating the constraint.
//
// Generation is deterministic:
//   - the table is taken from the first predicate's left reference
//   - tuple aliases are sorted lexicographically ("t10" before "t2")
//   - columns appear in order of first reference
//   - WHERE conditions keep predicate order
package dcsql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/dcsql/internal/dcir"
)

// ErrEmptyConstraint is returned when asked to generate SQL for a constraint
// with no predicates. Validate constraints with dcir.Validate first.
var ErrEmptyConstraint = errors.New("cannot generate SQL for a denial constraint without predicates")

// Query is the intermediate form of a generated statement.
// It is built by Build and serialized by Render; it is not persisted.
type Query struct {
	Comment       []string // comment lines without the "-- " prefix
	SelectColumns []string
	From          string
	Where         []string
}

// Generate renders dc as a SQL violation query.
//
// dc is expected to have passed dcir.Validate. Generate does not re-check the
// single-table rule; for a constraint over several tables the output is not
// meaningful. A nil or empty constraint fails with ErrEmptyConstraint.
func Generate(dc *dcir.DenialConstraint, opts Options) (string, error) {
	q, err := Build(dc, opts)
	if err != nil {
		return "", err
	}
	return q.Render(opts.FormatOutput), nil
}

// Build assembles the intermediate Query for dc.
func Build(dc *dcir.DenialConstraint, opts Options) (*Query, error) {
	if dc == nil || len(dc.Predicates) == 0 {
		return nil, ErrEmptyConstraint
	}

	table := dc.Predicates[0].Left.Table
	from := CleanTableName(table)
	aliases := dc.Tuples()

	q := &Query{}

	if opts.IncludeComments {
		q.Comment = []string{
			"Denial constraint: " + dc.Summary(),
			"Table: " + table,
		}
	}

	if opts.SelectAllColumns {
		for _, alias := range aliases {
			q.SelectColumns = append(q.SelectColumns, alias+".*")
		}
	} else {
		columns := dc.Columns()
		for _, alias := range aliases {
			for _, col := range columns {
				q.SelectColumns = append(q.SelectColumns, alias+"."+quoteIdent(col))
			}
		}
	}

	fromParts := make([]string, len(aliases))
	for i, alias := range aliases {
		fromParts[i] = from + " " + alias
	}
	q.From = strings.Join(fromParts, ", ")

	for _, p := range dc.Predicates {
		q.Where = append(q.Where, compilePredicate(p))
	}

	return q, nil
}

// compilePredicate renders one predicate as a WHERE condition.
func compilePredicate(p dcir.Predicate) string {
	return fmt.Sprintf("%s.%s %s %s.%s",
		p.Left.Tuple, quoteIdent(p.Left.Column),
		p.Op.SQL(),
		p.Right.Tuple, quoteIdent(p.Right.Column))
}

// Render serializes the query. With format set, FROM and WHERE start new
// lines and each additional condition is indented by two spaces. Without it
// the statement is a single line. Comment lines always end in a newline so
// they never swallow the statement.
func (q *Query) Render(format bool) string {
	var b strings.Builder

	for _, line := range q.Comment {
		b.WriteString("-- ")
		b.WriteString(line)
		b.WriteString("\n")
	}

	sep, conj := " ", " AND "
	if format {
		sep, conj = "\n", "\n  AND "
	}

	b.WriteString("SELECT ")
	b.WriteString(strings.Join(q.SelectColumns, ", "))
	b.WriteString(sep)
	b.WriteString("FROM ")
	b.WriteString(q.From)
	if len(q.Where) > 0 {
		b.WriteString(sep)
		b.WriteString("WHERE ")
		b.WriteString(strings.Join(q.Where, conj))
	}
	b.WriteString(";")

	return b.String()
}

// String renders the query in formatted layout.
func (q *Query) String() string {
	return q.Render(true)
}

// CleanTableName prepares a source table name for the FROM clause.
// A trailing ".csv" is stripped, and the result is double-quoted when it
// still contains '.' or '-'.
func CleanTableName(name string) string {
	name = strings.TrimSuffix(name, ".csv")
	return quoteIdent(name)
}

// quoteIdent double-quotes identifiers containing '.' or '-'. Column names
// never contain '.', since the last dot of a reference starts the column.
func quoteIdent(name string) string {
	if strings.ContainsAny(name, ".-") {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return name
}
