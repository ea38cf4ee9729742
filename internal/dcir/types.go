package dcir

import (
	"sort"
	"strings"
)

// Negation is the prefix symbol of every denial constraint (U+00AC).
const Negation = "¬"

// Operator is a comparison operator between two tuple references.
type Operator string

// Comparison operators in DC notation.
const (
	OpEq  Operator = "=="
	OpNeq Operator = "<>"
	OpLeq Operator = "<="
	OpGeq Operator = ">="
	OpLt  Operator = "<"
	OpGt  Operator = ">"
)

// Operators lists every operator, longest tokens first so a lexer can match
// greedily against it.
var Operators = []Operator{OpEq, OpNeq, OpLeq, OpGeq, OpLt, OpGt}

// ParseOperator maps DC notation to an Operator.
func ParseOperator(s string) (Operator, bool) {
	for _, op := range Operators {
		if string(op) == s {
			return op, true
		}
	}
	return "", false
}

// Valid reports whether op is one of the six DC operators.
func (op Operator) Valid() bool {
	_, ok := ParseOperator(string(op))
	return ok
}

// SQL returns the SQL spelling of the operator.
// "==" becomes "=", "<>" becomes "!=", ordering operators pass through.
func (op Operator) SQL() string {
	switch op {
	case OpEq:
		return "="
	case OpNeq:
		return "!="
	default:
		return string(op)
	}
}

// TupleRef names one attribute of one tuple variable: t0.hours.EmpID.
//
// Table may itself contain dots (e.g. "WDC_planets.csv"); Tuple and Column
// never do.
type TupleRef struct {
	Tuple  string `json:"tuple"`  // tuple identifier, e.g. "t0"
	Table  string `json:"table"`  // table name, verbatim from source
	Column string `json:"column"` // column name, verbatim from source
}

// String renders the reference in full DC notation.
func (r TupleRef) String() string {
	return r.Tuple + "." + r.Table + "." + r.Column
}

// Short renders the reference without its table: t0.EmpID.
func (r TupleRef) Short() string {
	return r.Tuple + "." + r.Column
}

// Predicate compares an attribute of one tuple with an attribute of another.
type Predicate struct {
	Left  TupleRef `json:"left"`
	Op    Operator `json:"op"`
	Right TupleRef `json:"right"`
}

// String renders the predicate in DC notation without spaces.
func (p Predicate) String() string {
	return p.Left.String() + string(p.Op) + p.Right.String()
}

// Short renders the predicate without table names: t0.EmpID == t1.EmpID.
func (p Predicate) Short() string {
	return p.Left.Short() + " " + string(p.Op) + " " + p.Right.Short()
}

// DenialConstraint is an ordered conjunction of predicates under negation.
//
// Predicate order is the textual order. It does not change the meaning of the
// constraint but is kept so generated SQL is reproducible.
type DenialConstraint struct {
	Predicates []Predicate `json:"predicates"`
}

// String renders the constraint in compact DC notation.
func (dc *DenialConstraint) String() string {
	parts := make([]string, len(dc.Predicates))
	for i, p := range dc.Predicates {
		parts[i] = p.String()
	}
	return Negation + "(" + strings.Join(parts, "^") + ")"
}

// Summary renders the constraint without table names, for SQL comments:
// ¬(t0.EmpID == t1.EmpID ^ t0.ProjID == t1.ProjID).
func (dc *DenialConstraint) Summary() string {
	parts := make([]string, len(dc.Predicates))
	for i, p := range dc.Predicates {
		parts[i] = p.Short()
	}
	return Negation + "(" + strings.Join(parts, " ^ ") + ")"
}

// Tables returns the distinct table names in order of first appearance.
func (dc *DenialConstraint) Tables() []string {
	seen := make(map[string]bool)
	var tables []string
	for _, p := range dc.Predicates {
		for _, ref := range [2]TupleRef{p.Left, p.Right} {
			if !seen[ref.Table] {
				seen[ref.Table] = true
				tables = append(tables, ref.Table)
			}
		}
	}
	return tables
}

// Tuples returns the distinct tuple identifiers in ascending lexicographic
// order. The ordering is string order, not numeric: "t10" sorts before "t2".
func (dc *DenialConstraint) Tuples() []string {
	seen := make(map[string]bool)
	var tuples []string
	for _, p := range dc.Predicates {
		for _, ref := range [2]TupleRef{p.Left, p.Right} {
			if !seen[ref.Tuple] {
				seen[ref.Tuple] = true
				tuples = append(tuples, ref.Tuple)
			}
		}
	}
	sort.Strings(tuples)
	return tuples
}

// Columns returns the distinct column names in order of first appearance,
// visiting the left reference of each predicate before the right one.
func (dc *DenialConstraint) Columns() []string {
	seen := make(map[string]bool)
	var columns []string
	for _, p := range dc.Predicates {
		for _, ref := range [2]TupleRef{p.Left, p.Right} {
			if !seen[ref.Column] {
				seen[ref.Column] = true
				columns = append(columns, ref.Column)
			}
		}
	}
	return columns
}

// WithTable returns a copy of dc with every reference pointed at table.
// dc itself is not modified.
func (dc *DenialConstraint) WithTable(table string) *DenialConstraint {
	out := &DenialConstraint{Predicates: make([]Predicate, len(dc.Predicates))}
	for i, p := range dc.Predicates {
		p.Left.Table = table
		p.Right.Table = table
		out.Predicates[i] = p
	}
	return out
}
