package dcir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ref(tuple, table, column string) TupleRef {
	return TupleRef{Tuple: tuple, Table: table, Column: column}
}

func TestOperatorSQL(t *testing.T) {
	tests := []struct {
		op   Operator
		want string
	}{
		{OpEq, "="},
		{OpNeq, "!="},
		{OpLeq, "<="},
		{OpGeq, ">="},
		{OpLt, "<"},
		{OpGt, ">"},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.SQL())
			assert.True(t, tt.op.Valid())
		})
	}
}

func TestParseOperator(t *testing.T) {
	op, ok := ParseOperator("<>")
	assert.True(t, ok)
	assert.Equal(t, OpNeq, op)

	for _, bad := range []string{"=", "!=", "=<", "", "<<"} {
		_, ok := ParseOperator(bad)
		assert.False(t, ok, "operator %q should not parse", bad)
	}
	assert.False(t, Operator("!=").Valid())
}

func TestTupleRefRendering(t *testing.T) {
	r := ref("t0", "WDC_planets.csv", "Name")
	assert.Equal(t, "t0.WDC_planets.csv.Name", r.String())
	assert.Equal(t, "t0.Name", r.Short())
}

func TestDenialConstraintRendering(t *testing.T) {
	dc := &DenialConstraint{Predicates: []Predicate{
		{Left: ref("t0", "hours", "EmpID"), Op: OpEq, Right: ref("t1", "hours", "EmpID")},
		{Left: ref("t0", "hours", "ProjID"), Op: OpNeq, Right: ref("t1", "hours", "ProjID")},
	}}

	assert.Equal(t, "¬(t0.hours.EmpID==t1.hours.EmpID^t0.hours.ProjID<>t1.hours.ProjID)", dc.String())
	assert.Equal(t, "¬(t0.EmpID == t1.EmpID ^ t0.ProjID <> t1.ProjID)", dc.Summary())
}

func TestTuplesLexicographicOrder(t *testing.T) {
	dc := &DenialConstraint{Predicates: []Predicate{
		{Left: ref("t2", "r", "A"), Op: OpEq, Right: ref("t10", "r", "A")},
		{Left: ref("t1", "r", "B"), Op: OpLt, Right: ref("t0", "r", "B")},
		{Left: ref("t2", "r", "C"), Op: OpGt, Right: ref("t1", "r", "C")},
	}}

	// String order, not numeric: t10 before t2.
	assert.Equal(t, []string{"t0", "t1", "t10", "t2"}, dc.Tuples())
}

func TestColumnsFirstAppearance(t *testing.T) {
	dc := &DenialConstraint{Predicates: []Predicate{
		{Left: ref("t0", "r", "B"), Op: OpEq, Right: ref("t1", "r", "A")},
		{Left: ref("t0", "r", "A"), Op: OpEq, Right: ref("t1", "r", "C")},
		{Left: ref("t0", "r", "B"), Op: OpEq, Right: ref("t1", "r", "B")},
	}}

	assert.Equal(t, []string{"B", "A", "C"}, dc.Columns())
}

func TestTablesFirstAppearance(t *testing.T) {
	dc := &DenialConstraint{Predicates: []Predicate{
		{Left: ref("t0", "B", "X"), Op: OpEq, Right: ref("t1", "A", "X")},
		{Left: ref("t0", "B", "Y"), Op: OpEq, Right: ref("t1", "B", "Y")},
	}}

	assert.Equal(t, []string{"B", "A"}, dc.Tables())
}

func TestWithTable(t *testing.T) {
	dc := &DenialConstraint{Predicates: []Predicate{
		{Left: ref("t0", "hours", "EmpID"), Op: OpEq, Right: ref("t1", "hours", "EmpID")},
		{Left: ref("t0", "hours", "ProjID"), Op: OpNeq, Right: ref("t1", "hours", "ProjID")},
	}}

	moved := dc.WithTable("export.csv")
	assert.Equal(t, []string{"export.csv"}, moved.Tables())
	assert.Equal(t, "¬(t0.export.csv.EmpID==t1.export.csv.EmpID^t0.export.csv.ProjID<>t1.export.csv.ProjID)", moved.String())
	assert.Equal(t, []string{"hours"}, dc.Tables(), "original must be unchanged")
}
