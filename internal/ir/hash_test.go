package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dcsql/internal/dcir"
	"github.com/roach88/dcsql/internal/dcparse"
	"github.com/roach88/dcsql/internal/dcsql"
)

func parse(t *testing.T, text string) *dcir.DenialConstraint {
	t.Helper()
	dc, err := dcparse.Parse(text)
	require.NoError(t, err)
	return dc
}

func TestConstraintIDIgnoresWhitespace(t *testing.T) {
	a := parse(t, "¬(t0.hours.EmpID==t1.hours.EmpID)")
	b := parse(t, " ¬ ( t0.hours.EmpID == t1.hours.EmpID ) ")

	assert.Equal(t, MustConstraintID(a), MustConstraintID(b))
	assert.Len(t, MustConstraintID(a), 64)
}

func TestConstraintIDDistinguishesContent(t *testing.T) {
	base := MustConstraintID(parse(t, "¬(t0.r.A==t1.r.A^t0.r.B<t1.r.B)"))

	others := []string{
		"¬(t0.r.B<t1.r.B^t0.r.A==t1.r.A)",  // predicate order
		"¬(t0.r.A==t1.r.A^t0.r.B<=t1.r.B)", // operator
		"¬(t0.s.A==t1.s.A^t0.s.B<t1.s.B)",  // table
		"¬(t0.r.A==t2.r.A^t0.r.B<t2.r.B)",  // tuple
	}
	for _, text := range others {
		assert.NotEqual(t, base, MustConstraintID(parse(t, text)), text)
	}
}

func TestConstraintIDNil(t *testing.T) {
	_, err := ConstraintID(nil)
	assert.Error(t, err)
}

func TestRenderOverridesApply(t *testing.T) {
	yes, no := true, false
	base := dcsql.DefaultOptions()

	assert.Equal(t, base, RenderOverrides{}.Apply(base))
	assert.True(t, RenderOverrides{}.IsZero())

	got := RenderOverrides{FormatOutput: &no, IncludeComments: &yes}.Apply(base)
	assert.False(t, got.FormatOutput)
	assert.True(t, got.IncludeComments)
	assert.False(t, got.SelectAllColumns)
}
