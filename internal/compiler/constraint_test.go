package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileCUE(t *testing.T, src string) cue.Value {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	return v
}

func TestCompileConstraintBasic(t *testing.T) {
	v := compileCUE(t, `
		constraint: fd_hours: {
			dc:          "¬(t0.hours.EmpID==t1.hours.EmpID^t0.hours.ProjID==t1.hours.ProjID)"
			description: "an employee works on a project at most once"
		}
	`)

	spec, err := CompileConstraint(v.LookupPath(cue.ParsePath("constraint.fd_hours")))
	require.NoError(t, err)

	assert.Equal(t, "fd_hours", spec.Name)
	assert.Equal(t, "an employee works on a project at most once", spec.Description)
	assert.Equal(t, "¬(t0.hours.EmpID==t1.hours.EmpID^t0.hours.ProjID==t1.hours.ProjID)", spec.Source)
	assert.True(t, spec.Options.IsZero())
}

func TestCompileConstraintOptions(t *testing.T) {
	v := compileCUE(t, `
		constraint: airport: {
			dc: "¬(t0.airport.Country==t1.airport.Country)"
			options: {
				format_output:    false
				include_comments: true
			}
		}
	`)

	spec, err := CompileConstraint(v.LookupPath(cue.ParsePath("constraint.airport")))
	require.NoError(t, err)

	require.NotNil(t, spec.Options.FormatOutput)
	require.NotNil(t, spec.Options.IncludeComments)
	assert.False(t, *spec.Options.FormatOutput)
	assert.True(t, *spec.Options.IncludeComments)
	assert.Nil(t, spec.Options.SelectAllColumns)
}

func TestCompileConstraintQuotedName(t *testing.T) {
	v := compileCUE(t, `
		constraint: "planets-mass": dc: "¬(t0.WDC_planets.csv.Mass>t1.WDC_planets.csv.Mass)"
	`)

	spec, err := CompileConstraint(v.LookupPath(cue.ParsePath(`constraint."planets-mass"`)))
	require.NoError(t, err)
	assert.Equal(t, "planets-mass", spec.Name)
}

func TestCompileConstraintErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{
			name:  "missing dc",
			src:   `constraint: bad: description: "no dc"`,
			field: "dc",
		},
		{
			name:  "dc not a string",
			src:   `constraint: bad: dc: 42`,
			field: "dc",
		},
		{
			name:  "description not a string",
			src:   `constraint: bad: { dc: "¬(t0.r.A==t1.r.A)", description: true }`,
			field: "description",
		},
		{
			name:  "unknown field",
			src:   `constraint: bad: { dc: "¬(t0.r.A==t1.r.A)", desc: "typo" }`,
			field: "desc",
		},
		{
			name:  "unknown option",
			src:   `constraint: bad: { dc: "¬(t0.r.A==t1.r.A)", options: include_comment: true }`,
			field: "options.include_comment",
		},
		{
			name:  "option not a bool",
			src:   `constraint: bad: { dc: "¬(t0.r.A==t1.r.A)", options: format_output: "no" }`,
			field: "options.format_output",
		},
		{
			name:  "entry not a struct",
			src:   `constraint: bad: "¬(t0.r.A==t1.r.A)"`,
			field: "constraint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := compileCUE(t, tt.src)
			_, err := CompileConstraint(v.LookupPath(cue.ParsePath("constraint.bad")))
			require.Error(t, err)

			compileErr, ok := err.(*CompileError)
			require.True(t, ok, "expected *CompileError, got %T", err)
			assert.Equal(t, tt.field, compileErr.Field)
			assert.Equal(t, "bad", compileErr.Constraint)
			assert.Contains(t, compileErr.Error(), "bad."+tt.field)
		})
	}
}

func TestCompileCatalog(t *testing.T) {
	v := compileCUE(t, `
		constraint: first: dc: "¬(t0.r.A==t1.r.A)"
		constraint: broken: description: "missing dc"
		constraint: second: dc: "¬(t0.r.B<t1.r.B)"
	`)

	specs, errs := CompileCatalog(v)
	require.Len(t, specs, 2)
	assert.Equal(t, "first", specs[0].Name)
	assert.Equal(t, "second", specs[1].Name)

	require.Len(t, errs, 1)
	compileErr, ok := errs[0].(*CompileError)
	require.True(t, ok)
	assert.Equal(t, "broken", compileErr.Constraint)
	assert.Equal(t, "dc", compileErr.Field)
}

func TestCompileCatalogEmpty(t *testing.T) {
	v := compileCUE(t, `other: 1`)

	specs, errs := CompileCatalog(v)
	assert.Empty(t, specs)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no constraint entries")
}
