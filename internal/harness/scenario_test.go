package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_Testdata(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "airport_timezone.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "airport_timezone", s.Name)
	require.NotNil(t, s.Options.FormatOutput)
	assert.False(t, *s.Options.FormatOutput)
	assert.Nil(t, s.Options.SelectAllColumns)
	require.NotNil(t, s.Data)
	assert.Equal(t, "airport.csv", s.Data.Table)
	assert.Contains(t, s.Data.CSV, "US,PST\n")
	require.NotNil(t, s.Expect.Violations)
	assert.Equal(t, 2, *s.Expect.Violations)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: typo
description: misspelled key
constraint: "¬(t0.a.x==t1.a.x)"
expects:
  sql: "x"
`), 0644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
	assert.Contains(t, err.Error(), "expects")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "description: d\nconstraint: c\nexpect: {sql: x}\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: n\nconstraint: c\nexpect: {sql: x}\n",
			want: "description is required",
		},
		{
			name: "missing constraint",
			yaml: "name: n\ndescription: d\nexpect: {sql: x}\n",
			want: "constraint is required",
		},
		{
			name: "empty expect",
			yaml: "name: n\ndescription: d\nconstraint: c\n",
			want: "expect must set at least one of",
		},
		{
			name: "error combined with sql",
			yaml: "name: n\ndescription: d\nconstraint: c\nexpect: {sql: x, error: y}\n",
			want: "cannot be combined",
		},
		{
			name: "violations without data",
			yaml: "name: n\ndescription: d\nconstraint: c\nexpect: {violations: 1}\n",
			want: "requires data",
		},
		{
			name: "negative violations",
			yaml: "name: n\ndescription: d\nconstraint: c\ndata: {table: t, csv: a}\nexpect: {violations: -1}\n",
			want: "non-negative",
		},
		{
			name: "data without table",
			yaml: "name: n\ndescription: d\nconstraint: c\ndata: {csv: a}\nexpect: {sql: x}\n",
			want: "data.table is required",
		},
		{
			name: "data without csv",
			yaml: "name: n\ndescription: d\nconstraint: c\ndata: {table: t}\nexpect: {sql: x}\n",
			want: "data.csv is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseScenario_ZeroViolationsIsSet(t *testing.T) {
	s, err := ParseScenario([]byte("name: n\ndescription: d\nconstraint: c\ndata: {table: t, csv: a}\nexpect: {violations: 0}\n"))
	require.NoError(t, err)
	require.NotNil(t, s.Expect.Violations)
	assert.Equal(t, 0, *s.Expect.Violations)
}
