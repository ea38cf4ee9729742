package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dcsql/internal/engine"
)

const airportData = "Country,Timezone\nUS,EST\nUS,PST\nFR,CET\n"

func runCheckCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	cmd := newCheckCommand(&RootOptions{Format: format}, engine.NewFixedGenerator("run-1"))
	out, _, err := execute(t, cmd, args...)
	return out, err
}

func TestCheck_ReportsViolations(t *testing.T) {
	csv := writeFile(t, t.TempDir(), "airport.csv", airportData)

	out, err := runCheckCmd(t, "text", "--csv", csv, airportDC)
	require.NoError(t, err)

	assert.Contains(t, out, "t0.Country")
	assert.Contains(t, out, "t1.Timezone")
	assert.Contains(t, out, "EST")
	assert.Contains(t, out, "PST")
	assert.NotContains(t, out, "CET")
	assert.Contains(t, out, "✗ 2 violation(s) found\n")
}

func TestCheck_Limit(t *testing.T) {
	csv := writeFile(t, t.TempDir(), "airport.csv", airportData)

	out, err := runCheckCmd(t, "text", "--limit", "1", "--csv", csv, airportDC)
	require.NoError(t, err)
	assert.Contains(t, out, "✗ 2 violation(s) found (showing 1)")
}

func TestCheck_NoViolations(t *testing.T) {
	csv := writeFile(t, t.TempDir(), "airport.csv", "Country,Timezone\nUS,EST\nFR,CET\n")

	out, err := runCheckCmd(t, "text", "--fail-on-violation", "--csv", csv, airportDC)
	require.NoError(t, err)
	assert.Equal(t, "✓ No violations\n", out)
}

func TestCheck_FailOnViolation(t *testing.T) {
	csv := writeFile(t, t.TempDir(), "airport.csv", airportData)

	_, err := runCheckCmd(t, "text", "--fail-on-violation", "--csv", csv, airportDC)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "2 violation(s) found")
}

func TestCheck_JSON(t *testing.T) {
	csv := writeFile(t, t.TempDir(), "airport.csv", airportData)

	out, err := runCheckCmd(t, "json", "--csv", csv, airportDC)
	require.NoError(t, err)

	resp, data := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, "run-1", data["run_id"])
	assert.Equal(t, "airport", data["table"])
	assert.EqualValues(t, 2, data["violations"])
	assert.Len(t, data["rows"], 2)
	assert.Equal(t, []any{"Country", "Timezone", "Country", "Timezone"}, data["columns"])
}

func TestCheck_CSVSuffixTable(t *testing.T) {
	csv := writeFile(t, t.TempDir(), "data.csv", "EmpID,ProjID\n1,A\n2,B\n")

	out, err := runCheckCmd(t, "json", "--csv", csv, "¬(t0.hours.csv.EmpID==t1.hours.csv.EmpID^t0.hours.csv.ProjID==t1.hours.csv.ProjID)")
	require.NoError(t, err)

	_, data := decodeResponse(t, out)
	assert.Equal(t, "hours", data["table"])
	// Each row pairs with itself.
	assert.EqualValues(t, 2, data["violations"])
}

func TestCheck_TableFlag(t *testing.T) {
	csv := writeFile(t, t.TempDir(), "export.csv", airportData)

	out, err := runCheckCmd(t, "json", "--table", "elsewhere", "--csv", csv, airportDC)
	require.NoError(t, err)

	_, data := decodeResponse(t, out)
	assert.Equal(t, "elsewhere", data["table"])
	assert.EqualValues(t, 2, data["violations"])
	assert.Contains(t, data["sql"], "FROM elsewhere t0, elsewhere t1")
}

func TestCheck_ReservedTable(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "work.db")
	csv := writeFile(t, dir, "airport.csv", airportData)

	_, err := runCheckCmd(t, "text", "--db", db, "--csv", csv, airportDC)
	require.NoError(t, err)

	out, err := runCheckCmd(t, "text", "--db", db, "--csv", writeFile(t, dir, "runs.csv", "a\n1\n"),
		"¬(t0.check_runs.a==t1.check_runs.a)")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E004]")
	assert.Contains(t, out, "reserved table name")

	out, _, err = execute(t, NewRunsCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "run-1")
}

func TestCheck_InvalidConstraint(t *testing.T) {
	csv := writeFile(t, t.TempDir(), "airport.csv", airportData)

	out, err := runCheckCmd(t, "json", "--csv", csv, "¬(t0.airport.Country==t1.hours.Country)")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp, _ := decodeResponse(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeWellFormed, resp.Error.Code)
}

func TestCheck_MissingCSV(t *testing.T) {
	out, err := runCheckCmd(t, "text", "--csv", filepath.Join(t.TempDir(), "missing.csv"), airportDC)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestCheck_MalformedCSV(t *testing.T) {
	csv := writeFile(t, t.TempDir(), "airport.csv", "Country,Country\nUS,US\n")

	out, err := runCheckCmd(t, "text", "--csv", csv, airportDC)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E004]")
}

func TestCheck_MissingDatabaseDirectory(t *testing.T) {
	csv := writeFile(t, t.TempDir(), "airport.csv", airportData)

	out, err := runCheckCmd(t, "text", "--db", filepath.Join(t.TempDir(), "nope", "work.db"), "--csv", csv, airportDC)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "database directory not found")
}
