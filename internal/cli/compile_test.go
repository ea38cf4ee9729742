package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogDir(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "catalog.cue", content)
	return dir
}

func TestCompile_Text(t *testing.T) {
	out, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), catalogDir(t, validCatalog))
	require.NoError(t, err)

	want := "-- unique_assignment\n" +
		"-- an employee works on a project once\n" +
		hoursSQL + "\n" +
		"\n" +
		"-- airport_tz\n" +
		airportCompactSQL + "\n"
	assert.Equal(t, want, out)
}

func TestCompile_FlagsOverrideCatalogOptions(t *testing.T) {
	out, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), "--format-output", catalogDir(t, validCatalog))
	require.NoError(t, err)

	// airport_tz sets format_output: false; the explicit flag wins.
	assert.NotContains(t, out, airportCompactSQL)
	assert.Contains(t, out, "FROM airport t0, airport t1\nWHERE t0.Country = t1.Country\n  AND t0.Timezone != t1.Timezone;")
}

func TestCompile_CompactAppliesToAll(t *testing.T) {
	out, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), "--compact", catalogDir(t, validCatalog))
	require.NoError(t, err)
	assert.Contains(t, out, strings.ReplaceAll(strings.ReplaceAll(hoursSQL, "\n  AND", " AND"), "\n", " ")+"\n")
}

func TestCompile_JSON(t *testing.T) {
	out, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), catalogDir(t, validCatalog))
	require.NoError(t, err)

	resp, data := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	constraints, ok := data["constraints"].([]any)
	require.True(t, ok)
	require.Len(t, constraints, 2)

	first := constraints[0].(map[string]any)
	assert.Equal(t, "unique_assignment", first["name"])
	assert.Equal(t, "hours", first["table"])
	assert.Equal(t, hoursSQL, first["sql"])
	assert.NotEmpty(t, first["constraint_id"])
}

func TestCompile_OutputDir(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "sql")

	out, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), "--output-dir", outDir, catalogDir(t, validCatalog))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Compiled 2 constraint(s)")
	assert.Contains(t, out, "unique_assignment → "+filepath.Join(outDir, "unique_assignment.sql"))

	data, err := os.ReadFile(filepath.Join(outDir, "unique_assignment.sql"))
	require.NoError(t, err)
	assert.Equal(t, hoursSQL+"\n", string(data))

	data, err = os.ReadFile(filepath.Join(outDir, "airport_tz.sql"))
	require.NoError(t, err)
	assert.Equal(t, airportCompactSQL+"\n", string(data))
}

func TestCompile_CatalogOptionComments(t *testing.T) {
	dir := catalogDir(t, `package catalog

constraint: planets: {
	dc:      "¬(t0.WDC_planets.csv.Mass>t1.WDC_planets.csv.Mass)"
	options: {include_comments: true, select_all_columns: true}
}
`)
	out, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)

	assert.Contains(t, out, "-- Table: WDC_planets.csv\n")
	assert.Contains(t, out, "SELECT t0.*, t1.*\nFROM WDC_planets t0, WDC_planets t1\n")
}

func TestCompile_InvalidConstraint(t *testing.T) {
	dir := catalogDir(t, `package catalog

constraint: broken: dc: "¬(t0.a.x==t1.b.x)"
`)
	out, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "constraint broken")
	assert.Contains(t, out, "E202")
}

func TestCompile_StructureError(t *testing.T) {
	dir := catalogDir(t, `package catalog

constraint: bad: {
	dc:      "¬(t0.a.x==t1.a.x)"
	options: include_comment: true
}
`)
	out, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "compilation failed with 1 error(s)")
	assert.Contains(t, out, "✗ Compilation failed")
	assert.Contains(t, out, "E210")
	assert.Contains(t, out, "include_comment")
}

func TestCompile_StructureErrorJSON(t *testing.T) {
	dir := catalogDir(t, `package catalog

constraint: bad: description: "no dc"
`)
	out, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)

	resp, _ := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E210", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "dc is required")
}

func TestCompile_MissingDirectory(t *testing.T) {
	out, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), "/nonexistent/catalog")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}
