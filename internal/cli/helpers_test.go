package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const (
	hoursDC   = "¬(t0.hours.EmpID==t1.hours.EmpID^t0.hours.ProjID==t1.hours.ProjID)"
	airportDC = "¬(t0.airport.Country==t1.airport.Country^t0.airport.Timezone<>t1.airport.Timezone)"

	hoursSQL = "SELECT t0.EmpID, t0.ProjID, t1.EmpID, t1.ProjID\n" +
		"FROM hours t0, hours t1\n" +
		"WHERE t0.EmpID = t1.EmpID\n" +
		"  AND t0.ProjID = t1.ProjID;"
	airportCompactSQL = "SELECT t0.Country, t0.Timezone, t1.Country, t1.Timezone FROM airport t0, airport t1 " +
		"WHERE t0.Country = t1.Country AND t0.Timezone != t1.Timezone;"
)

// execute runs cmd with args and returns stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if args == nil {
		args = []string{} // nil makes cobra fall back to os.Args
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// decodeResponse parses a JSON CLIResponse with a map payload.
func decodeResponse(t *testing.T, out string) (CLIResponse, map[string]any) {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	data, _ := resp.Data.(map[string]any)
	return resp, data
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validCatalog = `package catalog

constraint: unique_assignment: {
	dc:          "¬(t0.hours.EmpID==t1.hours.EmpID^t0.hours.ProjID==t1.hours.ProjID)"
	description: "an employee works on a project once"
}

constraint: airport_tz: {
	dc: "¬(t0.airport.Country==t1.airport.Country^t0.airport.Timezone<>t1.airport.Timezone)"
	options: format_output: false
}
`
