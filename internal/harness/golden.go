package harness

import (
	"fmt"
	"slices"
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/dcsql/internal/ir"
)

// Snapshot renders the observable outcome of a scenario as canonical JSON.
// Cells are rendered as strings ("NULL" for SQL NULL) since canonical JSON
// has no floats and no null. Rows are sorted so snapshots do not depend on
// the query plan.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	obj := ir.IRObject{
		"scenario_name": ir.IRString(scenarioName),
		"sql":           ir.IRString(result.SQL),
	}
	if result.Error != "" {
		obj["error"] = ir.IRString(result.Error)
	}
	if result.Checked {
		obj["violations"] = ir.IRInt(result.Violations)

		cols := make(ir.IRArray, len(result.Columns))
		for i, c := range result.Columns {
			cols[i] = ir.IRString(c)
		}
		obj["columns"] = cols

		text := make([][]string, len(result.Rows))
		for i, row := range result.Rows {
			text[i] = make([]string, len(row))
			for j, v := range row {
				text[i][j] = CellString(v)
			}
		}
		slices.SortFunc(text, func(a, b []string) int { return slices.Compare(a, b) })

		rows := make(ir.IRArray, len(text))
		for i, row := range text {
			cells := make(ir.IRArray, len(row))
			for j, c := range row {
				cells[j] = ir.IRString(c)
			}
			rows[i] = cells
		}
		obj["rows"] = rows
	}
	return ir.MarshalCanonical(obj)
}

// CellString formats a value scanned from the workspace.
func CellString(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, snapshot)
	return nil
}
