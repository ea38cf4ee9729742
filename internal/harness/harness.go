package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/dcsql/internal/dcparse"
	"github.com/roach88/dcsql/internal/dcsql"
	"github.com/roach88/dcsql/internal/engine"
	"github.com/roach88/dcsql/internal/ir"
	"github.com/roach88/dcsql/internal/store"
)

// Run executes a scenario and returns the result.
//
// Each scenario with data runs in a fresh in-memory database for isolation.
// An error return means the harness itself failed (for example the data
// could not be imported); expectation mismatches are reported through
// Result.Pass and Result.Errors.
//
// Execution flow:
// 1. Parse, validate and translate the constraint
// 2. Compare against expect.error or expect.sql
// 3. If data is present, import it and run the check
// 4. Compare the violation count against expect.violations
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	result := NewResult()
	opts := scenario.Options.Apply(dcsql.DefaultOptions())

	dc, err := dcparse.ParseAndValidate(scenario.Constraint)
	if err == nil {
		result.ConstraintID, err = ir.ConstraintID(dc)
	}
	if err == nil {
		result.SQL, err = dcsql.Generate(dc, opts)
	}

	want := scenario.Expect
	if err != nil {
		result.Error = err.Error()
		switch {
		case want.Error == "":
			result.AddError(fmt.Sprintf("unexpected error: %v", err))
		case !strings.Contains(result.Error, want.Error):
			result.AddError(fmt.Sprintf("error %q does not contain %q", result.Error, want.Error))
		}
		return result, nil
	}
	if want.Error != "" {
		result.AddError(fmt.Sprintf("expected error containing %q, translation succeeded", want.Error))
		return result, nil
	}

	if want.SQL != "" && result.SQL != want.SQL {
		result.AddError(fmt.Sprintf("sql mismatch:\n  got:  %q\n  want: %q", result.SQL, want.SQL))
	}

	if scenario.Data == nil {
		return result, nil
	}

	if err := check(ctx, scenario, opts, result); err != nil {
		return nil, err
	}

	if want.Violations != nil && result.Violations != *want.Violations {
		result.AddError(fmt.Sprintf("violations = %d, want %d", result.Violations, *want.Violations))
	}

	return result, nil
}

// check loads scenario data into a fresh workspace and runs the constraint.
func check(ctx context.Context, scenario *Scenario, opts dcsql.Options, result *Result) error {
	st, err := store.Open(":memory:")
	if err != nil {
		return fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if _, err := st.ImportCSV(ctx, scenario.Data.Table, strings.NewReader(scenario.Data.CSV)); err != nil {
		return fmt.Errorf("failed to load scenario data: %w", err)
	}

	runID := scenario.RunID
	if runID == "" {
		runID = DefaultRunID
	}

	checker := &engine.Checker{
		Store:  st,
		IDs:    engine.NewFixedGenerator(runID),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	res, err := checker.Check(ctx, scenario.Constraint, opts)
	if err != nil {
		// The constraint already translated, so this is a data problem such
		// as a column missing from the CSV header.
		result.Error = err.Error()
		result.AddError(fmt.Sprintf("check failed: %v", err))
		return nil
	}

	result.Checked = true
	result.Violations = res.Violations
	result.Columns = res.Columns
	result.Rows = res.Rows
	return nil
}
