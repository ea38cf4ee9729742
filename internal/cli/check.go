package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/roach88/dcsql/internal/dcparse"
	"github.com/roach88/dcsql/internal/dcsql"
	"github.com/roach88/dcsql/internal/engine"
	"github.com/roach88/dcsql/internal/harness"
	"github.com/roach88/dcsql/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Input           ConstraintInput
	Render          RenderFlags
	CSV             string // data file to import
	Table           string // import name, defaults to the constraint's table
	DB              string // workspace database path
	Limit           int    // rows to print, 0 for all
	FailOnViolation bool

	ids engine.RunIDGenerator // nil means UUIDv7
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return newCheckCommand(rootOpts, nil)
}

func newCheckCommand(rootOpts *RootOptions, ids engine.RunIDGenerator) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts, ids: ids}

	cmd := &cobra.Command{
		Use:   "check [constraint]",
		Short: "Find tuple pairs in CSV data that violate a constraint",
		Long: `Load CSV data into a SQLite workspace, run the constraint's query and
print every violating tuple pair.

The CSV is imported under the constraint's table name. With --table it is
imported under that name and the query reads it instead, which lets one
constraint run against differently named exports. A ".csv" suffix is
dropped, so t0.hours.csv.EmpID reads a table named hours. The names
check_runs and sqlite_* are reserved. Every run is recorded in the workspace; use --db to keep
the workspace and list past runs with "dcsql runs".

Exit codes:
  0 - Check ran (and found no violations with --fail-on-violation)
  1 - Invalid constraint, or violations found with --fail-on-violation
  2 - Command error (missing CSV, unreadable database, etc.)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), opts, args, cmd)
		},
	}

	opts.Input.register(cmd)
	opts.Render.register(cmd)
	cmd.Flags().StringVar(&opts.CSV, "csv", "", "CSV file with a header row (required)")
	cmd.Flags().StringVar(&opts.Table, "table", "", "import the CSV and run the query under this table name")
	cmd.Flags().StringVar(&opts.DB, "db", ":memory:", "SQLite workspace path")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "print at most this many violating pairs (0 for all)")
	cmd.Flags().BoolVar(&opts.FailOnViolation, "fail-on-violation", false, "exit with code 1 if any violation is found")
	_ = cmd.MarkFlagRequired("csv")

	return cmd
}

func runCheck(ctx context.Context, opts *CheckOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	text, err := opts.Input.Read(args, cmd.InOrStdin())
	if err != nil {
		return outputLoadError(formatter, err)
	}

	dc, err := dcparse.ParseAndValidate(text)
	if err != nil {
		return outputConstraintError(formatter, err)
	}

	f, err := os.Open(opts.CSV)
	if os.IsNotExist(err) {
		return outputLoadError(formatter, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("csv file not found: %s", opts.CSV)})
	}
	if err != nil {
		return outputLoadError(formatter, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("opening csv file: %v", err)})
	}
	defer f.Close()

	st, err := openWorkspace(opts.DB)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	defer st.Close()

	table := opts.Table
	if table == "" {
		table = dc.Tables()[0]
	}
	n, err := st.ImportCSV(ctx, table, f)
	if err != nil {
		return outputLoadError(formatter, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()})
	}
	formatter.VerboseLog("Imported %d row(s) from %s into table %s", n, filepath.Base(opts.CSV), store.TableName(table))

	checker := engine.NewChecker(st)
	if opts.ids != nil {
		checker.IDs = opts.ids
	}
	res, err := checker.CheckOn(ctx, text, opts.Table, opts.Render.Apply(cmd, dcsql.DefaultOptions()))
	if err != nil {
		return outputLoadError(formatter, &LoadError{Code: ErrCodeGeneric, Message: err.Error()})
	}

	if formatter.IsJSON() {
		if err := formatter.encode(CLIResponse{Status: "ok", Data: res, RunID: res.RunID}); err != nil {
			return err
		}
	} else {
		formatter.VerboseLog("%s", res.SQL)
		renderViolations(formatter.Writer, res, dc.Tuples(), opts.Limit)
	}

	if opts.FailOnViolation && res.Violations > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d violation(s) found", res.Violations))
	}
	return nil
}

// openWorkspace opens the SQLite workspace at path.
func openWorkspace(path string) (*store.Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("database directory not found: %s", dir)}
			}
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("opening workspace: %v", err)}
	}
	return st, nil
}

// renderViolations prints violating pairs as a table. Columns are grouped by
// tuple in alias order, so each header is prefixed with its tuple alias.
func renderViolations(w io.Writer, res *engine.CheckResult, tuples []string, limit int) {
	if res.Violations == 0 {
		fmt.Fprintln(w, "✓ No violations")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault // column names are case sensitive

	header := make(table.Row, len(res.Columns))
	perTuple := 0
	if len(tuples) > 0 {
		perTuple = len(res.Columns) / len(tuples)
	}
	for i, col := range res.Columns {
		if perTuple > 0 && i/perTuple < len(tuples) {
			header[i] = tuples[i/perTuple] + "." + col
		} else {
			header[i] = col
		}
	}
	t.AppendHeader(header)

	shown := res.Rows
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, r := range shown {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = harness.CellString(v)
		}
		t.AppendRow(row)
	}
	t.Render()

	if len(shown) < res.Violations {
		fmt.Fprintf(w, "✗ %d violation(s) found (showing %d)\n", res.Violations, len(shown))
		return
	}
	fmt.Fprintf(w, "✗ %d violation(s) found\n", res.Violations)
}
