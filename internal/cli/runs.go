package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/dcsql/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	DB         string
	Constraint string // filter by constraint ID
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded check runs",
		Long: `List the check runs recorded in a workspace, oldest first.

Example:
  dcsql check --db work.db --csv hours.csv '¬(t0.hours.EmpID==t1.hours.EmpID)'
  dcsql runs --db work.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite workspace path (required)")
	cmd.Flags().StringVar(&opts.Constraint, "constraint", "", "only list runs of this constraint ID")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.DB == ":memory:" {
		return outputLoadError(formatter, &LoadError{Code: ErrCodeGeneric, Message: "an in-memory workspace has no recorded runs"})
	}
	st, err := openWorkspace(opts.DB)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	defer st.Close()

	runs, err := st.Runs(cmd.Context(), opts.Constraint)
	if err != nil {
		return outputLoadError(formatter, &LoadError{Code: ErrCodeGeneric, Message: err.Error()})
	}
	if runs == nil {
		runs = []store.CheckRun{}
	}

	if formatter.IsJSON() {
		return formatter.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(formatter.Writer)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Seq", "Run", "Table", "Violations", "Constraint"})
	for _, r := range runs {
		t.AppendRow(table.Row{r.Seq, r.ID, r.Table, r.Violations, r.Constraint})
	}
	t.Render()
	return nil
}
