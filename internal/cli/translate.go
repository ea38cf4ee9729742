package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/dcsql/internal/dcparse"
	"github.com/roach88/dcsql/internal/dcsql"
	"github.com/roach88/dcsql/internal/ir"
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	Input  ConstraintInput
	Render RenderFlags
	Output string // output file path
}

// TranslationResult is the JSON payload of a successful translation.
type TranslationResult struct {
	ConstraintID string `json:"constraint_id"`
	Table        string `json:"table"`
	SQL          string `json:"sql"`
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate [constraint]",
		Short: "Translate a denial constraint to SQL",
		Long: `Translate a denial constraint to a SQL self-join query.

The query selects every pair of tuples that together violate the
constraint. Pass the constraint as an argument, with --file, or as "-"
to read it from stdin.

Examples:
  dcsql translate '¬(t0.hours.EmpID==t1.hours.EmpID^t0.hours.ProjID==t1.hours.ProjID)'
  dcsql translate -f constraint.txt --compact --comments
  echo '¬(t0.a.x<t1.a.x)' | dcsql translate - -o query.sql`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, args, cmd)
		},
	}

	opts.Input.register(cmd)
	opts.Render.register(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the SQL to a file")

	return cmd
}

func runTranslate(opts *TranslateOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	text, err := opts.Input.Read(args, cmd.InOrStdin())
	if err != nil {
		return outputLoadError(formatter, err)
	}

	dc, err := dcparse.ParseAndValidate(text)
	if err != nil {
		return outputConstraintError(formatter, err)
	}

	renderOpts := opts.Render.Apply(cmd, dcsql.DefaultOptions())
	query, err := dcsql.Generate(dc, renderOpts)
	if err != nil {
		return outputConstraintError(formatter, err)
	}

	id, err := ir.ConstraintID(dc)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Constraint %s over table %s (%d predicate(s))", id, dc.Tables()[0], len(dc.Predicates))

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(query+"\n"), 0644); err != nil {
			return outputLoadError(formatter, &LoadError{
				Code:    ErrCodeWriteFailed,
				Message: fmt.Sprintf("writing output file: %v", err),
			})
		}
		formatter.VerboseLog("Wrote SQL to %s", opts.Output)
	}

	if formatter.IsJSON() {
		return formatter.Success(TranslationResult{
			ConstraintID: id,
			Table:        dc.Tables()[0],
			SQL:          query,
		})
	}

	if opts.Output == "" {
		fmt.Fprintln(formatter.Writer, query)
	}
	return nil
}
