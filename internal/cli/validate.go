package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dcsql/internal/compiler"
	"github.com/roach88/dcsql/internal/dcparse"
	"github.com/roach88/dcsql/internal/ir"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Input   ConstraintInput
	Catalog string // validate a CUE catalog directory instead
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`

	// Set for a single valid constraint.
	ConstraintID string   `json:"constraint_id,omitempty"`
	Table        string   `json:"table,omitempty"`
	Tuples       []string `json:"tuples,omitempty"`
	Columns      []string `json:"columns,omitempty"`
	Predicates   int      `json:"predicates,omitempty"`

	// Set for a valid catalog.
	Constraints int `json:"constraints,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [constraint]",
		Short: "Check a denial constraint without generating SQL",
		Long: `Check that a denial constraint parses and references a single table.

With --catalog, validates every entry of a CUE constraint catalog,
including name rules and duplicate detection.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Catalog != "" {
				if len(args) > 0 || opts.Input.File != "" {
					return NewExitError(ExitCommandError, "--catalog cannot be combined with a constraint argument or --file")
				}
				return runValidateCatalog(opts, cmd)
			}
			return runValidate(opts, args, cmd)
		},
	}

	opts.Input.register(cmd)
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "validate a CUE catalog directory")

	return cmd
}

func runValidate(opts *ValidateOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	text, err := opts.Input.Read(args, cmd.InOrStdin())
	if err != nil {
		return outputLoadError(formatter, err)
	}

	// Inline constraints go through the same checks as catalog entries.
	spec := ir.ConstraintSpec{Name: "inline", Source: text}
	if errs := compiler.Validate(spec); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	dc, err := dcparse.ParseAndValidate(text)
	if err != nil {
		return outputConstraintError(formatter, err)
	}
	id, err := ir.ConstraintID(dc)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	result := ValidationResult{
		Valid:        true,
		ConstraintID: id,
		Table:        dc.Tables()[0],
		Tuples:       dc.Tuples(),
		Columns:      dc.Columns(),
		Predicates:   len(dc.Predicates),
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✓ Valid denial constraint")
	fmt.Fprintf(w, "  Table:      %s\n", result.Table)
	fmt.Fprintf(w, "  Tuples:     %s\n", strings.Join(result.Tuples, ", "))
	fmt.Fprintf(w, "  Columns:    %s\n", strings.Join(result.Columns, ", "))
	fmt.Fprintf(w, "  Predicates: %d\n", result.Predicates)
	return nil
}

func runValidateCatalog(opts *ValidateOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, loadErrors := LoadCatalog(opts.Catalog, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		return outputLoadError(formatter, loadErrors[0])
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, opts.Catalog)

	var validationErrors []compiler.ValidationError
	for _, err := range loadErrors {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			validationErrors = append(validationErrors, compiler.ValidationError{
				Field:   "load",
				Message: loadErr.Message,
				Code:    loadErr.Code,
				Line:    getLineFromCuePos(loadErr),
			})
		}
	}

	for _, spec := range loadResult.Constraints {
		formatter.VerboseLog("Validating constraint: %s", spec.Name)
	}
	validationErrors = append(validationErrors, compiler.Validate(loadResult.Constraints)...)

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	if formatter.IsJSON() {
		return formatter.Success(ValidationResult{Valid: true, Constraints: len(loadResult.Constraints)})
	}

	fmt.Fprintf(formatter.Writer, "✓ All %d constraint(s) valid\n", len(loadResult.Constraints))
	return nil
}

// getLineFromCuePos extracts the line number of a load error, or 0.
func getLineFromCuePos(err *LoadError) int {
	if err.Pos.IsValid() {
		return err.Pos.Line()
	}
	return 0
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	// Validation failures = exit code 1 (test/validation failure)
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.IsJSON() {
		result := ValidationResult{Valid: false, Errors: errs}
		if err := formatter.Failure(errs[0].Code, errs[0].Message, result); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Constraint != "" && err.Constraint != "inline" {
			fmt.Fprintf(formatter.Writer, "constraint %s\n", err.Constraint)
		}
		switch {
		case err.Line > 0 && err.Column > 0:
			fmt.Fprintf(formatter.Writer, "line %d, column %d\n", err.Line, err.Column)
		case err.Line > 0:
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return exitErr
}
