package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/dcsql/internal/compiler"
	"github.com/roach88/dcsql/internal/dcparse"
	"github.com/roach88/dcsql/internal/dcsql"
	"github.com/roach88/dcsql/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Render    RenderFlags
	OutputDir string // write one <name>.sql per constraint
}

// CompiledConstraint is one translated catalog entry.
type CompiledConstraint struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ConstraintID string `json:"constraint_id"`
	Table        string `json:"table"`
	SQL          string `json:"sql"`
	Path         string `json:"path,omitempty"` // set when written with --output-dir
}

// CompilationResult holds the translated catalog.
type CompilationResult struct {
	Constraints []CompiledConstraint `json:"constraints"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <catalog-dir>",
		Short: "Translate every constraint in a CUE catalog",
		Long: `Translate every denial constraint in a CUE catalog to SQL.

A catalog declares named constraints:

  constraint: unique_assignment: {
      dc:          "¬(t0.hours.EmpID==t1.hours.EmpID^t0.hours.ProjID==t1.hours.ProjID)"
      description: "an employee is assigned to a project once"
      options: include_comments: true
  }

Rendering flags given on the command line override catalog options.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	opts.Render.register(cmd)
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "", "write <name>.sql files to this directory")

	return cmd
}

func runCompile(opts *CompileOptions, catalogDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, loadErrors := LoadCatalog(catalogDir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		return outputLoadError(formatter, loadErrors[0])
	}
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, catalogDir)

	if errs := compiler.Validate(loadResult.Constraints); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
			return outputLoadError(formatter, &LoadError{
				Code:    ErrCodeWriteFailed,
				Message: fmt.Sprintf("creating output directory: %v", err),
			})
		}
	}

	result := CompilationResult{Constraints: make([]CompiledConstraint, 0, len(loadResult.Constraints))}
	for _, spec := range loadResult.Constraints {
		formatter.VerboseLog("Compiling constraint: %s", spec.Name)

		compiled, err := compileSpec(spec, opts.Render.Apply(cmd, spec.Options.Apply(dcsql.DefaultOptions())))
		if err != nil {
			return outputConstraintError(formatter, err)
		}

		if opts.OutputDir != "" {
			compiled.Path = filepath.Join(opts.OutputDir, spec.Name+".sql")
			if err := os.WriteFile(compiled.Path, []byte(compiled.SQL+"\n"), 0644); err != nil {
				return outputLoadError(formatter, &LoadError{
					Code:    ErrCodeWriteFailed,
					Message: fmt.Sprintf("writing %s: %v", compiled.Path, err),
				})
			}
		}
		result.Constraints = append(result.Constraints, compiled)
	}

	return outputCompileSuccess(formatter, result, opts.OutputDir)
}

// compileSpec translates one validated catalog entry.
func compileSpec(spec ir.ConstraintSpec, opts dcsql.Options) (CompiledConstraint, error) {
	dc, err := dcparse.ParseAndValidate(spec.Source)
	if err != nil {
		return CompiledConstraint{}, err
	}
	query, err := dcsql.Generate(dc, opts)
	if err != nil {
		return CompiledConstraint{}, err
	}
	id, err := ir.ConstraintID(dc)
	if err != nil {
		return CompiledConstraint{}, err
	}
	return CompiledConstraint{
		Name:         spec.Name,
		Description:  spec.Description,
		ConstraintID: id,
		Table:        dc.Tables()[0],
		SQL:          query,
	}, nil
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result CompilationResult, outputDir string) error {
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if outputDir != "" {
		fmt.Fprintf(w, "✓ Compiled %d constraint(s)\n\n", len(result.Constraints))
		for _, c := range result.Constraints {
			fmt.Fprintf(w, "  %s → %s\n", c.Name, c.Path)
		}
		return nil
	}

	for i, c := range result.Constraints {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "-- %s\n", c.Name)
		if c.Description != "" {
			fmt.Fprintf(w, "-- %s\n", c.Description)
		}
		fmt.Fprintln(w, c.SQL)
	}
	return nil
}

// outputCompileErrors outputs catalog structure errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	// Compilation errors are command-level errors (exit code 2)
	exitErr := NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))

	if formatter.IsJSON() {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}
		if err := formatter.Failure(cliErrors[0].Code, cliErrors[0].Message, cliErrors); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseCompileError(err)
		if loadErr, ok := err.(*LoadError); ok && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	return exitErr
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	if loadErr, ok := err.(*LoadError); ok {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}
